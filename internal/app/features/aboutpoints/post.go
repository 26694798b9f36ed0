// internal/app/features/aboutpoints/post.go
package aboutpoints

import (
	"errors"
	"net/url"

	"github.com/dalemusser/aboutadmin/internal/app/system/formutil"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
)

// Form field names and actions used by the edit page.
const (
	FieldID     = "id"
	FieldTitle  = "title"
	FieldPoint  = "point"
	FieldStatus = "status"
	FieldAction = "action"

	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionSave   = "save"
)

// ErrInvalidStatus is returned by FormFromPost for a status outside
// models.AllStatuses.
var ErrInvalidStatus = errors.New("invalid status")

// FormFromPost rebuilds the form content from a posted edit page. Values are
// taken as typed; points keep their document order.
func FormFromPost(form url.Values) (Snapshot, error) {
	id, _ := formutil.Value(form, FieldID)
	title, _ := formutil.Value(form, FieldTitle)

	status := models.DefaultStatus
	if raw, ok := formutil.Value(form, FieldStatus); ok {
		status = models.Status(raw)
		if !status.Valid() {
			return Snapshot{}, ErrInvalidStatus
		}
	}

	return Snapshot{
		ID:     id,
		Title:  title,
		Points: formutil.Values(form, FieldPoint),
		Status: status,
	}, nil
}
