// internal/domain/models/aboutuspoint.go
package models

// Status is the visibility flag of the About Us record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"

	// DefaultStatus is used whenever the backend omits a status.
	DefaultStatus = StatusActive
)

// AllStatuses lists the statuses offered by the edit form, in display order.
var AllStatuses = []StatusOption{
	{Value: StatusActive, Label: "Active"},
	{Value: StatusInactive, Label: "Inactive"},
}

// StatusOption is one entry of the status select.
type StatusOption struct {
	Value Status
	Label string
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// AboutUsPoint is the singleton About Us record owned by the backend.
//
// ID is opaque and assigned by the backend. An empty ID means the record
// has not been loaded yet; it is never generated client-side.
//
// Points distinguishes nil (field missing from the payload) from an empty
// slice (the backend explicitly returned no points).
type AboutUsPoint struct {
	ID     string   `json:"_id,omitempty"`
	Title  string   `json:"title,omitempty"`
	Points []string `json:"points"`
	Status Status   `json:"status,omitempty"`
}

// AboutUsPointUpdate is the replacement snapshot sent to the edit endpoint.
// The field set is exactly {title, points, status}.
type AboutUsPointUpdate struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
	Status Status   `json:"status"`
}

// WithDefaults returns a copy of p with a default substituted for each
// missing field, independently of the others.
func (p AboutUsPoint) WithDefaults() AboutUsPoint {
	out := AboutUsPoint{
		ID:     p.ID,
		Title:  p.Title,
		Status: p.Status,
	}
	if p.Points == nil {
		out.Points = []string{""}
	} else {
		out.Points = append([]string{}, p.Points...)
	}
	if out.Status == "" {
		out.Status = DefaultStatus
	}
	return out
}

// DefaultAboutUsPoint is the form content shown before (or instead of) a
// successful load.
func DefaultAboutUsPoint() AboutUsPoint {
	return AboutUsPoint{}.WithDefaults()
}
