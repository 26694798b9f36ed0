// internal/app/features/diagnostics/list.go
package diagnostics

import (
	"net/http"
	"strings"
	"time"

	diagstore "github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

const pageSize = 100

// ServeList handles GET /admin/diagnostics.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := listData{
		BaseVM:     viewdata.NewBaseVM(r, "Diagnostics", "/admin/about-us-points"),
		Mode:       h.Mode,
		Operations: allOperations(),
		Outcomes:   allOutcomes(),
	}

	if h.Store == nil {
		h.render(w, r, "diagnostics_list", data)
		return
	}
	data.Persisted = true

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "diagnostics list")
	defer cancel()

	data.Operation = strings.TrimSpace(r.URL.Query().Get("operation"))
	data.Outcome = strings.TrimSpace(r.URL.Query().Get("outcome"))

	filter := diagstore.QueryFilter{
		Operation: data.Operation,
		Limit:     pageSize,
	}
	switch data.Outcome {
	case "ok":
		ok := true
		filter.Success = &ok
	case "failed":
		failed := false
		filter.Success = &failed
	}

	var events []diagstore.Event
	var err error
	if filter.Operation == "" && filter.Success == nil {
		events, err = h.Store.Recent(ctx, pageSize)
	} else {
		events, err = h.Store.Query(ctx, filter)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query diagnostics failed", err, "A database error occurred.", "/admin/about-us-points")
		return
	}

	failures, err := h.Store.CountFailures(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		h.Log.Warn("failed to count diagnostic failures", zap.Error(err))
	}
	data.FailuresLastDay = failures

	data.Items = make([]listItem, 0, len(events))
	for _, e := range events {
		data.Items = append(data.Items, listItem{
			Timestamp:  e.Timestamp,
			Operation:  e.Operation,
			Success:    e.Success,
			Message:    e.Message,
			RecordID:   e.RecordID,
			RequestID:  e.RequestID,
			StatusCode: e.StatusCode,
		})
	}

	h.render(w, r, "diagnostics_list", data)
}
