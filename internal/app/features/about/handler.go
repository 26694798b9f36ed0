// internal/app/features/about/handler.go
package about

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/markdown"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"go.uber.org/zap"
)

// Reader fetches the About Us record.
type Reader interface {
	Get(ctx context.Context) (models.AboutUsPoint, error)
}

type pageData struct {
	viewdata.BaseVM
	Visible     bool
	Unavailable bool
	Heading     string
	Points      []template.HTML
}

// Handler serves the public About Us page.
type Handler struct {
	API  Reader
	Sink diaglog.Sink
	Log  *zap.Logger

	render viewdata.RenderFunc
}

// NewHandler constructs an about Handler.
func NewHandler(api Reader, sink diaglog.Sink, logger *zap.Logger) *Handler {
	if sink == nil {
		sink = diaglog.Nop
	}
	return &Handler{API: api, Sink: sink, Log: logger, render: viewdata.Render}
}

// UseRenderer replaces the template renderer.
func (h *Handler) UseRenderer(fn viewdata.RenderFunc) {
	h.render = fn
}

// ServeAbout renders the record when it is active and an empty state
// otherwise. Points are rendered as inline Markdown; blank points are
// skipped.
func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "preview about us points")
	defer cancel()

	data := pageData{BaseVM: viewdata.NewBaseVM(r, "About Us", "/")}

	rec, err := h.API.Get(ctx)
	if err != nil {
		ev := diagnostics.Event{
			Operation: diagnostics.OpPreview,
			Message:   aboutapi.Message(err),
			RequestID: aboutapi.RequestID(err),
		}
		var apiErr *aboutapi.APIError
		if errors.As(err, &apiErr) {
			ev.StatusCode = apiErr.StatusCode
		}
		h.Sink.Record(r.Context(), ev)
		data.Unavailable = true
		h.render(w, r, "about", data)
		return
	}

	rec = rec.WithDefaults()
	if rec.Status == models.StatusActive {
		data.Visible = true
		data.Heading = rec.Title
		for _, p := range rec.Points {
			if strings.TrimSpace(p) == "" {
				continue
			}
			data.Points = append(data.Points, markdown.Inline(p))
		}
	}

	h.render(w, r, "about", data)
}
