// internal/app/features/aboutpoints/handler.go
package aboutpoints

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/aboutadmin/internal/app/features/errors"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/formutil"
	"github.com/dalemusser/aboutadmin/internal/app/system/limits"
	"github.com/dalemusser/aboutadmin/internal/app/system/ratelimit"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"go.uber.org/zap"
)

// EditPath is where the edit page is mounted.
const EditPath = "/admin/about-us-points"

// RateLimitRemainingHeader reports how many saves the client has left in
// the current window.
const RateLimitRemainingHeader = "X-RateLimit-Remaining"

// Handler serves the About Us points edit page.
type Handler struct {
	API             Backend
	Sink            diaglog.Sink
	Log             *zap.Logger
	ErrLog          *uierrors.ErrorLogger
	ShowDiagnostics bool

	// SubmitLimiter throttles saves per client IP. Nil disables it.
	SubmitLimiter *ratelimit.Limiter

	render viewdata.RenderFunc
}

// NewHandler constructs a Handler. sink receives every load and submit
// outcome; showDiagnostics also surfaces the latest outcome on the page.
func NewHandler(api Backend, sink diaglog.Sink, showDiagnostics bool, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if sink == nil {
		sink = diaglog.Nop
	}
	return &Handler{
		API:             api,
		Sink:            sink,
		Log:             logger,
		ErrLog:          errLog,
		ShowDiagnostics: showDiagnostics,
		render:          viewdata.Render,
	}
}

// UseRenderer replaces the template renderer.
func (h *Handler) UseRenderer(fn viewdata.RenderFunc) {
	h.render = fn
}

type pointVM struct {
	Index     int
	Value     string
	Removable bool
}

type editVM struct {
	viewdata.BaseVM
	Loading   bool
	RecordID  string
	HasRecord bool
	Heading   string
	Points    []pointVM
	Status    models.Status
	Statuses  []models.StatusOption

	// Latest diagnostic, shown only when ShowDiagnostics is on.
	Notice   string
	NoticeOK bool
}

// ServeEdit loads the record and displays the edit form.
// GET /admin/about-us-points
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	rec := &diaglog.Recorder{}
	form := NewForm(h.API, diaglog.Multi(h.Sink, rec))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load about us points")
	defer cancel()

	// A failed load leaves the defaults in the form.
	form.Load(ctx)

	h.renderForm(w, r, form, rec)
}

// HandleEdit applies one action to the posted form: add a point, remove a
// point, or save. The page is re-rendered with the values as posted.
// POST /admin/about-us-points
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxAboutFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", EditPath)
		return
	}

	snap, err := FormFromPost(r.PostForm)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "invalid about us form", err, "Status must be Active or Inactive.", EditPath)
		return
	}

	rec := &diaglog.Recorder{}
	form := NewLoadedForm(h.API, diaglog.Multi(h.Sink, rec), snap)

	act := formutil.ParseAction(r.PostForm.Get(FieldAction), ActionSave)
	switch act.Name {
	case ActionAdd:
		form.AddPoint()
	case ActionRemove:
		form.RemovePoint(act.Index)
	case ActionSave:
		if h.SubmitLimiter != nil {
			ip := ratelimit.ClientIP(r)
			allowed := h.SubmitLimiter.Allow(ip)
			w.Header().Set(RateLimitRemainingHeader, strconv.Itoa(h.SubmitLimiter.Remaining(ip)))
			if !allowed {
				h.ErrLog.LogTooManyRequests(w, r, "about us submit rate limited", "Too many updates. Please wait a minute and try again.", EditPath)
				return
			}
		}
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "submit about us points")
		defer cancel()
		form.Submit(ctx)
	default:
		h.ErrLog.LogBadRequest(w, r, "unknown form action", nil, "Unknown action.", EditPath)
		return
	}

	h.renderForm(w, r, form, rec)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, form *Form, rec *diaglog.Recorder) {
	snap := form.Snapshot()

	points := make([]pointVM, len(snap.Points))
	for i, p := range snap.Points {
		points[i] = pointVM{Index: i, Value: p, Removable: i > 0}
	}

	vm := editVM{
		BaseVM:    viewdata.NewBaseVM(r, "Edit About Us Points", "/about"),
		Loading:   form.Loading(),
		RecordID:  snap.ID,
		HasRecord: snap.ID != "",
		Heading:   snap.Title,
		Points:    points,
		Status:    snap.Status,
		Statuses:  models.AllStatuses,
	}

	if h.ShowDiagnostics {
		if ev, ok := rec.Last(); ok {
			vm.Notice = diaglog.Summary(ev)
			vm.NoticeOK = ev.Success
		}
	}

	h.render(w, r, "aboutpoints_edit", vm)
}
