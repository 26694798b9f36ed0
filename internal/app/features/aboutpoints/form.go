// internal/app/features/aboutpoints/form.go
package aboutpoints

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
)

// Backend is the part of the About Us REST API the form uses.
type Backend interface {
	Get(ctx context.Context) (models.AboutUsPoint, error)
	Edit(ctx context.Context, id string, update models.AboutUsPointUpdate) (*aboutapi.EditResponse, error)
}

// LoadState is the form's loading state. The only transition is
// Loading -> Loaded, taken once when the initial load completes.
type LoadState int

const (
	Loading LoadState = iota
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

var (
	// ErrNoRecordID is reported when Submit runs before a load has
	// produced a record id.
	ErrNoRecordID = errors.New("no record id: the record has not been loaded")

	// ErrAlreadyLoaded is reported when Load is called a second time.
	ErrAlreadyLoaded = errors.New("form already loaded")
)

// Result is the outcome of Load or Submit. Errors never propagate out of
// the form; Result lets callers decide whether to show the outcome.
type Result struct {
	OK      bool
	Message string
	Err     error
}

// Snapshot is a copy of the form's editable content.
type Snapshot struct {
	ID     string
	Title  string
	Points []string
	Status models.Status
}

// Form is the About Us points edit form.
//
// Load and Submit may be called from different goroutines; the state is
// guarded by a mutex, but the two calls are not sequenced against each
// other. A Submit that starts before Load has produced an id is refused
// with ErrNoRecordID.
type Form struct {
	backend Backend
	sink    diaglog.Sink

	mu      sync.Mutex
	state   LoadState
	loading bool // a Load call is fetching
	id     string
	title  string
	points []string
	status models.Status
}

// NewForm returns a form in the Loading state holding default values.
func NewForm(backend Backend, sink diaglog.Sink) *Form {
	if sink == nil {
		sink = diaglog.Nop
	}
	def := models.DefaultAboutUsPoint()
	return &Form{
		backend: backend,
		sink:    sink,
		state:   Loading,
		title:   def.Title,
		points:  def.Points,
		status:  def.Status,
	}
}

// NewLoadedForm returns a form that already holds snap, as when a
// previously rendered form is posted back.
func NewLoadedForm(backend Backend, sink diaglog.Sink, snap Snapshot) *Form {
	f := NewForm(backend, sink)
	f.state = Loaded
	f.id = snap.ID
	f.title = snap.Title
	f.points = append([]string{}, snap.Points...)
	f.status = snap.Status
	if f.status == "" {
		f.status = models.DefaultStatus
	}
	return f
}

// Load reads the record from the backend and replaces the form content,
// substituting defaults for missing fields. On failure the defaults stay
// and the failure is reported to the sink. Either way the form ends up
// Loaded. Only the first call fetches; later or overlapping calls return
// ErrAlreadyLoaded.
func (f *Form) Load(ctx context.Context) Result {
	f.mu.Lock()
	if f.state == Loaded || f.loading {
		f.mu.Unlock()
		return Result{Err: ErrAlreadyLoaded, Message: ErrAlreadyLoaded.Error()}
	}
	f.loading = true
	f.mu.Unlock()

	rec, err := f.backend.Get(ctx)

	f.mu.Lock()
	if err == nil {
		rec = rec.WithDefaults()
		f.id = rec.ID
		f.title = rec.Title
		f.points = rec.Points
		f.status = rec.Status
	}
	f.markLoaded()
	f.loading = false
	id := f.id
	f.mu.Unlock()

	if err != nil {
		res := Result{Err: err, Message: aboutapi.Message(err)}
		f.record(ctx, failureEvent(diagnostics.OpLoad, id, err))
		return res
	}

	f.record(ctx, diagnostics.Event{
		Operation: diagnostics.OpLoad,
		Success:   true,
		Message:   "loaded",
		RecordID:  id,
	})
	return Result{OK: true, Message: "loaded"}
}

// markLoaded performs the single Loading -> Loaded transition.
// Callers hold f.mu.
func (f *Form) markLoaded() {
	if f.state == Loading {
		f.state = Loaded
	}
}

// Submit sends the current title, points and status to the backend as a
// replacement for the record identified by the held id. The form content
// is left as it is whether the call succeeds or fails.
func (f *Form) Submit(ctx context.Context) Result {
	f.mu.Lock()
	id := f.id
	update := models.AboutUsPointUpdate{
		Title:  f.title,
		Points: append([]string{}, f.points...),
		Status: f.status,
	}
	f.mu.Unlock()

	if id == "" {
		f.record(ctx, failureEvent(diagnostics.OpSubmit, "", ErrNoRecordID))
		return Result{Err: ErrNoRecordID, Message: ErrNoRecordID.Error()}
	}

	resp, err := f.backend.Edit(ctx, id, update)
	if err != nil {
		f.record(ctx, failureEvent(diagnostics.OpSubmit, id, err))
		return Result{Err: err, Message: aboutapi.Message(err)}
	}

	ev := diagnostics.Event{
		Operation: diagnostics.OpSubmit,
		Success:   true,
		Message:   "updated successfully",
		RecordID:  id,
	}
	if resp != nil {
		ev.RequestID = resp.RequestID
		if len(resp.Raw) > 0 {
			ev.Details = map[string]string{"response": truncate(string(resp.Raw), 2048)}
		}
	}
	f.record(ctx, ev)
	return Result{OK: true, Message: ev.Message}
}

// record reports an event on a context that outlives the backend call, so
// timeouts and disconnects still reach the sink.
func (f *Form) record(ctx context.Context, ev diagnostics.Event) {
	f.sink.Record(context.WithoutCancel(ctx), ev)
}

func failureEvent(op, recordID string, err error) diagnostics.Event {
	ev := diagnostics.Event{
		Operation: op,
		Success:   false,
		Message:   aboutapi.Message(err),
		RecordID:  recordID,
		RequestID: aboutapi.RequestID(err),
	}
	var apiErr *aboutapi.APIError
	if errors.As(err, &apiErr) {
		ev.StatusCode = apiErr.StatusCode
	}
	return ev
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s + "…"
}

// AddPoint appends an empty point.
func (f *Form) AddPoint() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, "")
}

// RemovePoint deletes the point at index, keeping the order of the rest.
// There is no minimum-length check; an out-of-range index is a no-op.
func (f *Form) RemovePoint(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.points) {
		return
	}
	out := make([]string, 0, len(f.points)-1)
	out = append(out, f.points[:index]...)
	out = append(out, f.points[index+1:]...)
	f.points = out
}

// UpdatePoint replaces the point at index with value. An out-of-range
// index is a no-op.
func (f *Form) UpdatePoint(index int, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.points) {
		return
	}
	f.points[index] = value
}

// SetTitle replaces the title.
func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = title
}

// SetStatus replaces the status.
func (f *Form) SetStatus(status models.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
}

// State returns the load state.
func (f *Form) State() LoadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Loading reports whether the initial load is still outstanding.
func (f *Form) Loading() bool {
	return f.State() == Loading
}

// ID returns the record id and whether one has been received.
func (f *Form) ID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id, f.id != ""
}

// Title returns the title.
func (f *Form) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// Points returns a copy of the points.
func (f *Form) Points() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.points...)
}

// Status returns the status.
func (f *Form) Status() models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Snapshot returns a copy of the form content.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		ID:     f.id,
		Title:  f.title,
		Points: append([]string{}, f.points...),
		Status: f.status,
	}
}
