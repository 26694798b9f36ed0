package aboutpoints_test

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/features/aboutpoints"
	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"github.com/dalemusser/aboutadmin/internal/testutil"
	"go.uber.org/zap"
)

func newLoadedForm(t *testing.T, body string) (*aboutpoints.Form, *testutil.FakeBackend, *diaglog.Recorder) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, body)
	rec := &diaglog.Recorder{}
	f := aboutpoints.NewForm(aboutapi.New(fb.URL(), zap.NewNop()), rec)
	if res := f.Load(context.Background()); !res.OK {
		t.Fatalf("Load failed: %+v", res)
	}
	return f, fb, rec
}

func TestNewForm_Defaults(t *testing.T) {
	f := aboutpoints.NewForm(nil, nil)

	if f.State() != aboutpoints.Loading {
		t.Errorf("State() = %v, want loading", f.State())
	}
	if f.Title() != "" {
		t.Errorf("Title() = %q, want empty", f.Title())
	}
	if !reflect.DeepEqual(f.Points(), []string{""}) {
		t.Errorf("Points() = %#v, want one empty point", f.Points())
	}
	if f.Status() != models.StatusActive {
		t.Errorf("Status() = %q, want active", f.Status())
	}
	if _, ok := f.ID(); ok {
		t.Error("expected no id before load")
	}
}

func TestLoad_FullPayload(t *testing.T) {
	f, _, _ := newLoadedForm(t, testutil.FullRecordJSON)

	if f.Title() != "Who we are" {
		t.Errorf("Title() = %q", f.Title())
	}
	if !reflect.DeepEqual(f.Points(), []string{"A", "B"}) {
		t.Errorf("Points() = %#v", f.Points())
	}
	if f.Status() != models.StatusInactive {
		t.Errorf("Status() = %q", f.Status())
	}
	if id, ok := f.ID(); !ok || id != "42" {
		t.Errorf("ID() = %q, %v; want 42", id, ok)
	}
	if f.State() != aboutpoints.Loaded {
		t.Errorf("State() = %v, want loaded", f.State())
	}
}

func TestLoad_EmptyPayload(t *testing.T) {
	f, _, _ := newLoadedForm(t, testutil.EmptyRecordJSON)

	if f.Title() != "" {
		t.Errorf("Title() = %q, want empty", f.Title())
	}
	if !reflect.DeepEqual(f.Points(), []string{""}) {
		t.Errorf("Points() = %#v, want [\"\"]", f.Points())
	}
	if f.Status() != models.StatusActive {
		t.Errorf("Status() = %q, want active", f.Status())
	}
	if _, ok := f.ID(); ok {
		t.Error("expected id to stay absent")
	}
}

func TestLoad_MissingFieldsDefaultIndependently(t *testing.T) {
	tests := []struct {
		name string
		body string
		want aboutpoints.Snapshot
	}{
		{
			name: "missing title",
			body: `{"_id":"1","points":["p"],"status":"inactive"}`,
			want: aboutpoints.Snapshot{ID: "1", Title: "", Points: []string{"p"}, Status: models.StatusInactive},
		},
		{
			name: "missing points",
			body: `{"_id":"1","title":"t","status":"inactive"}`,
			want: aboutpoints.Snapshot{ID: "1", Title: "t", Points: []string{""}, Status: models.StatusInactive},
		},
		{
			name: "missing status",
			body: `{"_id":"1","title":"t","points":["p"]}`,
			want: aboutpoints.Snapshot{ID: "1", Title: "t", Points: []string{"p"}, Status: models.StatusActive},
		},
		{
			name: "missing id",
			body: `{"title":"t","points":["p"],"status":"inactive"}`,
			want: aboutpoints.Snapshot{ID: "", Title: "t", Points: []string{"p"}, Status: models.StatusInactive},
		},
		{
			name: "explicit empty points kept",
			body: `{"_id":"1","title":"t","points":[],"status":"active"}`,
			want: aboutpoints.Snapshot{ID: "1", Title: "t", Points: []string{}, Status: models.StatusActive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, _, _ := newLoadedForm(t, tt.body)
			if got := f.Snapshot(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Snapshot() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoad_FailureKeepsDefaultsAndFinishesLoading(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusInternalServerError, `{"message":"database down"}`)
	rec := &diaglog.Recorder{}
	f := aboutpoints.NewForm(aboutapi.New(fb.URL(), zap.NewNop()), rec)

	res := f.Load(context.Background())

	if res.OK || res.Err == nil {
		t.Fatalf("expected failed result, got %+v", res)
	}
	if res.Message != "database down" {
		t.Errorf("Message = %q, want backend message", res.Message)
	}
	if f.State() != aboutpoints.Loaded {
		t.Errorf("State() = %v, want loaded after failure", f.State())
	}
	if f.Title() != "" || !reflect.DeepEqual(f.Points(), []string{""}) || f.Status() != models.StatusActive {
		t.Errorf("expected defaults after failure, got %#v", f.Snapshot())
	}

	last, ok := rec.Last()
	if !ok || last.Success || last.Operation != diagnostics.OpLoad {
		t.Errorf("expected failed load diagnostic, got %+v", last)
	}
	if last.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", last.StatusCode)
	}
}

func TestLoad_OnlyOnce(t *testing.T) {
	f, fb, _ := newLoadedForm(t, testutil.FullRecordJSON)

	res := f.Load(context.Background())
	if !errors.Is(res.Err, aboutpoints.ErrAlreadyLoaded) {
		t.Errorf("second Load err = %v, want ErrAlreadyLoaded", res.Err)
	}
	if fb.Gets() != 1 {
		t.Errorf("backend gets = %d, want 1", fb.Gets())
	}
	if f.State() != aboutpoints.Loaded {
		t.Errorf("State() = %v, want loaded", f.State())
	}
}

func TestAddPoint(t *testing.T) {
	f := aboutpoints.NewLoadedForm(nil, nil, aboutpoints.Snapshot{Points: []string{"a", "b"}})

	f.AddPoint()

	if !reflect.DeepEqual(f.Points(), []string{"a", "b", ""}) {
		t.Errorf("Points() = %#v", f.Points())
	}
}

func TestRemovePoint(t *testing.T) {
	tests := []struct {
		name  string
		start []string
		index int
		want  []string
	}{
		{"middle", []string{"a", "b", "c"}, 1, []string{"a", "c"}},
		{"last", []string{"a", "b", "c"}, 2, []string{"a", "b"}},
		{"first allowed by operation", []string{"a", "b"}, 0, []string{"b"}},
		{"only element", []string{"a"}, 0, []string{}},
		{"out of range high", []string{"a", "b"}, 5, []string{"a", "b"}},
		{"out of range negative", []string{"a", "b"}, -1, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := aboutpoints.NewLoadedForm(nil, nil, aboutpoints.Snapshot{Points: tt.start})
			f.RemovePoint(tt.index)
			if got := f.Points(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Points() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestUpdatePoint(t *testing.T) {
	f := aboutpoints.NewLoadedForm(nil, nil, aboutpoints.Snapshot{Points: []string{"a", "b", "c"}})

	f.UpdatePoint(1, "B")
	f.UpdatePoint(9, "ignored")

	if !reflect.DeepEqual(f.Points(), []string{"a", "B", "c"}) {
		t.Errorf("Points() = %#v", f.Points())
	}
}

func TestAddThenRemoveRestoresPoints(t *testing.T) {
	f := aboutpoints.NewLoadedForm(nil, nil, aboutpoints.Snapshot{Points: []string{"x"}})

	f.AddPoint()
	f.RemovePoint(1)

	if !reflect.DeepEqual(f.Points(), []string{"x"}) {
		t.Errorf("Points() = %#v, want [x]", f.Points())
	}
}

func TestPoints_ReturnsCopy(t *testing.T) {
	f := aboutpoints.NewLoadedForm(nil, nil, aboutpoints.Snapshot{Points: []string{"a"}})

	pts := f.Points()
	pts[0] = "mutated"

	if f.Points()[0] != "a" {
		t.Error("Points() must not expose internal state")
	}
}

func TestSubmit_SendsCurrentState(t *testing.T) {
	f, fb, rec := newLoadedForm(t, testutil.FullRecordJSON)

	f.SetTitle("New title")
	f.UpdatePoint(0, "A1")
	f.AddPoint()
	f.UpdatePoint(2, "C")
	f.SetStatus(models.StatusActive)

	res := f.Submit(context.Background())
	if !res.OK {
		t.Fatalf("Submit failed: %+v", res)
	}

	edits := fb.Edits()
	if len(edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(edits))
	}
	if edits[0].ID != "42" {
		t.Errorf("edit id = %q, want 42", edits[0].ID)
	}
	want := map[string]any{
		"title":  "New title",
		"points": []any{"A1", "B", "C"},
		"status": "active",
	}
	if !reflect.DeepEqual(edits[0].Body, want) {
		t.Errorf("body = %#v, want %#v", edits[0].Body, want)
	}

	last, _ := rec.Last()
	if !last.Success || last.Operation != diagnostics.OpSubmit || last.RecordID != "42" {
		t.Errorf("unexpected diagnostic %+v", last)
	}
}

func TestSubmit_SuccessDoesNotResync(t *testing.T) {
	f, fb, _ := newLoadedForm(t, testutil.FullRecordJSON)
	fb.SetEdit(http.StatusOK, `{"_id":"42","title":"Server title","points":["S"],"status":"inactive"}`)

	f.SetTitle("Typed title")
	f.Submit(context.Background())

	if f.Title() != "Typed title" {
		t.Errorf("Title() = %q, want the typed value", f.Title())
	}
	if !reflect.DeepEqual(f.Points(), []string{"A", "B"}) {
		t.Errorf("Points() = %#v, want unchanged", f.Points())
	}
}

func TestSubmit_FailureWithMessage(t *testing.T) {
	f, fb, rec := newLoadedForm(t, testutil.FullRecordJSON)
	fb.SetEdit(http.StatusBadRequest, `{"message":"title required"}`)

	res := f.Submit(context.Background())

	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Message != "title required" {
		t.Errorf("Message = %q", res.Message)
	}
	last, _ := rec.Last()
	if last.Success || last.Message != "title required" || last.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected diagnostic %+v", last)
	}

	// Still submittable.
	fb.SetEdit(http.StatusOK, "")
	if res := f.Submit(context.Background()); !res.OK {
		t.Errorf("resubmit failed: %+v", res)
	}
	if len(fb.Edits()) != 2 {
		t.Errorf("expected 2 edits, got %d", len(fb.Edits()))
	}
}

func TestSubmit_FailureWithoutMessage(t *testing.T) {
	f, fb, _ := newLoadedForm(t, testutil.FullRecordJSON)
	fb.SetEdit(http.StatusInternalServerError, ``)

	res := f.Submit(context.Background())
	if res.Message != "request failed with status 500" {
		t.Errorf("Message = %q, want generic message", res.Message)
	}
}

func TestSubmit_WithoutIDIsRefused(t *testing.T) {
	f, fb, rec := newLoadedForm(t, testutil.EmptyRecordJSON)
	f.SetTitle("t")
	f.UpdatePoint(0, "p")

	res := f.Submit(context.Background())

	if !errors.Is(res.Err, aboutpoints.ErrNoRecordID) {
		t.Errorf("Err = %v, want ErrNoRecordID", res.Err)
	}
	if len(fb.Edits()) != 0 {
		t.Errorf("no request should be sent, got %d", len(fb.Edits()))
	}
	last, _ := rec.Last()
	if last.Success || last.Operation != diagnostics.OpSubmit {
		t.Errorf("unexpected diagnostic %+v", last)
	}
}

func TestSubmit_EmptyPointsAllowed(t *testing.T) {
	f, fb, _ := newLoadedForm(t, testutil.FullRecordJSON)
	f.RemovePoint(1)
	f.RemovePoint(0)

	if res := f.Submit(context.Background()); !res.OK {
		t.Fatalf("Submit failed: %+v", res)
	}
	pts, ok := fb.Edits()[0].Body["points"].([]any)
	if !ok || len(pts) != 0 {
		t.Errorf("points = %#v, want []", fb.Edits()[0].Body["points"])
	}
}

func TestLoadAndSubmit_Concurrent(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, testutil.FullRecordJSON)
	f := aboutpoints.NewForm(aboutapi.New(fb.URL(), zap.NewNop()), nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); f.Load(context.Background()) }()
	go func() { defer wg.Done(); f.Submit(context.Background()) }()
	wg.Wait()

	if f.State() != aboutpoints.Loaded {
		t.Errorf("State() = %v, want loaded", f.State())
	}
}

func TestLoadState_String(t *testing.T) {
	if aboutpoints.Loading.String() != "loading" || aboutpoints.Loaded.String() != "loaded" {
		t.Error("unexpected LoadState strings")
	}
}

// ctxCheckSink records whether the context handed to the sink was still live.
type ctxCheckSink struct {
	mu     sync.Mutex
	errs   []error
	events []diagnostics.Event
}

func (s *ctxCheckSink) Record(ctx context.Context, ev diagnostics.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, ctx.Err())
	s.events = append(s.events, ev)
}

func TestLoad_TimeoutStillReachesSinkWithLiveContext(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, testutil.FullRecordJSON)
	fb.SetDelay(2 * time.Second)
	sink := &ctxCheckSink{}
	f := aboutpoints.NewForm(aboutapi.New(fb.URL(), zap.NewNop()), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if res := f.Load(ctx); res.OK {
		t.Fatal("expected load to time out")
	}

	if len(sink.events) != 1 || sink.events[0].Success {
		t.Fatalf("expected one failure event, got %+v", sink.events)
	}
	if sink.errs[0] != nil {
		t.Errorf("sink context error = %v, want live context", sink.errs[0])
	}
}

func TestSubmit_CanceledRequestStillReachesSinkWithLiveContext(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	sink := &ctxCheckSink{}
	f := aboutpoints.NewLoadedForm(aboutapi.New(fb.URL(), zap.NewNop()), sink, aboutpoints.Snapshot{
		ID: "42", Title: "T", Points: []string{"a"}, Status: models.StatusActive,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := f.Submit(ctx); res.OK {
		t.Fatal("expected submit on a canceled context to fail")
	}

	if len(sink.events) != 1 || sink.events[0].Operation != diagnostics.OpSubmit {
		t.Fatalf("expected one submit event, got %+v", sink.events)
	}
	if sink.errs[0] != nil {
		t.Errorf("sink context error = %v, want live context", sink.errs[0])
	}
}

func TestLoad_OverlappingCallsFetchOnce(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, testutil.FullRecordJSON)
	fb.SetDelay(100 * time.Millisecond)
	f := aboutpoints.NewForm(aboutapi.New(fb.URL(), zap.NewNop()), nil)

	const callers = 5
	results := make([]aboutpoints.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Load(context.Background())
		}(i)
	}
	wg.Wait()

	if fb.Gets() != 1 {
		t.Errorf("gets = %d, want 1", fb.Gets())
	}
	ok := 0
	for _, res := range results {
		if res.OK {
			ok++
		} else if !errors.Is(res.Err, aboutpoints.ErrAlreadyLoaded) {
			t.Errorf("unexpected error %v", res.Err)
		}
	}
	if ok != 1 {
		t.Errorf("successful loads = %d, want 1", ok)
	}
}
