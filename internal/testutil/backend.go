package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
)

// EditRequest is a PUT received by the FakeBackend.
type EditRequest struct {
	ID        string
	RequestID string
	Body      map[string]any
	RawBody   []byte
}

// FakeBackend is an httptest server implementing the About Us REST API.
//
// GetBody is returned verbatim from the get endpoint (defaults to "{}").
// EditStatus/EditBody control the edit endpoint's answer; by default it
// echoes the submitted body with a 200.
type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	getStatus  int
	getBody    string
	editStatus int
	editBody   string
	delay      time.Duration
	gets       int
	edits      []EditRequest
}

// NewFakeBackend starts a FakeBackend and closes it when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{getStatus: http.StatusOK, getBody: "{}", editStatus: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc(aboutapi.GetPath, fb.serveGet)
	mux.HandleFunc(aboutapi.EditPath, fb.serveEdit)
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Server.Close)

	return fb
}

// URL returns the base URL of the fake backend.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL
}

// SetGet configures the get endpoint's response.
func (fb *FakeBackend) SetGet(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.getStatus = status
	fb.getBody = body
}

// SetEdit configures the edit endpoint's response. An empty body makes it
// echo the request body.
func (fb *FakeBackend) SetEdit(status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.editStatus = status
	fb.editBody = body
}

// SetDelay makes both endpoints wait d (or until the client gives up)
// before answering.
func (fb *FakeBackend) SetDelay(d time.Duration) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.delay = d
}

func (fb *FakeBackend) wait(r *http.Request) {
	fb.mu.Lock()
	d := fb.delay
	fb.mu.Unlock()
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
	}
}

// Gets returns how many get requests were served.
func (fb *FakeBackend) Gets() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.gets
}

// Edits returns a copy of the edit requests received so far.
func (fb *FakeBackend) Edits() []EditRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]EditRequest(nil), fb.edits...)
}

func (fb *FakeBackend) serveGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fb.mu.Lock()
	fb.gets++
	status, body := fb.getStatus, fb.getBody
	fb.mu.Unlock()
	fb.wait(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (fb *FakeBackend) serveEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	fb.mu.Lock()
	fb.edits = append(fb.edits, EditRequest{
		ID:        r.URL.Query().Get("id"),
		RequestID: r.Header.Get(aboutapi.RequestIDHeader),
		Body:      body,
		RawBody:   raw,
	})
	status, respBody := fb.editStatus, fb.editBody
	fb.mu.Unlock()

	fb.wait(r)
	if respBody == "" {
		respBody = string(raw)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}
