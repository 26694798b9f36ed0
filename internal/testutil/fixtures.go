package testutil

import (
	"net/http"
	"sync"
)

// Payloads returned by the fake backend in tests.
const (
	FullRecordJSON    = `{"_id":"42","title":"Who we are","points":["A","B"],"status":"inactive"}`
	EmptyRecordJSON   = `{}`
	PartialRecordJSON = `{"_id":"7","title":"Only a title"}`
)

// Rendered captures a single template render.
type Rendered struct {
	Name string
	Data any
}

// RenderCapture records template renders instead of executing templates.
// Its Render method matches the signature of templates.Render.
type RenderCapture struct {
	mu    sync.Mutex
	calls []Rendered
}

// Render records the call and writes a 200 with the template name.
func (c *RenderCapture) Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	c.mu.Lock()
	c.calls = append(c.calls, Rendered{Name: name, Data: data})
	c.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(name))
}

// Last returns the most recent render, if any.
func (c *RenderCapture) Last() (Rendered, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return Rendered{}, false
	}
	return c.calls[len(c.calls)-1], true
}

// Count returns the number of renders recorded.
func (c *RenderCapture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
