// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in page headers when no site name is configured.
const DefaultSiteName = "About Us Admin"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFField template.HTML
}

var (
	mu       sync.RWMutex
	siteName = DefaultSiteName
)

// SetSiteName sets the site name used by NewBaseVM.
// Call this once at startup from bootstrap.
func SetSiteName(name string) {
	mu.Lock()
	defer mu.Unlock()
	if name == "" {
		name = DefaultSiteName
	}
	siteName = name
}

// SiteName returns the configured site name.
func SiteName() string {
	mu.RLock()
	defer mu.RUnlock()
	return siteName
}

// NewBaseVM creates a populated BaseVM for a page.
//
// Parameters:
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	return BaseVM{
		SiteName:    SiteName(),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFField:   csrf.TemplateField(r),
	}
}

// RenderFunc renders the named template. Handlers hold one so tests can
// capture renders without booting the template engine.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Render renders through the WAFFLE template engine.
func Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	templates.Render(w, r, name, data)
}
