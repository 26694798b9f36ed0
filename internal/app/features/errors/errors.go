// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// Handler is the errors feature handler.
// No backend needed; it just renders templates.
type Handler struct {
	render viewdata.RenderFunc
}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{render: viewdata.Render}
}

// UseRenderer replaces the template renderer.
func (h *Handler) UseRenderer(fn viewdata.RenderFunc) {
	h.render = fn
}

// NotFound renders a friendly "not found" page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(h.render, w, r, http.StatusNotFound, "Not found", "The page you asked for does not exist.", "/about")
}

// MethodNotAllowed renders the error page for unsupported methods.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	renderError(h.render, w, r, http.StatusMethodNotAllowed, "Not allowed", "That action is not supported here.", "/about")
}

// CSRFFailure renders the page shown when a form post fails the CSRF check.
func (h *Handler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	renderError(h.render, w, r, http.StatusForbidden, "Form expired", "The form has expired. Reload the page and try again.", r.URL.Path)
}

func renderError(render viewdata.RenderFunc, w http.ResponseWriter, r *http.Request, status int, title, msg, backDefault string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, backDefault),
		Status:  status,
		Message: msg,
	}
	w.WriteHeader(status)
	render(w, r, "error_page", data)
}
