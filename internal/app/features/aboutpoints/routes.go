// internal/app/features/aboutpoints/routes.go
package aboutpoints

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the edit page router. Mount it at EditPath; mw wraps the
// router (bootstrap passes CSRF protection).
func Routes(h *Handler, mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/", h.ServeEdit)
	r.Post("/", h.HandleEdit)
	return r
}
