// internal/app/features/diagnostics/routes.go
package diagnostics

import "github.com/go-chi/chi/v5"

// Routes returns the diagnostics router, mounted at /admin/diagnostics.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
