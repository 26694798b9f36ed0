// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	aboutfeature "github.com/dalemusser/aboutadmin/internal/app/features/about"
	"github.com/dalemusser/aboutadmin/internal/app/features/aboutpoints"
	diagnosticsfeature "github.com/dalemusser/aboutadmin/internal/app/features/diagnostics"
	errorsfeature "github.com/dalemusser/aboutadmin/internal/app/features/errors"
	healthfeature "github.com/dalemusser/aboutadmin/internal/app/features/health"
	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It boots the template engine and mounts
// the feature routers: the public About Us page, the admin edit form, the
// diagnostics list, and the health check.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	return newRouter(coreCfg.Env == "prod", appCfg, deps, logger), nil
}

// newRouter wires the features together. It does not touch the template
// engine, so tests can build it directly.
func newRouter(secure bool, appCfg AppConfig, deps DBDeps, logger *zap.Logger) chi.Router {
	api := aboutapi.New(appCfg.APIBaseURL, logger, aboutapi.WithTimeout(appCfg.APITimeout))
	sink := diaglog.New(deps.Diagnostics, logger, appCfg.DiagnosticsMode)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	protect := csrf.Protect(
		[]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(errorsHandler.CSRFFailure)),
	)

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(api, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/about", http.StatusSeeOther)
	})

	// Public preview
	aboutHandler := aboutfeature.NewHandler(api, sink, logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	// Admin
	editHandler := aboutpoints.NewHandler(api, sink, appCfg.ShowDiagnostics, errLog, logger)
	if appCfg.SubmitRateLimit > 0 {
		editHandler.SubmitLimiter = ratelimit.New(appCfg.SubmitRateLimit, time.Minute)
	}
	r.Mount(aboutpoints.EditPath, aboutpoints.Routes(editHandler, plaintextUnlessTLS(secure), protect))

	diagHandler := diagnosticsfeature.NewHandler(deps.Diagnostics, sink.Mode(), errLog, logger)
	r.Mount("/admin/diagnostics", diagnosticsfeature.Routes(diagHandler))

	return r
}

// plaintextUnlessTLS marks requests that arrived over plain HTTP so the CSRF
// origin check compares against http:// origins. In production everything
// is treated as HTTPS.
func plaintextUnlessTLS(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
