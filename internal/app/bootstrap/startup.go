// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/aboutadmin/internal/app/resources"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: shared
// templates and the site name. Timeouts were already applied in ConnectDB.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()
	viewdata.SetSiteName(appCfg.SiteName)

	cur := timeouts.Current()
	logger.Info("startup complete",
		zap.String("api_base_url", appCfg.APIBaseURL),
		zap.String("diagnostics_mode", appCfg.DiagnosticsMode),
		zap.Duration("timeout_short", cur.Short),
		zap.Duration("timeout_medium", cur.Medium),
		zap.Duration("timeout_long", cur.Long),
	)
	return nil
}
