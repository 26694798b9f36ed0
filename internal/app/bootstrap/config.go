// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devCSRFKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the About Us admin.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, diagnostics_mode, etc.
//   - Environment variables: ABOUTADMIN_API_BASE_URL, ABOUTADMIN_DIAGNOSTICS_MODE, etc.
//   - Command-line flags: --api_base_url, --diagnostics_mode, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://localhost:3006", Desc: "Base URL of the About Us REST backend"},
	{Name: "api_timeout", Default: "15s", Desc: "HTTP client timeout for backend requests"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (diagnostics storage)"},
	{Name: "mongo_database", Default: "about_admin", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 20, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 0, Desc: "MongoDB min connection pool size"},

	{Name: "diagnostics_mode", Default: diaglog.ModeLog, Desc: "Diagnostics: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "show_diagnostics", Default: false, Desc: "Show the latest load/submit outcome on the edit page"},
	{Name: "diagnostics_retention", Default: "720h", Desc: "How long persisted diagnostics are kept (0 keeps them forever)"},
	{Name: "submit_rate_limit", Default: 30, Desc: "Max saves per client IP per minute (0 disables)"},

	{Name: "site_name", Default: viewdata.DefaultSiteName, Desc: "Site name shown in page headers"},
	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF token secret (must be strong in production)"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for backend reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for backend writes and diagnostics queries"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for startup work such as index creation"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (ABOUTADMIN_* for the app) and flags with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ABOUTADMIN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL: appValues.String("api_base_url"),
		APITimeout: appValues.Duration("api_timeout", aboutapi.DefaultTimeout),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		DiagnosticsMode: appValues.String("diagnostics_mode"),
		ShowDiagnostics: appValues.Bool("show_diagnostics"),

		DiagnosticsRetention: appValues.Duration("diagnostics_retention", 30*24*time.Hour),
		SubmitRateLimit:      appValues.Int("submit_rate_limit"),

		SiteName: appValues.String("site_name"),
		CSRFKey:  appValues.String("csrf_key"),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The backend URL must be an absolute http(s) URL and the diagnostics mode
// must be known. The MongoDB URI is only checked when diagnostics are
// persisted, since nothing else connects to Mongo.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateBaseURL(appCfg.APIBaseURL); err != nil {
		logger.Error("invalid api_base_url", zap.String("api_base_url", appCfg.APIBaseURL), zap.Error(err))
		return err
	}

	if !diaglog.ValidMode(appCfg.DiagnosticsMode) {
		return fmt.Errorf("invalid diagnostics_mode %q: want all, db, log, or off", appCfg.DiagnosticsMode)
	}

	if diaglog.UsesDB(appCfg.DiagnosticsMode) {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when diagnostics_mode is %q", appCfg.DiagnosticsMode)
		}
	}

	if appCfg.DiagnosticsRetention < 0 {
		return fmt.Errorf("diagnostics_retention must not be negative")
	}
	if appCfg.SubmitRateLimit < 0 {
		return fmt.Errorf("submit_rate_limit must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.CSRFKey == devCSRFKey || len(appCfg.CSRFKey) < 32 {
			return fmt.Errorf("csrf_key must be set to a secret of at least 32 characters in production")
		}
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api_base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api_base_url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q: host is required", raw)
	}
	return nil
}

// timeoutConfig maps the app config onto the timeouts package.
func timeoutConfig(appCfg AppConfig) timeouts.Config {
	return timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	}
}
