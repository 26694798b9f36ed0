package bootstrap

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/aboutadmin/internal/app/resources"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		APIBaseURL:      "http://localhost:3006",
		APITimeout:      time.Second,
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "about_admin",
		DiagnosticsMode: diaglog.ModeLog,
		CSRFKey:         devCSRFKey,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*AppConfig) {}},
		{name: "relative base url", mutate: func(c *AppConfig) { c.APIBaseURL = "/api" }, wantErr: true},
		{name: "ftp base url", mutate: func(c *AppConfig) { c.APIBaseURL = "ftp://host" }, wantErr: true},
		{name: "unknown mode", mutate: func(c *AppConfig) { c.DiagnosticsMode = "verbose" }, wantErr: true},
		{name: "bad mongo uri ignored in log mode", mutate: func(c *AppConfig) { c.MongoURI = "nope" }},
		{name: "bad mongo uri in db mode", mutate: func(c *AppConfig) {
			c.DiagnosticsMode = diaglog.ModeDB
			c.MongoURI = "nope"
		}, wantErr: true},
		{name: "missing database in all mode", mutate: func(c *AppConfig) {
			c.DiagnosticsMode = diaglog.ModeAll
			c.MongoDatabase = ""
		}, wantErr: true},
		{name: "negative retention", mutate: func(c *AppConfig) { c.DiagnosticsRetention = -time.Hour }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *AppConfig) { c.SubmitRateLimit = -1 }, wantErr: true},
		{name: "dev csrf key in prod", env: "prod", mutate: func(*AppConfig) {}, wantErr: true},
		{name: "strong csrf key in prod", env: "prod", mutate: func(c *AppConfig) {
			c.CSRFKey = "0123456789abcdef0123456789abcdef-prod"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			core := &config.CoreConfig{Env: tt.env}

			err := ValidateConfig(core, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectDB_ConfiguresTimeouts(t *testing.T) {
	defer timeouts.Reset()

	cfg := validAppConfig()
	cfg.TimeoutShort = 3 * time.Second
	cfg.TimeoutMedium = 0
	cfg.TimeoutLong = 7 * time.Second

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := ConnectDB(ctx, &config.CoreConfig{}, cfg, testLogger()); err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}

	cur := timeouts.Current()
	if cur.Short != 3*time.Second {
		t.Errorf("Short = %v, want 3s", cur.Short)
	}
	if cur.Medium != timeouts.DefaultMedium {
		t.Errorf("Medium = %v, want default", cur.Medium)
	}
	if cur.Long != 7*time.Second {
		t.Errorf("Long = %v, want 7s", cur.Long)
	}
}

func TestConnectDB_UnreachableMongoHonorsLongTimeout(t *testing.T) {
	defer timeouts.Reset()

	cfg := validAppConfig()
	cfg.DiagnosticsMode = diaglog.ModeDB
	cfg.MongoURI = "mongodb://127.0.0.1:1/?connectTimeoutMS=100"
	cfg.TimeoutLong = 300 * time.Millisecond

	start := time.Now()
	_, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected connect to an unreachable server to fail")
	}
	if elapsed > 5*time.Second {
		t.Errorf("ConnectDB took %v, want it bounded by timeout_long", elapsed)
	}
}

func TestConnectDB_SkippedWhenNotPersisting(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps, err := ConnectDB(ctx, &config.CoreConfig{}, validAppConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.MongoClient != nil || deps.Diagnostics != nil {
		t.Errorf("expected empty deps, got %+v", deps)
	}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Errorf("EnsureSchema with no database: %v", err)
	}
	if err := Shutdown(ctx, &config.CoreConfig{}, validAppConfig(), deps, testLogger()); err != nil {
		t.Errorf("Shutdown with no database: %v", err)
	}
}

func TestRouter_HealthAndRedirect(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, testutil.FullRecordJSON)

	cfg := validAppConfig()
	cfg.APIBaseURL = fb.URL()
	r := newRouter(false, cfg, DBDeps{}, testLogger())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body["backend"] != "reachable" || body["database"] != "disabled" {
		t.Errorf("health body = %v", body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/about" {
		t.Errorf("GET / = %d to %q, want redirect to /about", rec.Code, rec.Header().Get("Location"))
	}
}

var bootTemplatesOnce sync.Once

// bootTemplates boots the real template engine the way BuildHandler does.
func bootTemplates(t *testing.T) {
	t.Helper()
	var err error
	bootTemplatesOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if err = eng.Boot(testLogger()); err != nil {
			return
		}
		templates.UseEngine(eng, testLogger())
	})
	if err != nil {
		t.Fatalf("boot templates: %v", err)
	}
}

var csrfTokenField = regexp.MustCompile(`name="gorilla\.csrf\.Token" value="([^"]+)"`)

func savePostForm() url.Values {
	return url.Values{
		"id":     {"42"},
		"title":  {"Who we are"},
		"point":  {"A", "B"},
		"status": {"active"},
		"action": {"save"},
	}
}

func TestRouter_EditRoundTripWithCSRFToken(t *testing.T) {
	bootTemplates(t)

	fb := testutil.NewFakeBackend(t)
	fb.SetGet(http.StatusOK, testutil.FullRecordJSON)
	cfg := validAppConfig()
	cfg.APIBaseURL = fb.URL()
	r := newRouter(false, cfg, DBDeps{}, testLogger())

	getRec := httptest.NewRecorder()
	r.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/admin/about-us-points", nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET edit page = %d, want 200", getRec.Code)
	}
	m := csrfTokenField.FindStringSubmatch(getRec.Body.String())
	if m == nil {
		t.Fatal("edit page has no CSRF token field")
	}

	form := savePostForm()
	form.Set("gorilla.csrf.Token", html.UnescapeString(m[1]))
	req := httptest.NewRequest(http.MethodPost, "/admin/about-us-points", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range getRec.Result().Cookies() {
		req.AddCookie(c)
	}

	postRec := httptest.NewRecorder()
	r.ServeHTTP(postRec, req)

	if postRec.Code != http.StatusOK {
		t.Fatalf("POST save = %d, want 200", postRec.Code)
	}
	edits := fb.Edits()
	if len(edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(edits))
	}
	if edits[0].ID != "42" || edits[0].Body["title"] != "Who we are" {
		t.Errorf("unexpected edit %+v", edits[0])
	}
}

func TestRouter_EditPostWithoutCSRFTokenIsForbidden(t *testing.T) {
	bootTemplates(t)

	fb := testutil.NewFakeBackend(t)
	cfg := validAppConfig()
	cfg.APIBaseURL = fb.URL()
	r := newRouter(false, cfg, DBDeps{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/about-us-points", strings.NewReader(savePostForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token = %d, want 403", rec.Code)
	}
	if len(fb.Edits()) != 0 {
		t.Error("a post without a CSRF token must not reach the backend")
	}
}
