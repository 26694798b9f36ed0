package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/aboutadmin/internal/app/system/aboutapi"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Backend is the About Us API read used as the backend probe.
type Backend interface {
	Get(ctx context.Context) (models.AboutUsPoint, error)
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	API    Backend
	Client *mongo.Client // nil when diagnostics are not persisted
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. client may be nil.
func NewHandler(api Backend, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		API:    api,
		Client: client,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"reachable", "database":"connected" }
//
// database is "disabled" when no Mongo client is configured. On failure: 503
// and
//
//	{ "status":"error", "backend":"unreachable", "message":"Backend unavailable", "error":"…" }
//
// Each check gets its own Ping budget, so a slow backend cannot starve the
// database ping.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Backend:  "reachable",
		Database: "disabled",
	}

	if err := h.checkBackend(r.Context()); err != nil {
		h.Log.Error("health-check: backend get failed", zap.Error(err))
		resp.Status = "error"
		resp.Backend = "unreachable"
		resp.Message = "Backend unavailable"
		resp.Error = aboutapi.Message(err)
	}

	if h.Client != nil {
		resp.Database = "connected"
		if err := h.checkDatabase(r.Context()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Database = "disconnected"
			if resp.Status == "ok" {
				resp.Status = "error"
				resp.Message = "Database unavailable"
				resp.Error = err.Error()
			}
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) checkBackend(parent context.Context) error {
	ctx, cancel := timeouts.WithTimeout(parent, timeouts.Ping(), h.Log, "health backend get")
	defer cancel()
	_, err := h.API.Get(ctx)
	return err
}

func (h *Handler) checkDatabase(parent context.Context) error {
	ctx, cancel := timeouts.WithTimeout(parent, timeouts.Ping(), h.Log, "health mongo ping")
	defer cancel()
	return h.Client.Ping(ctx, readpref.Primary())
}
