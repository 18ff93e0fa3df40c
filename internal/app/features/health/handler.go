package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is anything with a connectivity check (the backend client, the
// view-state store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Backend   Pinger
	ViewState Pinger
	// Mongo is nil when no audit database is configured.
	Mongo *mongo.Client
	Log   *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(backend, viewState Pinger, client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Backend:   backend,
		ViewState: viewState,
		Mongo:     client,
		Log:       logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status    string            `json:"status"`
	Backend   string            `json:"backend"`
	ViewState string            `json:"viewstate"`
	Database  string            `json:"database"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"reachable", "viewstate":"connected", "database":"connected" }
//
// When any configured dependency fails: 503 with "status":"error" and the
// failure under "errors". An unconfigured database reports "disabled".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:    "ok",
		Backend:   "reachable",
		ViewState: "connected",
		Database:  "disabled",
	}
	fail := func(name string, err error) {
		h.Log.Error("health-check failed", zap.String("dependency", name), zap.Error(err))
		if resp.Errors == nil {
			resp.Errors = make(map[string]string)
		}
		resp.Errors[name] = err.Error()
		resp.Status = "error"
	}

	if h.Backend != nil {
		if err := h.Backend.Ping(ctx); err != nil {
			resp.Backend = "unreachable"
			fail("backend", err)
		}
	}
	if h.ViewState != nil {
		if err := h.ViewState.Ping(ctx); err != nil {
			resp.ViewState = "disconnected"
			fail("viewstate", err)
		}
	}
	if h.Mongo != nil {
		resp.Database = "connected"
		if err := h.Mongo.Ping(ctx, readpref.Primary()); err != nil {
			resp.Database = "disconnected"
			fail("database", err)
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
