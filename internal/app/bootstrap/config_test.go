package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/waffle/config"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

func validConfig() AppConfig {
	return AppConfig{
		BackendURL:    "http://localhost:5000",
		SessionKey:    "dev-only-change-me-please-0123456789ABCDEF",
		CSRFKey:       "dev-only-csrf-key-change-me-0123456789",
		ApproveStatus: "completed",
		PollInterval:  20 * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	tests := []struct {
		name    string
		core    *config.CoreConfig
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "defaults", core: dev},
		{name: "approved status", core: dev, mutate: func(c *AppConfig) { c.ApproveStatus = "approved" }},
		{name: "missing backend", core: dev, mutate: func(c *AppConfig) { c.BackendURL = "" }, wantErr: "backend_url is required"},
		{name: "backend scheme", core: dev, mutate: func(c *AppConfig) { c.BackendURL = "ftp://example.com" }, wantErr: "http or https"},
		{name: "backend host", core: dev, mutate: func(c *AppConfig) { c.BackendURL = "http://" }, wantErr: "no host"},
		{name: "bad approve status", core: dev, mutate: func(c *AppConfig) { c.ApproveStatus = "paid" }, wantErr: "approve_status"},
		{name: "bad mongo uri", core: dev, mutate: func(c *AppConfig) { c.MongoURI = "postgres://localhost:5432" }, wantErr: "MongoDB URI"},
		{name: "feed without interval", core: dev, mutate: func(c *AppConfig) {
			c.PollToken = "svc"
			c.PollInterval = 0
		}, wantErr: "poll_interval"},
		{name: "prod with dev keys", core: prod, wantErr: "production"},
		{name: "prod with real keys", core: prod, mutate: func(c *AppConfig) {
			c.SessionKey = strings.Repeat("s", 48)
			c.CSRFKey = strings.Repeat("c", 48)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := ValidateConfig(tt.core, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestBackgroundJobs(t *testing.T) {
	names := func(deps DBDeps) []string {
		var out []string
		for _, j := range backgroundJobs(deps, zap.NewNop()) {
			out = append(out, j.Name)
		}
		return out
	}

	if got := names(DBDeps{}); len(got) != 1 || got[0] != "signin-throttle-sweep" {
		t.Fatalf("jobs without stores = %v, want only the sign-in sweep", got)
	}
	if got := names(DBDeps{Memory: viewstate.NewMemory()}); len(got) != 2 || got[1] != "viewstate-sweep" {
		t.Fatalf("jobs with memory store = %v, want the view-state sweep added", got)
	}
}

func TestCSRFMiddleware(t *testing.T) {
	var token string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = csrf.Token(r)
		w.WriteHeader(http.StatusOK)
	})
	failed := 0
	failure := func(w http.ResponseWriter, r *http.Request) {
		failed++
		w.WriteHeader(http.StatusForbidden)
	}
	h := csrfMiddleware("test-key", false, failure)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rec.Code != http.StatusOK || token == "" {
		t.Fatalf("GET: status %d token %q", rec.Code, token)
	}

	// POST without a token is refused.
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/admin/payments/1/approve", nil))
	if rec2.Code != http.StatusForbidden || failed != 1 {
		t.Fatalf("POST without token: status %d, failures %d", rec2.Code, failed)
	}

	// POST with the header and cookie from the GET passes.
	req := httptest.NewRequest(http.MethodPost, "/admin/payments/1/approve", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set("X-CSRF-Token", token)
	rec3 := httptest.NewRecorder()
	h.ServeHTTP(rec3, req)
	if rec3.Code != http.StatusOK {
		t.Fatalf("POST with token: status %d", rec3.Code)
	}
}
