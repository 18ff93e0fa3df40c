package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// replay copies the cookies set on rec onto a new request.
func replay(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestNewSessionManager_SameSite(t *testing.T) {
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "s", "", time.Hour, true, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	if sm.Store().Options.SameSite != http.SameSiteNoneMode || !sm.Store().Options.Secure {
		t.Errorf("secure store options = %+v", sm.Store().Options)
	}

	sm = newTestSessionManager(t)
	if sm.Store().Options.SameSite != http.SameSiteLaxMode {
		t.Errorf("dev store SameSite = %v, want Lax", sm.Store().Options.SameSite)
	}
}

func TestSignIn_LoadSessionUser_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	u, err := sm.SignIn(rec, httptest.NewRequest("POST", "/login", nil), auth.RoleAdmin, "Ada", "tok-123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u.VisitID == "" {
		t.Error("expected a visit id")
	}

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), replay(rec, "GET", "/admin"))

	if got == nil {
		t.Fatal("expected user loaded from session")
	}
	if got.Name != "Ada" || got.Role != auth.RoleAdmin || got.Token != "tok-123" || got.VisitID != u.VisitID {
		t.Errorf("loaded user = %+v, signed in as %+v", got, u)
	}
}

func TestSignIn_NewVisitEachTime(t *testing.T) {
	sm := newTestSessionManager(t)

	a, err := sm.SignIn(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil), auth.RoleStudent, "Sam", "t1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	b, err := sm.SignIn(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil), auth.RoleStudent, "Sam", "t1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if a.VisitID == b.VisitID {
		t.Error("expected distinct visit ids per sign-in")
	}
}

func TestSignIn_UnknownRole(t *testing.T) {
	sm := newTestSessionManager(t)
	if _, err := sm.SignIn(httptest.NewRecorder(), httptest.NewRequest("POST", "/login", nil), "member", "x", "t"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	if _, err := sm.SignIn(rec, httptest.NewRequest("POST", "/login", nil), auth.RoleAdmin, "Ada", "tok"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	out := httptest.NewRecorder()
	if err := sm.SignOut(out, replay(rec, "GET", "/logout")); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	var found bool
	for _, c := range out.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("expected MaxAge -1, got %d", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestFlashes_PopOnce(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	sm.AddFlash(rec, httptest.NewRequest("POST", "/admin/payments/1/reject", nil), auth.FlashSuccess, "Payment rejected")

	read := httptest.NewRecorder()
	flashes := sm.Flashes(read, replay(rec, "GET", "/admin/payments"))
	if len(flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(flashes))
	}
	if flashes[0].Kind != auth.FlashSuccess || flashes[0].Message != "Payment rejected" {
		t.Errorf("flash = %+v", flashes[0])
	}

	if again := sm.Flashes(httptest.NewRecorder(), replay(read, "GET", "/admin/payments")); len(again) != 0 {
		t.Errorf("expected flashes consumed, got %+v", again)
	}
}

func TestFlashes_MessageWithColon(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	sm.AddFlash(rec, httptest.NewRequest("POST", "/", nil), auth.FlashError, "Could not update payment: 500")

	flashes := sm.Flashes(httptest.NewRecorder(), replay(rec, "GET", "/"))
	if len(flashes) != 1 || flashes[0].Kind != auth.FlashError || flashes[0].Message != "Could not update payment: 500" {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

func TestRequireRole_NoUser_RedirectsToAdminLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin/payments", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login?return=%2Fadmin%2Fpayments") {
		t.Errorf("expected redirect to /login with return, got %q", location)
	}
	if !strings.HasSuffix(location, "&as=admin") {
		t.Errorf("expected admin login variant, got %q", location)
	}
}

func TestRequireRole_WrongRole_RedirectsToForbidden(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Accept", "text/html")
	req = withTestUser(req, "student")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if location != "/forbidden" {
		t.Errorf("expected redirect to /forbidden, got %q", location)
	}
}

func TestRequireRole_WrongRole_API_Returns403(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin/payments/table", nil)
	req.Header.Set("Accept", "application/json")
	req = withTestUser(req, "student")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
}

func TestRequireRole_CorrectRole_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "admin")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole_CaseInsensitive(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req = withTestUser(req, "ADMIN")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for uppercase role, got %d", http.StatusOK, rec.Code)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request, role string) *http.Request {
	user := &auth.SessionUser{
		Name:    "Test User",
		Role:    role,
		Token:   "test-token",
		VisitID: "visit-1",
	}
	return auth.WithTestUser(r, user)
}
