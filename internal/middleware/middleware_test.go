package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"github.com/go-chi/chi/v5"
)

// mockFetcher implements middleware.SessionFetcher without any database dependency.
type mockFetcher struct {
	session utils.SessionData
	err     error
}

func (m mockFetcher) FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error) {
	return m.session, m.err
}

// tokenFetcher only knows the tokens in its map.
type tokenFetcher map[string]utils.SessionData

func (f tokenFetcher) FindSessionByToken(ctx context.Context, token string) (utils.SessionData, error) {
	s, ok := f[token]
	if !ok {
		return utils.SessionData{}, errors.New("session not found")
	}
	return s, nil
}

type mockResolver struct {
	role utils.Role
	err  error
}

func (m mockResolver) ResolveRole(ctx context.Context, userID uint) (utils.Role, error) {
	return m.role, m.err
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// callWithCookie wraps a simple 200-OK inner handler in the provided middleware,
// optionally setting one cookie on the request, and returns the recorded response.
func callWithCookie(t *testing.T, mw func(http.Handler) http.Handler, cookieName, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()

	handler := mw(okHandler)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if cookieName != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSessionMiddleware_MissingCookie(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockFetcher{}), "", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_EmptyToken(t *testing.T) {
	rec := callWithCookie(t, middleware.SessionMiddleware(mockFetcher{}), "token", "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}

	rec := callWithCookie(t, middleware.SessionMiddleware(fetcher), "token", "nonexistent")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_FailuresAreIndistinguishable verifies that a missing
// cookie, an unknown token, an expired session and a session expiring exactly
// now all produce the same status and body.
func TestSessionMiddleware_FailuresAreIndistinguishable(t *testing.T) {
	fetcher := tokenFetcher{
		"expired": {UserID: 7, ExpiresAt: time.Now().Add(-time.Hour)},
		"edge":    {UserID: 7, ExpiresAt: time.Now()},
	}
	mw := middleware.SessionMiddleware(fetcher)

	cases := []struct{ name, cookie, value string }{
		{"missing cookie", "", ""},
		{"wrong cookie name", "session_id", "expired"},
		{"unknown token", "token", "deadbeef"},
		{"expired", "token", "expired"},
		{"expires now", "token", "edge"},
	}

	var firstBody string
	for i, tc := range cases {
		rec := callWithCookie(t, mw, tc.cookie, tc.value)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, rec.Code)
		}
		if i == 0 {
			firstBody = rec.Body.String()
			continue
		}
		if rec.Body.String() != firstBody {
			t.Errorf("%s: body %q differs from %q", tc.name, rec.Body.String(), firstBody)
		}
	}
	if strings.Contains(strings.ToLower(firstBody), "expired") {
		t.Errorf("body must not reveal expiry: %q", firstBody)
	}
}

// TestSessionMiddleware_UnknownTokenIgnoresRequestContent checks that a request
// carrying extra headers or other cookies is still rejected when its token is unknown.
func TestSessionMiddleware_UnknownTokenIgnoresRequestContent(t *testing.T) {
	handler := middleware.SessionMiddleware(tokenFetcher{})(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"user_id":1}`))
	req.Header.Set("Authorization", "Bearer something")
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-real-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionMiddleware_ValidSession(t *testing.T) {
	const wantUserID uint = 42

	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:    wantUserID,
			ExpiresAt: time.Now().Add(1 * time.Hour),
		},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok || gotUserID != wantUserID {
			http.Error(w, "wrong userID in context", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.SessionMiddleware(fetcher)(inner)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "valid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

func TestRoleMiddleware_MissingUserID(t *testing.T) {
	handler := middleware.RoleMiddleware(mockResolver{role: utils.RoleLandlord})(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRoleMiddleware_ResolverError(t *testing.T) {
	handler := middleware.RoleMiddleware(mockResolver{err: errors.New("db down")})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(utils.WithUserID(req.Context(), 1))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db down") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role utils.Role
		want int
	}{
		{utils.RoleLandlord, http.StatusOK},
		{utils.RoleRenter, http.StatusForbidden},
		{utils.RoleUnknown, http.StatusForbidden},
	}

	for _, tc := range cases {
		chain := middleware.RoleMiddleware(mockResolver{role: tc.role})(middleware.RequireRole(utils.RoleLandlord)(okHandler))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req = req.WithContext(utils.WithUserID(req.Context(), 3))
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Errorf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}

func TestCORSMiddleware_SingleOrigin(t *testing.T) {
	handler := middleware.CORSMiddleware("http://localhost:5173")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for foreign origin, got %q", got)
	}
}

func TestMetrics_PassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/api/listing/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listing/9", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected inner status preserved, got %d", rec.Code)
	}
}
