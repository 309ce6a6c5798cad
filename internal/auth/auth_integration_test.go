package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MainePadFinder/padfinder/internal/auth"
	"github.com/MainePadFinder/padfinder/internal/config"
	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	// .env.local lives at the repository root, two directories up.
	_ = godotenv.Load("../../.env.local")

	cfg := config.Load()
	if cfg.DatabaseURL == "" || os.Getenv("DATABASE_URL") == "" {
		os.Exit(m.Run())
	}

	// httptest serves plain HTTP
	cfg.CookieSecure = false
	cfg.CookieSameSite = http.SameSiteLaxMode

	db.Connect(cfg)
	dbAvailable = true
	auth.Init(cfg)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Route("/api", auth.SetupRoutes)

	testServer = httptest.NewServer(r)
	code := m.Run()
	testServer.Close()
	os.Exit(code)
}

// signupUser creates a user of the given type through the API and removes it
// when the test finishes. Returns the username and plaintext password.
func signupUser(t *testing.T, userType string) (username, password string) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	username = fmt.Sprintf("testuser_%s", uuid.New().String()[:8])
	password = "TestPass123!"
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"email":    username + "@example.test",
		"userType": userType,
	})
	resp, err := http.Post(testServer.URL+"/api/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/signup: %v", err)
	}
	respBody := readBody(t, resp)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", resp.StatusCode, respBody)
	}

	t.Cleanup(func() {
		var user auth.User
		if err := db.DB.First(&user, "username = ?", username).Error; err != nil {
			return
		}
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Session{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Landlord{})
		db.DB.Where("user_id = ?", user.UserID).Delete(&auth.Renter{})
		db.DB.Delete(&user)
	})

	return username, password
}

func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return &http.Client{Jar: jar}
}

func loginUser(t *testing.T, client *http.Client, username, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := client.Post(testServer.URL+"/api/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/login: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string, draining and closing it.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func getMe(t *testing.T, client *http.Client) (int, string) {
	t.Helper()
	resp, err := client.Get(testServer.URL + "/api/me")
	if err != nil {
		t.Fatalf("GET /api/me: %v", err)
	}
	return resp.StatusCode, readBody(t, resp)
}

func TestLoginReturnsSessionCookie(t *testing.T) {
	username, password := signupUser(t, "Renter")
	client := newClientWithJar(t)

	resp := loginUser(t, client, username, password)
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	setCookie := resp.Header.Get("Set-Cookie")
	if !strings.HasPrefix(setCookie, "token=") || !strings.Contains(setCookie, "HttpOnly") {
		t.Errorf("expected HttpOnly token cookie, got: %q", setCookie)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("invalid JSON body: %s", body)
	}
	if result["username"] != username {
		t.Errorf("expected username %q, got %v", username, result["username"])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	username, _ := signupUser(t, "Renter")

	resp := loginUser(t, newClientWithJar(t), username, "nope")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d; body: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Set-Cookie") != "" {
		t.Error("failed login must not set a cookie")
	}
}

func TestMeReportsRole(t *testing.T) {
	for _, userType := range []string{"Renter", "Landlord"} {
		t.Run(userType, func(t *testing.T) {
			username, password := signupUser(t, userType)
			client := newClientWithJar(t)
			readBody(t, loginUser(t, client, username, password))

			code, body := getMe(t, client)
			if code != http.StatusOK {
				t.Fatalf("expected 200 from /api/me, got %d; body: %s", code, body)
			}
			var me map[string]any
			if err := json.Unmarshal([]byte(body), &me); err != nil {
				t.Fatalf("invalid JSON body: %s", body)
			}
			if me["username"] != username {
				t.Errorf("expected username %q, got %v", username, me["username"])
			}
			if me["role"] != userType {
				t.Errorf("expected role %q, got %v", userType, me["role"])
			}
		})
	}
}

func TestLogoutClearsSession(t *testing.T) {
	username, password := signupUser(t, "Renter")
	client := newClientWithJar(t)
	readBody(t, loginUser(t, client, username, password))

	logoutResp, err := client.Post(testServer.URL+"/api/logout", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/logout: %v", err)
	}
	if body := readBody(t, logoutResp); logoutResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /api/logout, got %d; body: %s", logoutResp.StatusCode, body)
	}

	if code, body := getMe(t, client); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d; body: %s", code, body)
	}
}

// Two logins produce two independent sessions; logging one out leaves the other valid.
func TestMultipleSessions(t *testing.T) {
	username, password := signupUser(t, "Renter")
	laptop := newClientWithJar(t)
	phone := newClientWithJar(t)
	readBody(t, loginUser(t, laptop, username, password))
	readBody(t, loginUser(t, phone, username, password))

	resp, err := laptop.Post(testServer.URL+"/api/logout", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/logout: %v", err)
	}
	readBody(t, resp)

	if code, _ := getMe(t, laptop); code != http.StatusUnauthorized {
		t.Errorf("expected logged-out client to get 401, got %d", code)
	}
	if code, body := getMe(t, phone); code != http.StatusOK {
		t.Errorf("expected second session to stay valid, got %d; body: %s", code, body)
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	username, password := signupUser(t, "Renter")
	client := newClientWithJar(t)
	readBody(t, loginUser(t, client, username, password))

	var user auth.User
	if err := db.DB.First(&user, "username = ?", username).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if err := db.DB.Model(&auth.Session{}).
		Where("user_id = ?", user.UserID).
		Update("expires_at", time.Now().Add(-1*time.Hour)).Error; err != nil {
		t.Fatalf("failed to expire session: %v", err)
	}

	code, expiredBody := getMe(t, client)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with expired session, got %d; body: %s", code, expiredBody)
	}

	_, missingBody := getMe(t, newClientWithJar(t))
	if expiredBody != missingBody {
		t.Errorf("expired session body %q differs from missing token body %q", expiredBody, missingBody)
	}
}

func TestSignupDuplicate(t *testing.T) {
	username, _ := signupUser(t, "Renter")

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "other",
		"email":    "other_" + username + "@example.test",
		"userType": "Landlord",
	})
	resp, err := http.Post(testServer.URL+"/api/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/signup: %v", err)
	}
	if respBody := readBody(t, resp); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d; body: %s", resp.StatusCode, respBody)
	}
}

func TestUpdateSettings(t *testing.T) {
	username, password := signupUser(t, "Renter")
	client := newClientWithJar(t)
	readBody(t, loginUser(t, client, username, password))

	req, _ := http.NewRequest(http.MethodPut, testServer.URL+"/api/settings",
		strings.NewReader(`{"displayName":"Amy","distanceMax":25}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings: %v", err)
	}
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", resp.StatusCode, body)
	}

	getResp, err := client.Get(testServer.URL + "/api/settings")
	if err != nil {
		t.Fatalf("GET /api/settings: %v", err)
	}
	var settings auth.SettingsResponse
	if err := json.Unmarshal([]byte(readBody(t, getResp)), &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.User.DisplayName != "Amy" {
		t.Errorf("expected displayName Amy, got %q", settings.User.DisplayName)
	}
	if settings.RenterSettings == nil || settings.RenterSettings.DistanceMax == nil || *settings.RenterSettings.DistanceMax != 25 {
		t.Errorf("expected distanceMax 25, got %+v", settings.RenterSettings)
	}
}
