package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MainePadFinder/padfinder/internal/auth"
)

// These cases are rejected before any database access.
func TestSignupHandler_Validation(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"bad json", `{"username":`, http.StatusBadRequest, "Invalid request format"},
		{"missing everything", `{}`, http.StatusBadRequest, "username, password, email"},
		{"missing password", `{"username":"amy","email":"a@b.c","userType":"Renter"}`, http.StatusBadRequest, "password"},
		{"bad user type", `{"username":"amy","password":"pw","email":"a@b.c","userType":"Admin"}`, http.StatusBadRequest, "userType"},
		{"bad birth date", `{"username":"amy","password":"pw","email":"a@b.c","userType":"Renter","birthDate":"12/01/1999"}`, http.StatusBadRequest, "birthDate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			auth.SignupHandler(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d; body: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantMsg) {
				t.Errorf("expected body to mention %q, got %s", tc.wantMsg, rec.Body.String())
			}
		})
	}
}

func TestLoginHandler_Validation(t *testing.T) {
	for _, body := range []string{`not json`, `{"username":"amy"}`, `{"password":"pw"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		auth.LoginHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestUpdateSettingsHandler_RequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	auth.UpdateSettingsHandler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestUser_JSONOmitsCredentials(t *testing.T) {
	out, err := json.Marshal(auth.User{Username: "amy", PasswordHash: "$2a$10$hash"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if strings.Contains(s, "password") || strings.Contains(s, "$2a$10$hash") {
		t.Errorf("user json leaks credentials: %s", s)
	}
}
