package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/finwave/cards-api/internal/core/domain"
	"github.com/finwave/cards-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub auth service
// ---------------------------------------------------------------------------

type stubAuthService struct {
	session    *ports.Session
	err        error
	gotRefresh string // refresh token passed to Refresh/Logout
}

func (s *stubAuthService) Register(_ context.Context, _ ports.RegisterInput) (*ports.Session, error) {
	return s.session, s.err
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*ports.Session, error) {
	return s.session, s.err
}

func (s *stubAuthService) Refresh(_ context.Context, refreshToken string) (*ports.Session, error) {
	s.gotRefresh = refreshToken
	if refreshToken == "" {
		return nil, domain.ErrRefreshTokenMissing
	}
	return s.session, s.err
}

func (s *stubAuthService) Logout(_ context.Context, refreshToken string) error {
	s.gotRefresh = refreshToken
	return s.err
}

func testSession() *ports.Session {
	return &ports.Session{
		AccessToken:  "access-jwt",
		TokenType:    "Bearer",
		User:         ports.UserProfile{ID: "user-1", Email: "ivan@example.com", Role: "USER"},
		RefreshToken: "refresh-jwt",
		RefreshTTL:   24 * time.Hour,
	}
}

func newAuthTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := rec.Result()
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Cookie transport
// ---------------------------------------------------------------------------

func TestAuthHandler_Login_SetsRefreshCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ivan@example.com","password":"secret-pass"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := findCookie(t, rec, "refreshToken")
	if cookie == nil {
		t.Fatal("refreshToken cookie not set")
	}
	if cookie.Value != "refresh-jwt" {
		t.Errorf("cookie value: expected refresh-jwt, got %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie must be Secure")
	}
	if cookie.Path != "/" {
		t.Errorf("cookie path: expected /, got %q", cookie.Path)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite: expected Lax, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("cookie MaxAge: expected %d, got %d", int((24 * time.Hour).Seconds()), cookie.MaxAge)
	}
}

func TestAuthHandler_Login_BodyNeverContainsRefreshToken(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ivan@example.com","password":"secret-pass"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if strings.Contains(rec.Body.String(), "refresh-jwt") {
		t.Error("refresh token must travel only in the cookie, never the body")
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if _, ok := body["access_token"]; !ok {
		t.Error("response must carry the access token")
	}
}

func TestAuthHandler_Login_RejectsMalformedBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})

	for _, body := range []string{`{"email":"not-an-email","password":"x"}`, `{"password":"x"}`} {
		c, _ := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login", body)
		err := h.Login(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_SetsRefreshCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{session: testSession()})
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ivan@example.com","first_name":"Ivan","last_name":"Petrov","password":"secret-pass"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if findCookie(t, rec, "refreshToken") == nil {
		t.Error("registration must set the refresh cookie")
	}
}

func TestAuthHandler_Refresh_ReadsCookie(t *testing.T) {
	svc := &stubAuthService{session: testSession()}
	h := NewAuthHandler(svc)
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})

	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if svc.gotRefresh != "old-refresh" {
		t.Errorf("service must receive the cookie value, got %q", svc.gotRefresh)
	}
	cookie := findCookie(t, rec, "refreshToken")
	if cookie == nil || cookie.Value != "refresh-jwt" {
		t.Error("rotation must replace the cookie with the new token")
	}
}

func TestAuthHandler_Refresh_MissingCookie(t *testing.T) {
	svc := &stubAuthService{session: testSession()}
	h := NewAuthHandler(svc)
	c, _ := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/refresh", "")

	err := h.Refresh(c)
	if err == nil {
		t.Fatal("expected error without the cookie")
	}
	if svc.gotRefresh != "" {
		t.Errorf("service must receive an empty token, got %q", svc.gotRefresh)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	svc := &stubAuthService{session: testSession()}
	h := NewAuthHandler(svc)
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/logout", "")
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.gotRefresh != "old-refresh" {
		t.Errorf("service must receive the cookie value, got %q", svc.gotRefresh)
	}

	cookie := findCookie(t, rec, "refreshToken")
	if cookie == nil {
		t.Fatal("logout must rewrite the cookie")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("logout must clear the cookie, got value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}
