package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/model"
	"github.com/vichithchamodya/product-catalog/internal/service"
	"github.com/vichithchamodya/product-catalog/internal/session"
)

// =========================================================================
// FAKES AND FIXTURES
// =========================================================================

type memoryUserRepo struct {
	byEmail map[string]*model.User
	byID    map[string]*model.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byEmail: map[string]*model.User{},
		byID:    map[string]*model.User{},
	}
}

func (f *memoryUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return apperror.Conflict("user", user.Email)
	}
	user.ID = "user-" + user.Email
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *memoryUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return user, nil
}

func (f *memoryUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return user, nil
}

func (f *memoryUserRepo) UpsertOAuthUser(ctx context.Context, user *model.User) error {
	user.ID = user.Provider + "/" + user.ProviderID
	f.byID[user.ID] = user
	return nil
}

func newTestAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	renderer, err := NewRenderer("../../web/templates", logger)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	authSvc := service.NewAuthService(
		newMemoryUserRepo(),
		tokens,
		auth.NewPasswordServiceForTest(4),
		logger,
	)
	sessions := session.NewManager(false, 3600)

	return NewAuthHandler(authSvc, sessions, auth.ProviderRegistry{}, renderer, logger)
}

// formRequest builds a POST with URL-encoded form fields and a logged-out
// session in context.
func formRequest(target string, fields url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(session.NewContext(req.Context(), session.Session{}))
}

func validRegisterForm() url.Values {
	return url.Values{
		"fullName":        {"Amara Silva"},
		"email":           {"amara@example.com"},
		"phone":           {"0771234567"},
		"gender":          {"Female"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	}
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestHandleRegister_SuccessRedirectsToLogin(t *testing.T) {
	h := newTestAuthHandler(t)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, formRequest("/auth/register", validRegisterForm()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q, want %q", loc, "/auth/login")
	}

	// Registration must not establish a session.
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.TokenCookie && c.Value != "" {
			t.Error("registration issued a session token cookie")
		}
	}
}

func TestHandleRegister_ValidationKeepsInput(t *testing.T) {
	h := newTestAuthHandler(t)

	form := validRegisterForm()
	form.Set("email", "broken-email")
	form.Set("password", "abc")
	form.Set("confirmPassword", "abc")

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, formRequest("/auth/register", form))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	page := rec.Body.String()
	if !strings.Contains(page, "Invalid email value") {
		t.Error("response missing the email validation message")
	}
	if !strings.Contains(page, "Password is of minimum 6 characters") {
		t.Error("response missing the password validation message")
	}
	if !strings.Contains(page, `value="Amara Silva"`) {
		t.Error("response lost the entered full name")
	}
	if strings.Contains(page, `name="password" value=`) {
		t.Error("response must not echo the entered password")
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	h := newTestAuthHandler(t)

	rec := httptest.NewRecorder()
	h.HandleRegister(rec, formRequest("/auth/register", validRegisterForm()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("first registration: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleRegister(rec, formRequest("/auth/register", validRegisterForm()))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "Failed to register user") {
		t.Error("response missing the registration failure notification")
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func registerViaHandler(t *testing.T, h *AuthHandler) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, formRequest("/auth/register", validRegisterForm()))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("registration failed: status = %d", rec.Code)
	}
}

func TestHandleLogin_SuccessIssuesSession(t *testing.T) {
	h := newTestAuthHandler(t)
	registerViaHandler(t, h)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, formRequest("/auth/login", url.Values{
		"email":    {"amara@example.com"},
		"password": {"secret123"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d, body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/dashboard" {
		t.Errorf("Location = %q, want %q", loc, "/auth/dashboard")
	}

	var gotToken, gotProfile bool
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case session.TokenCookie:
			gotToken = c.Value != ""
		case session.ProfileCookie:
			gotProfile = c.Value != ""
		}
	}
	if !gotToken {
		t.Error("login did not set the access token cookie")
	}
	if !gotProfile {
		t.Error("login did not set the profile cookie")
	}
}

func TestHandleLogin_WrongPasswordIsGeneric(t *testing.T) {
	h := newTestAuthHandler(t)
	registerViaHandler(t, h)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, formRequest("/auth/login", url.Values{
		"email":    {"amara@example.com"},
		"password": {"wrong-password"},
	}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "Invalid login details") {
		t.Error("response missing the generic login failure notification")
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == session.TokenCookie && c.Value != "" {
			t.Error("failed login issued a session token cookie")
		}
	}
}

func TestHandleLogin_KeepsEmailOnFailure(t *testing.T) {
	h := newTestAuthHandler(t)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, formRequest("/auth/login", url.Values{
		"email":    {"typed@example.com"},
		"password": {"whatever"},
	}))

	if !strings.Contains(rec.Body.String(), `value="typed@example.com"`) {
		t.Error("response lost the entered email")
	}
}

// =========================================================================
// OAUTH TESTS
// =========================================================================

func TestHandleOAuthLogin_UnknownProvider(t *testing.T) {
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/myspace/login", nil)
	req.SetPathValue("provider", "myspace")

	rec := httptest.NewRecorder()
	h.HandleOAuthLogin(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleOAuthLogin_SetsStateAndRedirects(t *testing.T) {
	h := newTestAuthHandler(t)
	h.providers.Register(auth.NewGoogleProvider("id", "secret", "http://localhost/auth/google/callback"))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/login", nil)
	req.SetPathValue("provider", "google")

	rec := httptest.NewRecorder()
	h.HandleOAuthLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTemporaryRedirect)
	}

	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("no oauth_state cookie set")
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "state="+state) {
		t.Errorf("redirect %q does not carry the state from the cookie", loc)
	}
}

func TestHandleOAuthCallback_StateMismatch(t *testing.T) {
	h := newTestAuthHandler(t)
	h.providers.Register(auth.NewGoogleProvider("id", "secret", "http://localhost/auth/google/callback"))

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=x&state=attacker", nil)
	req.SetPathValue("provider", "google")
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})

	rec := httptest.NewRecorder()
	h.HandleOAuthCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

// =========================================================================
// LOGOUT TESTS
// =========================================================================

func TestHandleLogout_ClearsSession(t *testing.T) {
	h := newTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared[c.Name] = true
		}
	}
	if !cleared[session.TokenCookie] || !cleared[session.ProfileCookie] {
		t.Errorf("session cookies not cleared, got %v", cleared)
	}
}
