package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/model"
	"github.com/vichithchamodya/product-catalog/internal/service"
	"github.com/vichithchamodya/product-catalog/internal/session"
)

// AuthHandler serves the login and register screens and runs the credential
// and OAuth login flows.
//
//	GET  /auth/register            → registration form
//	POST /auth/register            → create account, redirect to login
//	GET  /auth/login               → login form (with social buttons)
//	POST /auth/login               → credential login, issue session
//	GET  /auth/{provider}/login    → redirect to the upstream OAuth page
//	GET  /auth/{provider}/callback → complete OAuth, issue session
//	POST /auth/logout              → clear session
type AuthHandler struct {
	authSvc   *service.AuthService
	sessions  *session.Manager
	providers auth.ProviderRegistry
	renderer  *Renderer
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler with injected dependencies.
func NewAuthHandler(
	authSvc *service.AuthService,
	sessions *session.Manager,
	providers auth.ProviderRegistry,
	renderer *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authSvc:   authSvc,
		sessions:  sessions,
		providers: providers,
		renderer:  renderer,
		logger:    logger,
	}
}

// providerNames lists the configured social login options for the login
// template.
func (h *AuthHandler) providerNames() []string {
	names := make([]string, 0, len(h.providers))
	for _, candidate := range []string{model.ProviderGoogle, model.ProviderGitHub} {
		if _, ok := h.providers[candidate]; ok {
			names = append(names, candidate)
		}
	}
	return names
}

// HandleRegisterPage renders the registration form.
//
// HTTP: GET /auth/register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "register", map[string]interface{}{
		"Title":   "Register",
		"Genders": model.Genders,
	})
}

// HandleRegister processes the registration form.
//
// HTTP: POST /auth/register
//
// Validation failures re-render the form with per-field messages and the
// entered values intact; no account is created. Success flashes a
// notification and redirects to the login screen; registration does NOT log
// the user in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	in := service.RegisterInput{
		FullName:        r.PostFormValue("fullName"),
		Email:           r.PostFormValue("email"),
		Phone:           r.PostFormValue("phone"),
		Gender:          r.PostFormValue("gender"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	_, err := h.authSvc.Register(r.Context(), in)
	if err != nil {
		h.renderRegisterError(w, r, in, err)
		return
	}

	setFlash(w, FlashSuccess, "User registered successfully")
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// renderRegisterError re-renders the registration form after a failure,
// keeping the entered values (passwords excluded).
func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, r *http.Request, in service.RegisterInput, err error) {
	data := map[string]interface{}{
		"Title":   "Register",
		"Genders": model.Genders,
		"Form": map[string]string{
			"fullName": in.FullName,
			"email":    in.Email,
			"phone":    in.Phone,
			"gender":   in.Gender,
		},
	}

	var fieldErrs apperror.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		data["Errors"] = fieldErrs
	case errors.Is(err, apperror.ErrConflict):
		data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to register user"}
	default:
		h.logger.Error("registration failed", slog.String("error", err.Error()))
		data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to register user"}
	}

	h.renderer.Render(w, r, http.StatusUnprocessableEntity, "register", data)
}

// HandleLoginPage renders the login form.
//
// HTTP: GET /auth/login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login", map[string]interface{}{
		"Title":     "Login",
		"Providers": h.providerNames(),
	})
}

// HandleLogin processes a credential login.
//
// HTTP: POST /auth/login
//
// On success the session cookies are issued and the user lands on the
// dashboard. On auth failure the form re-renders with a generic "invalid
// login details" notification, never which of email/password was wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	result, err := h.authSvc.Login(r.Context(), email, password)
	if err != nil {
		data := map[string]interface{}{
			"Title":     "Login",
			"Providers": h.providerNames(),
			"Form":      map[string]string{"email": email},
		}

		var fieldErrs apperror.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			data["Errors"] = fieldErrs
		case errors.Is(err, apperror.ErrUnauthorized):
			data["Flash"] = &Flash{Kind: FlashError, Message: "Invalid login details"}
		default:
			h.logger.Error("login failed", slog.String("error", err.Error()))
			data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to log in"}
		}

		h.renderer.Render(w, r, http.StatusUnprocessableEntity, "login", data)
		return
	}

	h.sessions.Issue(w, result.Token, result.User.Profile())
	setFlash(w, FlashSuccess, "User logged in successfully")
	http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
}

// HandleOAuthLogin redirects the browser to the provider's authorization
// page, stashing a random state in a short-lived cookie for the CSRF check
// on callback.
//
// HTTP: GET /auth/{provider}/login
func (h *AuthHandler) HandleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Lookup(r.PathValue("provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleOAuthCallback completes the OAuth flow: verify the CSRF state,
// exchange the code, upsert the user, and issue the session exactly as a
// credential login does.
//
// HTTP: GET /auth/{provider}/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Lookup(r.PathValue("provider"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state check failed",
			slog.String("provider", provider.Name()),
		)
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// The user may have denied authorization upstream.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied",
			slog.String("provider", provider.Name()),
			slog.String("error", errParam),
		)
		setFlash(w, FlashError, "Failed to login via social OAuth")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	identity, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		setFlash(w, FlashError, "Failed to login via social OAuth")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	result, err := h.authSvc.LoginOrRegisterOAuth(r.Context(), identity)
	if err != nil {
		h.logger.Error("oauth callback: login-or-register failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		setFlash(w, FlashError, "Failed to login via social OAuth")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	h.sessions.Issue(w, result.Token, result.User.Profile())
	http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
}

// HandleLogout clears the session cookies and returns to the home page.
// Logout always succeeds from the user's point of view.
//
// HTTP: POST /auth/logout, state-changing, so never a GET.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	setFlash(w, FlashSuccess, "Logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
