// Package session is the single source of truth for auth state within a
// request. A Session is restored from two durable cookies at the start of
// every request, mutated only through Manager, and mirrored back into the
// cookies on login and logout.
//
// Cookie layout:
//
//	access_token   the raw JWT access token
//	user_profile   base64(JSON) of the cached model.Profile
//
// Restore deliberately does NOT validate the token: a session with any token
// present counts as logged in, and a stale or tampered token only surfaces
// when the first authenticated operation validates it. That keeps page loads
// cheap and matches the guard's presence-only check.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/vichithchamodya/product-catalog/internal/model"
)

// Cookie names. access_token holds the raw JWT; user_profile holds the
// serialized profile blob.
const (
	TokenCookie   = "access_token"
	ProfileCookie = "user_profile"
)

// Session is the auth state snapshot for one request.
//
// IsLoggedIn reflects token presence only. Profile may be nil even when
// logged in (e.g. the profile cookie was cleared by hand); screens render an
// empty state in that case.
type Session struct {
	IsLoggedIn bool
	Token      string
	Profile    *model.Profile
}

// Manager reads and writes the session cookies. It is constructed once and
// injected into every handler that touches auth state; there is no ambient
// global session.
type Manager struct {
	secure bool // Secure cookie attribute; true behind HTTPS
	maxAge int  // cookie lifetime in seconds
}

// NewManager creates a Manager. maxAge is the cookie lifetime in seconds and
// should match the access token TTL so both expire together.
func NewManager(secure bool, maxAge int) *Manager {
	return &Manager{secure: secure, maxAge: maxAge}
}

// Restore builds the Session from the request's cookies.
//
// A missing token cookie yields a logged-out session. A present token with a
// corrupt profile cookie still restores as logged in with a nil Profile;
// the token, not the cached profile, decides login state.
func (m *Manager) Restore(r *http.Request) Session {
	tokenCookie, err := r.Cookie(TokenCookie)
	if err != nil || tokenCookie.Value == "" {
		return Session{}
	}

	sess := Session{
		IsLoggedIn: true,
		Token:      tokenCookie.Value,
	}

	if profileCookie, err := r.Cookie(ProfileCookie); err == nil {
		if profile := decodeProfile(profileCookie.Value); profile != nil {
			sess.Profile = profile
		}
	}

	return sess
}

// Issue mirrors a fresh login into the cookies: the access token and the
// cached profile, both HttpOnly and SameSite=Lax.
func (m *Manager) Issue(w http.ResponseWriter, token string, profile *model.Profile) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookie,
		Value:    encodeProfile(profile),
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both cookies. After Clear, a Restore from the response's
// cookies reports logged out.
func (m *Manager) Clear(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, ProfileCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// encodeProfile serializes a profile for cookie transport. Base64 keeps the
// JSON clear of characters that are illegal in cookie values.
func encodeProfile(profile *model.Profile) string {
	if profile == nil {
		return ""
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeProfile is the inverse of encodeProfile. Any decode failure yields
// nil; a corrupt cached profile is treated as absent, never as an error.
func decodeProfile(value string) *model.Profile {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var profile model.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil
	}
	return &profile
}

// contextKey is a package-private context key type so only this package can
// read or write the session in a request context.
type contextKey struct{}

// NewContext returns a context carrying the restored session.
func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext retrieves the session placed by the middleware. A request that
// never passed through the session middleware yields a logged-out session.
func FromContext(ctx context.Context) Session {
	sess, _ := ctx.Value(contextKey{}).(Session)
	return sess
}
