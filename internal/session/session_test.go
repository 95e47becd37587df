package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vichithchamodya/product-catalog/internal/model"
)

func newTestManager() *Manager {
	return NewManager(false, 3600)
}

// issueAndCarry runs Issue and returns a request carrying the resulting
// cookies, the way a browser would on the next navigation.
func issueAndCarry(t *testing.T, m *Manager, token string, profile *model.Profile) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Issue(rec, token, profile)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// =========================================================================
// Issue / Restore TESTS
// =========================================================================

func TestIssueRestore_RoundTrip(t *testing.T) {
	m := newTestManager()
	profile := &model.Profile{
		Name:   "Amara Silva",
		Email:  "amara@example.com",
		Phone:  "0771234567",
		Gender: "Female",
	}

	req := issueAndCarry(t, m, "jwt-token-value", profile)
	sess := m.Restore(req)

	if !sess.IsLoggedIn {
		t.Fatal("Restore() should report logged in after Issue()")
	}
	if sess.Token != "jwt-token-value" {
		t.Errorf("Token = %q, want %q", sess.Token, "jwt-token-value")
	}
	if sess.Profile == nil {
		t.Fatal("Restore() lost the profile")
	}
	if *sess.Profile != *profile {
		t.Errorf("Profile = %+v, want %+v", *sess.Profile, *profile)
	}
}

func TestRestore_NoCookies(t *testing.T) {
	m := newTestManager()

	sess := m.Restore(httptest.NewRequest(http.MethodGet, "/", nil))

	if sess.IsLoggedIn {
		t.Error("Restore() reported logged in with no cookies")
	}
	if sess.Token != "" {
		t.Errorf("Token = %q, want empty", sess.Token)
	}
}

// A corrupt profile cookie must not log the user out: the token alone
// decides login state, the profile is display data.
func TestRestore_CorruptProfileCookie(t *testing.T) {
	m := newTestManager()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "still-valid-token"})
	req.AddCookie(&http.Cookie{Name: ProfileCookie, Value: "%%not-base64%%"})

	sess := m.Restore(req)

	if !sess.IsLoggedIn {
		t.Error("Restore() should stay logged in despite a corrupt profile cookie")
	}
	if sess.Profile != nil {
		t.Errorf("Profile = %+v, want nil for corrupt cookie", sess.Profile)
	}
}

func TestRestore_TokenPresenceOnly(t *testing.T) {
	m := newTestManager()

	// Restore never inspects the token contents.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "not-even-a-jwt"})

	if sess := m.Restore(req); !sess.IsLoggedIn {
		t.Error("Restore() should treat any non-empty token cookie as logged in")
	}
}

// =========================================================================
// Clear TESTS
// =========================================================================

func TestClear_ExpiresBothCookies(t *testing.T) {
	m := newTestManager()

	rec := httptest.NewRecorder()
	m.Clear(rec)

	cookies := rec.Result().Cookies()
	expired := map[string]bool{}
	for _, c := range cookies {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}

	if !expired[TokenCookie] {
		t.Errorf("Clear() did not expire %q", TokenCookie)
	}
	if !expired[ProfileCookie] {
		t.Errorf("Clear() did not expire %q", ProfileCookie)
	}
}

func TestClearThenRestore_LoggedOut(t *testing.T) {
	m := newTestManager()

	// Browser behavior: expired cookies are dropped, the next request
	// carries nothing.
	sess := m.Restore(httptest.NewRequest(http.MethodGet, "/", nil))
	if sess.IsLoggedIn {
		t.Error("session should be logged out after Clear()")
	}
}

// =========================================================================
// COOKIE ATTRIBUTE TESTS
// =========================================================================

func TestIssue_CookieAttributes(t *testing.T) {
	m := NewManager(true, 86400)

	rec := httptest.NewRecorder()
	m.Issue(rec, "tok", &model.Profile{Name: "X", Email: "x@example.com"})

	for _, c := range rec.Result().Cookies() {
		if c.Name != TokenCookie && c.Name != ProfileCookie {
			continue
		}
		if !c.HttpOnly {
			t.Errorf("cookie %q not HttpOnly", c.Name)
		}
		if !c.Secure {
			t.Errorf("cookie %q not Secure with secure manager", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %q SameSite = %v, want Lax", c.Name, c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("cookie %q Path = %q, want /", c.Name, c.Path)
		}
	}
}

func TestIssue_NilProfile(t *testing.T) {
	m := newTestManager()

	req := issueAndCarry(t, m, "tok", nil)
	sess := m.Restore(req)

	if !sess.IsLoggedIn {
		t.Error("Restore() should be logged in even without a profile")
	}
	if sess.Profile != nil {
		t.Errorf("Profile = %+v, want nil", sess.Profile)
	}
}
