package auth

import "github.com/vichithchamodya/product-catalog/internal/session"

// Decision is the outcome of a guard check: either proceed with rendering
// the screen, or redirect before any protected content is produced.
type Decision struct {
	Allow      bool
	RedirectTo string // target path when Allow is false
}

// Guard keeps protected screens and public auth screens mutually exclusive.
//
// It is a pure decision function over a session snapshot; the router's
// middleware applies the decision, which keeps the rules testable without an
// HTTP stack. Each check is evaluated once per request from the snapshot
// taken at restore time; it does not re-evaluate mid-request.
type Guard struct {
	LoginPath     string // where unauthenticated users are sent
	DashboardPath string // where already-authenticated users are sent
}

// NewGuard creates a Guard with the application's two anchor paths.
func NewGuard(loginPath, dashboardPath string) Guard {
	return Guard{LoginPath: loginPath, DashboardPath: dashboardPath}
}

// CheckProtected gates dashboard-class screens: without a logged-in session
// the screen must not render, and the user is sent to the login screen.
//
// Presence of a token is all that is checked here. An expired or tampered
// token passes the guard and fails on the first authenticated operation
// instead.
func (g Guard) CheckProtected(sess session.Session) Decision {
	if !sess.IsLoggedIn {
		return Decision{RedirectTo: g.LoginPath}
	}
	return Decision{Allow: true}
}

// CheckAuthScreen gates the login and register screens: a user who is
// already logged in is sent to the dashboard instead.
func (g Guard) CheckAuthScreen(sess session.Session) Decision {
	if sess.IsLoggedIn {
		return Decision{RedirectTo: g.DashboardPath}
	}
	return Decision{Allow: true}
}
