package handler

import (
	"log/slog"
	"net/http"

	"github.com/vichithchamodya/product-catalog/internal/session"
)

// ProfileHandler renders the profile screen: a read-only projection of the
// profile cached in the session. No repository call is made; if the cache
// is missing, the template shows an empty state.
//
// HTTP: GET /auth/profile
type ProfileHandler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(renderer *Renderer, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{renderer: renderer, logger: logger}
}

// HandleProfile renders the cached profile.
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	h.renderer.Render(w, r, http.StatusOK, "profile", map[string]interface{}{
		"Title":   "Profile",
		"Profile": sess.Profile,
	})
}

// HomeHandler renders the public landing page.
//
// HTTP: GET /
type HomeHandler struct {
	renderer *Renderer
}

// NewHomeHandler creates a HomeHandler.
func NewHomeHandler(renderer *Renderer) *HomeHandler {
	return &HomeHandler{renderer: renderer}
}

// HandleHome renders the landing page.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "home", map[string]interface{}{
		"Title": "Product Catalog",
	})
}
