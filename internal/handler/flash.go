package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// flashCookie is the one-shot notification cookie: set on one response,
// rendered and cleared by the next page view.
const flashCookie = "flash"

// Flash kinds drive the styling of the notification banner.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a transient notification shown once on the next rendered page.
// It is the only notification mechanism: services report errors, handlers
// decide whether and what to flash.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// setFlash queues a notification for the next page view.
func setFlash(w http.ResponseWriter, kind, message string) {
	raw, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads the pending notification, clears the cookie, and returns
// nil when there is nothing to show.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flash Flash
	if err := json.Unmarshal(raw, &flash); err != nil {
		return nil
	}
	return &flash
}
