package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/vichithchamodya/product-catalog/internal/session"
)

// pages are the screens the renderer knows about. Each page file defines a
// "content" block that base.html pulls in.
var pages = []string{
	"home",
	"login",
	"register",
	"dashboard",
	"confirm_delete",
	"profile",
}

// Renderer holds the parsed template sets, one per page, all sharing
// base.html. Parsing happens once at startup; a broken template fails the
// server before it accepts traffic.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses every page template paired with the base layout.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		tmpl, err := template.ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Render executes a page with the common view data plus the handler's
// page-specific entries. The session snapshot and any pending flash are
// always available to the navbar and notification banner.
//
// data may be nil. Reserved keys the base layout reads: "Title", "Session",
// "Flash".
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) {
	tmpl, ok := rd.templates[page]
	if !ok {
		rd.logger.Error("unknown template page", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = map[string]interface{}{}
	}
	data["Session"] = session.FromContext(r.Context())
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(w, r)
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Product Catalog"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		// Status and part of the body may already be out; log and stop.
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}
