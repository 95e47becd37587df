package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/service"
	"github.com/vichithchamodya/product-catalog/internal/session"
)

// maxUploadBytes bounds the multipart form size, banner image included.
const maxUploadBytes = 32 << 20 // 32 MB

// DashboardHandler serves the product CRUD screens.
//
//	GET  /auth/dashboard                      → product list + add form
//	GET  /auth/dashboard?edit={id}            → same screen, form pre-filled
//	POST /auth/dashboard/products             → create or update
//	GET  /auth/dashboard/products/{id}/delete → confirmation screen
//	POST /auth/dashboard/products/{id}/delete → confirmed delete
//
// The form is one state machine: without an edit parameter a submit inserts,
// with one it updates the row matched on (id, owner). Cancelling an edit is
// just a link back to the bare dashboard path.
type DashboardHandler struct {
	products *service.ProductService
	tokens   *auth.TokenService
	sessions *session.Manager
	renderer *Renderer
	logger   *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler with injected dependencies.
func NewDashboardHandler(
	products *service.ProductService,
	tokens *auth.TokenService,
	sessions *session.Manager,
	renderer *Renderer,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		products: products,
		tokens:   tokens,
		sessions: sessions,
		renderer: renderer,
		logger:   logger,
	}
}

// currentUserID validates the session's token and returns the user ID.
//
// The guard only checked token presence; this is the "first authenticated
// call" where a stale or tampered token actually surfaces. On failure the
// session is cleared and the user is sent back to the login screen.
func (h *DashboardHandler) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess := session.FromContext(r.Context())

	userID, err := h.tokens.Validate(sess.Token)
	if err != nil {
		h.logger.Info("stale session token, logging out", slog.String("error", err.Error()))
		h.sessions.Clear(w)
		setFlash(w, FlashError, "Your session has expired, please log in again")
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return "", false
	}

	return userID, true
}

// HandleDashboard renders the product list and the add/edit form.
//
// HTTP: GET /auth/dashboard[?edit={id}]
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{}

	// Editing state: pre-fill the form from the selected row and show its
	// stored banner as the preview.
	if editID := r.URL.Query().Get("edit"); editID != "" {
		product, err := h.products.Get(r.Context(), editID, userID)
		if err != nil {
			setFlash(w, FlashError, "Product not found")
			http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
			return
		}

		data["EditID"] = product.ID
		data["Preview"] = product.BannerImage
		data["Form"] = map[string]string{
			"title":       product.Title,
			"description": product.Description,
			"price":       product.Price,
			"banner":      product.BannerImage,
		}
	}

	h.renderDashboard(w, r, http.StatusOK, userID, data)
}

// HandleSaveProduct processes the add/edit form submit.
//
// HTTP: POST /auth/dashboard/products (multipart)
//
// Form fields: title, description, price, editId (empty when creating),
// existingBanner (stored URL carried through an edit), bannerImage (file,
// optional). A failed banner upload aborts the submit before any row is
// touched; the text fields come back filled for retry.
func (h *DashboardHandler) HandleSaveProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	editID := r.PostFormValue("editId")

	in := service.ProductInput{
		Title:             r.PostFormValue("title"),
		Description:       r.PostFormValue("description"),
		Price:             r.PostFormValue("price"),
		ExistingBannerURL: r.PostFormValue("existingBanner"),
	}

	file, header, err := r.FormFile("bannerImage")
	switch err {
	case nil:
		defer file.Close()
		in.Banner = file
		in.BannerFilename = header.Filename
	case http.ErrMissingFile:
		// No new image attached; keep the existing URL (if any).
	default:
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	_, created, err := h.products.Save(r.Context(), userID, editID, in)
	if err != nil {
		h.renderSaveError(w, r, userID, editID, in, err)
		return
	}

	if created {
		setFlash(w, FlashSuccess, "Successfully product has been created!")
	} else {
		setFlash(w, FlashSuccess, "Product has been updated successfully")
	}

	// Redirecting to the bare dashboard resets the form, clears any editing
	// state, and refreshes the list.
	http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
}

// renderSaveError re-renders the dashboard after a failed submit with the
// entered values intact.
func (h *DashboardHandler) renderSaveError(w http.ResponseWriter, r *http.Request, userID, editID string, in service.ProductInput, err error) {
	data := map[string]interface{}{
		"Form": map[string]string{
			"title":       in.Title,
			"description": in.Description,
			"price":       in.Price,
			"banner":      in.ExistingBannerURL,
		},
	}
	if editID != "" {
		data["EditID"] = editID
		data["Preview"] = in.ExistingBannerURL
	}

	var fieldErrs apperror.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		data["Errors"] = fieldErrs
	case errors.Is(err, service.ErrBannerUpload):
		data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to upload banner image"}
	case errors.Is(err, apperror.ErrNotFound):
		setFlash(w, FlashError, "Product not found")
		http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
		return
	case editID != "":
		h.logger.Error("product update failed", slog.String("error", err.Error()))
		data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to update product data"}
	default:
		h.logger.Error("product create failed", slog.String("error", err.Error()))
		data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to add product"}
	}

	h.renderDashboard(w, r, http.StatusUnprocessableEntity, userID, data)
}

// HandleConfirmDelete renders the interactive confirmation screen. No
// storage mutation happens here; backing out issues zero delete calls.
//
// HTTP: GET /auth/dashboard/products/{id}/delete
func (h *DashboardHandler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	product, err := h.products.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		setFlash(w, FlashError, "Product not found")
		http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "confirm_delete", map[string]interface{}{
		"Title":   "Delete Product",
		"Product": product,
	})
}

// HandleDeleteProduct performs the confirmed delete.
//
// HTTP: POST /auth/dashboard/products/{id}/delete
func (h *DashboardHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		setFlash(w, FlashError, "Failed to delete product")
	} else {
		setFlash(w, FlashSuccess, "Product deleted successfully")
	}

	http.Redirect(w, r, "/auth/dashboard", http.StatusSeeOther)
}

// renderDashboard fetches the current list and renders the dashboard page,
// merging in the caller's extra view data.
func (h *DashboardHandler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, userID string, data map[string]interface{}) {
	products, err := h.products.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list products",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		if _, ok := data["Flash"]; !ok {
			data["Flash"] = &Flash{Kind: FlashError, Message: "Failed to load products"}
		}
	}

	data["Title"] = "Dashboard"
	data["Products"] = products
	h.renderer.Render(w, r, status, "dashboard", data)
}
