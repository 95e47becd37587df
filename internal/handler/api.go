package handler

import (
	"log/slog"
	"net/http"

	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/service"
)

// APIHandler serves the JSON read endpoints. Both routes sit behind
// auth.RequireToken, which validates the session's JWT and puts the userID
// in the request context.
//
//	GET /api/me       → the authenticated user
//	GET /api/products → the authenticated user's products
type APIHandler struct {
	authSvc  *service.AuthService
	products *service.ProductService
	logger   *slog.Logger
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(authSvc *service.AuthService, products *service.ProductService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		authSvc:  authSvc,
		products: products,
		logger:   logger,
	}
}

// HandleMe returns the authenticated user's record.
func (h *APIHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireToken, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("me lookup failed", slog.String("userID", userID), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleListProducts returns the authenticated user's products.
func (h *APIHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	products, err := h.products.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
