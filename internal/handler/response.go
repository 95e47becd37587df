// Package handler contains the HTTP layer: screen handlers that render HTML
// forms, the JSON API handlers, and the helpers both share. Handlers parse
// requests and write responses; the rules live in the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
)

// ErrorResponse is the standard error envelope returned by the JSON API.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body; Encode writes the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and the standard error
// envelope. The service layer returns apperror sentinels; this is the only
// place they meet status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errorType := "internal_error"
	message := "An internal error occurred"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		errorType = "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
		errorType = "unauthorized"
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		errorType = "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if errorType == "validation_error" {
		// FieldErrors and wrapped validation failures still get their text.
		message = err.Error()
	}
	// Unknown internal errors keep the generic message; raw error strings
	// can leak paths and SQL.

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
