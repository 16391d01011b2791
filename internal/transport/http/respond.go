package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tahsin/salamilink/internal/apperrors"
)

// contextWithTimeout bounds a request-scoped operation.
func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// best-effort fallback; don't override status for the caller
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// errorBody is the JSON error envelope. Field is present only for
// invalid_input so the client can highlight the offending form field.
type errorBody struct {
	Error       string `json:"error"`
	Field       string `json:"field,omitempty"`
	Description string `json:"error_description,omitempty"`
}

// writeError centralizes application error translation to HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		writeJSON(w, statusFor(appErr.Code), errorBody{
			Error:       string(appErr.Code),
			Field:       appErr.Field,
			Description: appErr.Message,
		})
		return
	}

	// Unexpected errors: assume the store hiccuped and tell the user to
	// try again without leaking internals.
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:       string(apperrors.CodeInternal),
		Description: "something went wrong, try again",
	})
}

// statusFor translates application error codes to HTTP status codes.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict, apperrors.CodeAlreadyAuthenticated:
		return http.StatusConflict
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into T. On failure it writes a 400 and
// returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.CodeInvalidInput, "invalid request body"))
		return nil, false
	}
	return &req, true
}
