package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kasuboski/remote-work-directory/internal/domain"
)

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "spot not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// validationBody returns an ErrorResponse for a domain validation failure,
// carrying field and length detail when the error has it.
func validationBody(err error) ErrorResponse {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: err.Error()}}
	}
	d := ErrorDetail{Code: "validation_error", Message: ve.Message, Field: ve.Field}
	if ve.IsLengthError() {
		maxLen, actual := ve.MaxLength, ve.ActualLength
		d.MaxLength, d.ActualLength = &maxLen, &actual
	}
	return ErrorResponse{Error: d}
}

// requestBody returns an ErrorResponse for a request rejected before it
// reaches the service layer (e.g. malformed body or query string).
func requestBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// internalError logs err and responds with a generic 500 so store details
// never reach the client.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, requestBody("internal_error", "internal server error"))
}
