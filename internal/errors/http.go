// Package errors adapts store errors to HTTP error responses.
//
// All API errors share one JSON envelope:
//
//	{"error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."}}
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/arborlabs/keytree/pkg/store"
)

// HTTPError is the error payload inside the envelope.
type HTTPError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`

	// Details carries optional structured context, e.g. failing
	// health checks.
	Details map[string]any `json:"details,omitempty"`
}

// HTTPErrorResponse is the JSON envelope for all API errors.
type HTTPErrorResponse struct {
	Error HTTPError `json:"error"`
}

// Error codes used across the HTTP API.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeNotAFile           = "NOT_A_FILE"
	CodeNotADirectory      = "NOT_A_DIRECTORY"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeMalformedCursor    = "MALFORMED_CURSOR"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// RespondWithError maps a store error to an HTTP status and writes the
// standard error envelope.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	WriteError(w, r, status, code, err.Error())
}

// classify maps store sentinel errors to HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case store.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case store.IsNotAFile(err):
		return http.StatusConflict, CodeNotAFile
	case store.IsNotADirectory(err):
		return http.StatusConflict, CodeNotADirectory
	case store.IsAccessDenied(err):
		return http.StatusForbidden, CodeAccessDenied
	case store.IsMalformedCursor(err):
		return http.StatusBadRequest, CodeMalformedCursor
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// WriteError writes the standard error envelope with the given status
// and code. The request ID is taken from the X-Request-ID response
// header populated by the request ID middleware.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteErrorDetails(w, r, status, code, message, nil)
}

// WriteErrorDetails is WriteError with an optional details map.
func WriteErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	resp := HTTPErrorResponse{
		Error: HTTPError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	if w.Header().Get("X-Request-ID") != "" {
		resp.Error.RequestID = w.Header().Get("X-Request-ID")
	} else if r != nil {
		resp.Error.RequestID = r.Header.Get("X-Request-ID")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
