// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/getmockd/commercemock/pkg/repository"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteError writes the platform error body for err. The status code is
// taken from the error; unknown errors become 500.
func WriteError(w http.ResponseWriter, err error) {
	resp := repository.ToErrorResponse(err)
	WriteJSON(w, resp.StatusCode, resp)
}

// WriteErrorMessage writes a platform error body with a single error entry.
func WriteErrorMessage(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, &repository.ErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     []repository.ErrorObject{{Code: code, Message: message}},
	})
}

// WriteNotFound writes a 404 ResourceNotFound error response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusNotFound, repository.CodeResourceNotFound, message)
}

// WriteBadRequest writes a 400 InvalidInput error response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, repository.CodeInvalidInput, message)
}
