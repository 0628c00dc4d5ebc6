package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// JSON writes a JSON response with the given status code. If encoding fails
// the status has already been sent, so the error is only logged.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[httputil] JSON encode error: %v", err)
	}
}

// Empty writes status with a zero-length body.
func Empty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// OK writes an empty 200.
func OK(w http.ResponseWriter) { Empty(w, http.StatusOK) }

// BadRequest writes an empty 400.
func BadRequest(w http.ResponseWriter) { Empty(w, http.StatusBadRequest) }

// InternalError writes an empty 500. Callers log the cause themselves with
// their request-scoped logger.
func InternalError(w http.ResponseWriter) { Empty(w, http.StatusInternalServerError) }
