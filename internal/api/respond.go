package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// RequestError is the body of every error response.
type RequestError struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, RequestError{Error: true, Message: msg})
}

// statusFor maps a store error to an HTTP status. notFound is the status
// used for types.ErrNotFound, which differs between reads and writes.
func statusFor(err error, notFound int) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return notFound
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrInvalidReference),
		errors.Is(err, types.ErrConflict),
		errors.Is(err, types.ErrSelfReference),
		errors.Is(err, types.ErrNotSubscribed):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrBackendClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
