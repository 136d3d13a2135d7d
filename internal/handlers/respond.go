package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markjakearzadon/clubdues-gobackend/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps service error kinds to HTTP statuses. Zero means internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	}
	return 0
}

// writeError sends the caller-safe message for known error kinds. Anything
// else is logged and answered with internalMsg only.
func writeError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	if status := statusFor(err); status != 0 {
		writeErrorMessage(w, status, err.Error())
		return
	}
	loggerFrom(r.Context()).ErrorContext(r.Context(), internalMsg,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeErrorMessage(w, http.StatusInternalServerError, internalMsg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeErrorMessage(w, http.StatusNotFound, "Route not found")
}
