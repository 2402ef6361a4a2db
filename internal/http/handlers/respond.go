package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := errorResponse{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// writeServiceError maps service sentinel errors to status codes. Anything
// unrecognised is logged and reported as a 500 without its details.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "Conflict", err)
	case errors.Is(err, service.ErrPinRejected):
		writeError(w, http.StatusUnprocessableEntity, "Pinned course cannot be scheduled", err)
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error", errors.New("internal error"))
	}
}

// decodeJSON reads a single JSON value into dst, rejecting unknown fields.
// An empty body leaves dst untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	if decoder.More() {
		return fmt.Errorf("%w: request body must hold a single JSON value", service.ErrInvalidInput)
	}
	return nil
}

func pathIndex(r *http.Request, name string) (int, error) {
	value := r.PathValue(name)
	index, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", service.ErrInvalidInput, name, value)
	}
	return index, nil
}
