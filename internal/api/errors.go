package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/nauticalab/propbind/internal/catalog"
)

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", code).Msg("error encoding JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, payload any) {
	respondJSON(w, http.StatusOK, payload)
}

// respondError writes an ErrorResponse whose error field is the status text.
func respondError(w http.ResponseWriter, code int, format string, args ...any) {
	respondJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

// respondBodyError maps a failed request body read to 413 or 400.
func respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "Request body exceeds %d bytes", tooLarge.Limit)
		return
	}
	respondError(w, http.StatusBadRequest, "Failed to read request body")
}

// respondModuleError maps catalog failures: unknown modules are 404, the
// rest are logged and reported as 500.
func respondModuleError(w http.ResponseWriter, module string, err error) {
	if errors.Is(err, catalog.ErrUnknownModule) {
		respondError(w, http.StatusNotFound, "Module %q not found", module)
		return
	}
	log.Error().Err(err).Str("module", module).Msg("error building module")
	respondError(w, http.StatusInternalServerError, "Failed to build module")
}
