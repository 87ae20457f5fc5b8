package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"mpdee-accounts/src/models"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: status < 400, Data: data})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: message})
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError reports err to the client. Caller mistakes are echoed
// back; anything else is logged and hidden behind a generic message.
func WriteServiceError(w http.ResponseWriter, log zerolog.Logger, err error, action string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Failed to " + action)
		WriteError(w, status, "failed to "+action)
		return
	}
	log.Info().Err(err).Int("status", status).Msg("Rejected request to " + action)
	WriteError(w, status, clientMessage(err))
}

// clientMessage drops the sentinel prefix, "invalid input: no selections"
// becomes "no selections".
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{models.ErrInvalidInput, models.ErrNotFound} {
		if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
