package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Threads_Backend/internal/services"
	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service error class to a status code. Routes
// disagree on what a missing record means, so the caller picks notFound.
func writeServiceError(w http.ResponseWriter, err error, notFound int) {
	switch {
	case errors.Is(err, services.ErrNotVerified):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, notFound, err.Error())
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrAuth),
		errors.Is(err, services.ErrToken),
		errors.Is(err, services.ErrSelfReference),
		errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDelivery):
		writeError(w, http.StatusInternalServerError, "Failed to send email, please try again")
	default:
		log.WithError(err).Error("Unhandled service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.WithError(err).Warn("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
