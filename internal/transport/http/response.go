package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"debug-challenge/internal/domain"
	"github.com/rs/zerolog"
)

type errorPayload struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func respondMessage(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorPayload{Message: message})
}

// respondError maps domain errors to a status. Unauthenticated requests get a bare 401;
// unexpected errors are logged and hidden from the client.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	code := statusFromError(err)
	switch code {
	case http.StatusUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			respondMessage(w, code, "Invalid username or password")
			return
		}
		w.WriteHeader(code)
	case http.StatusForbidden:
		if errors.Is(err, domain.ErrDisqualified) {
			respondMessage(w, code, "You have been disqualified")
			return
		}
		respondMessage(w, code, "Time limit exceeded")
	case http.StatusNotFound:
		respondMessage(w, code, "No question found")
	case http.StatusInternalServerError:
		logger.Error().Err(err).Msg("request failed")
		respondMessage(w, code, "internal server error")
	default:
		respondMessage(w, code, err.Error())
	}
}

func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDisqualified),
		errors.Is(err, domain.ErrTimeLimitExceeded):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrStaleRound):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
