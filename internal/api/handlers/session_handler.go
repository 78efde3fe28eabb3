package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/taskhub-be/internal/services"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles credential checks.
type SessionHandler struct {
	service services.SessionServiceProvider
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service services.SessionServiceProvider) *SessionHandler {
	return &SessionHandler{service: service}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies the credentials and returns the user's id. No token or cookie is issued.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeBody(w, r, &payload); err != nil {
		respondErrorField(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			respondErrorField(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrIncorrectPassword):
			log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
			respondErrorField(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Login failed")
			respondErrorField(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "login successful",
		"userId":  user.ID,
	})
}
