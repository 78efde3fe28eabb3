package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/taskhub-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PasswordHandler serves the password recovery endpoints.
type PasswordHandler struct {
	service services.PasswordServiceProvider
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(service services.PasswordServiceProvider) *PasswordHandler {
	return &PasswordHandler{service: service}
}

// RequestReset emails a recovery link to the account with the given email.
func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeBody(w, r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.RequestReset(r.Context(), payload.Email); err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			respondMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrUserNotFound):
			respondMessage(w, http.StatusNotFound, err.Error())
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to process password reset request")
			respondMessage(w, http.StatusInternalServerError, "failed to send recovery email")
		}
		return
	}

	respondMessage(w, http.StatusOK, "recovery email sent")
}

// Confirm sets a new password using a recovery token.
func (h *PasswordHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(w, r, &payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			respondMessage(w, http.StatusBadRequest, verr.Message)
		case errors.Is(err, services.ErrInvalidResetToken):
			respondMessage(w, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Msg("Failed to reset password")
			respondMessage(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	respondMessage(w, http.StatusOK, "password updated")
}
