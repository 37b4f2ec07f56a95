package controllers

import (
	"net/http"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

type keyPressRequest struct {
	Code         string `json:"code" validate:"required,max=32"`
	InputFocused bool   `json:"inputFocused"`
}

type keyPressResponse struct {
	Action session.KeyAction `json:"action"`
	View   session.View      `json:"session"`
}

// KeyPress applies a keyboard shortcut from the overlay.
func KeyPress(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload keyPressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := sess.HandleKey(r.Context(), validators.SanitizeString(payload.Code, 32), payload.InputFocused)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, keyPressResponse{Action: action, View: sess.View()})
	}
}

// Robbery asks the game client to start robbing the current shop.
func Robbery(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sess.StartRobbery(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "requested"})
	}
}

// Hide asks the game client to close the overlay.
func Hide(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sess.Hide(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "requested"})
	}
}
