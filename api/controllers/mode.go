package controllers

import (
	"net/http"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

type setModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=buying selling"`
}

// ModeSet switches the overlay between buying and selling.
func ModeSet(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setModeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseShopMode(payload.Mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode"))
			return
		}
		if err := sess.SetMode(r.Context(), mode); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess.View())
	}
}

// ModeToggle flips the mode on shops that both buy and sell.
func ModeToggle(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sess.ToggleMode(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sess.View())
	}
}
