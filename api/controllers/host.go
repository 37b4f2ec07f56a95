package controllers

import (
	"net/http"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	"github.com/angelmondragon/shopoverlay/internal/host"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

// HostEvent applies one push from the game client over plain HTTP.
func HostEvent(dispatcher *host.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dispatcher unavailable"))
			return
		}

		var evt host.Event
		if err := validators.DecodeJSONBody(r, &evt); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := dispatcher.Dispatch(r.Context(), evt); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, host.Ack{Action: evt.Action, OK: true})
	}
}
