package controllers

import (
	"net/http"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	checkoutsvc "github.com/angelmondragon/shopoverlay/internal/checkout"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

type purchaseRequest struct {
	Method string `json:"method" validate:"required,oneof=cash bank card society"`
}

type checkoutResponse struct {
	Outcome *checkoutsvc.Outcome `json:"outcome"`
	View    session.View         `json:"session"`
}

// CheckoutPurchase settles the buy-cart with the chosen payment method.
func CheckoutPurchase(svc checkoutsvc.Service, sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		outcome, err := svc.Purchase(r.Context(), method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{Outcome: outcome, View: sess.View()})
	}
}

// CheckoutSale settles the sell-cart.
func CheckoutSale(svc checkoutsvc.Service, sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		outcome, err := svc.Sale(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{Outcome: outcome, View: sess.View()})
	}
}
