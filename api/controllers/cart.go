package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/shopoverlay/api/responses"
	"github.com/angelmondragon/shopoverlay/api/validators"
	"github.com/angelmondragon/shopoverlay/internal/eligibility"
	"github.com/angelmondragon/shopoverlay/internal/session"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
)

const itemIDParam = "itemID"

// RejectionCounter counts refused cart additions by reason.
type RejectionCounter interface {
	IncRejection(reason string)
}

type addItemRequest struct {
	ItemID   int64 `json:"id" validate:"required,gte=1"`
	Quantity int   `json:"quantity" validate:"omitempty,min=1,max=1000"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,max=1000"`
}

type cartMutationResponse struct {
	Decision *eligibility.Decision `json:"eligibility,omitempty"`
	Quantity *int                  `json:"quantity,omitempty"`
	Removed  *bool                 `json:"removed,omitempty"`
	View     session.View          `json:"session"`
}

// CartAdd adds units of an item to the active cart.
func CartAdd(sess *session.Session, rejections RejectionCounter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		decision, err := sess.AddItem(r.Context(), payload.ItemID, payload.Quantity)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotEligible) && rejections != nil {
				rejections.IncRejection(decision.Reason.String())
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMutationResponse{Decision: &decision, View: sess.View()})
	}
}

// CartSetQuantity moves a line to an exact quantity; zero removes it.
func CartSetQuantity(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseItemID(r, itemIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity, err := sess.SetQuantity(r.Context(), itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMutationResponse{Quantity: &quantity, View: sess.View()})
	}
}

// CartRemove takes units of an item out of the active cart. Without a
// quantity one unit is removed; all=true drops the line. Removing an item
// that is not in the cart answers 200 with removed=false.
func CartRemove(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseItemID(r, itemIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity, err := validators.ParseQueryInt(r, "quantity", 1, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		removeAll := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("all")), "true")

		removed, err := sess.RemoveItem(itemID, quantity, removeAll)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMutationResponse{Removed: &removed, View: sess.View()})
	}
}

// CartClear empties the active cart.
func CartClear(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sess.ClearActive(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMutationResponse{View: sess.View()})
	}
}

// ItemEligibility reports whether one more unit of an item may be added.
func ItemEligibility(sess *session.Session, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.ParseItemID(r, itemIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := sess.Eligibility(itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decision)
	}
}
