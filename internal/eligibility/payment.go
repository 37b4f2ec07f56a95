package eligibility

import (
	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/shopspring/decimal"
)

// PaymentOption is one checkout button.
type PaymentOption struct {
	Method  enums.PaymentMethod `json:"method"`
	Balance decimal.Decimal     `json:"balance"`
	Usable  bool                `json:"usable"`
	Reason  string              `json:"reason,omitempty"`
}

// CheckoutState is what the per-method check needs to know about the cart.
type CheckoutState struct {
	Resources  resources.Snapshot
	CartValue  decimal.Decimal
	CartWeight int64
	CartEmpty  bool
	InFlight   bool
}

// PaymentOptions lists the methods to offer for a buy checkout. Society is
// offered only while its wallet is positive.
func PaymentOptions(state CheckoutState) []PaymentOption {
	out := make([]PaymentOption, 0, 3)
	for _, method := range enums.PaymentMethods() {
		if method == enums.PaymentMethodSociety && !state.Resources.SocietyApplicable() {
			continue
		}
		reason := blockedReason(state, method)
		out = append(out, PaymentOption{
			Method:  method,
			Balance: state.Resources.Wallets.Balance(method),
			Usable:  reason == "",
			Reason:  reason,
		})
	}
	return out
}

// CanPay reports whether method may settle the current buy-cart, returning
// the blocking explanation otherwise.
func CanPay(state CheckoutState, method enums.PaymentMethod) (bool, string) {
	if method == enums.PaymentMethodSociety && !state.Resources.SocietyApplicable() {
		return false, "The society fund is not available here."
	}
	reason := blockedReason(state, method)
	return reason == "", reason
}

func blockedReason(state CheckoutState, method enums.PaymentMethod) string {
	switch {
	case state.CartEmpty:
		return "The cart is empty."
	case state.InFlight:
		return "A checkout is already in progress."
	case OverWeight(state.Resources, state.CartWeight):
		return "You cannot carry all items in the cart."
	case state.CartValue.GreaterThan(state.Resources.Wallets.Balance(method)):
		return "You cannot afford the cart with this payment method."
	}
	return ""
}
