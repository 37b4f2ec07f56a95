package enums

import "fmt"

// PaymentMethod names the wallet a purchase is charged against.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodBank    PaymentMethod = "bank"
	PaymentMethodSociety PaymentMethod = "society"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodBank,
	PaymentMethodSociety,
}

// PaymentMethods lists every method in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// HostCurrency is the currency tag the game client expects on purchaseItems.
// The client calls the bank wallet "card".
func (p PaymentMethod) HostCurrency() string {
	if p == PaymentMethodBank {
		return "card"
	}
	return string(p)
}

// ParsePaymentMethod converts raw input into a PaymentMethod. "card" is
// accepted as an alias for bank.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if value == "card" {
		return PaymentMethodBank, nil
	}
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
