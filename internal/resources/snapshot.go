package resources

import (
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/shopspring/decimal"
)

// Wallets holds the three balances a player can pay from. A zero society
// balance means the shared fund does not apply to the current shop.
type Wallets struct {
	Cash    decimal.Decimal
	Bank    decimal.Decimal
	Society decimal.Decimal
}

// Balance returns the balance backing the given payment method.
func (w Wallets) Balance(method enums.PaymentMethod) decimal.Decimal {
	switch method {
	case enums.PaymentMethodCash:
		return w.Cash
	case enums.PaymentMethodBank:
		return w.Bank
	case enums.PaymentMethodSociety:
		return w.Society
	}
	return decimal.Zero
}

// CoversAny reports whether at least one wallet can pay amount.
func (w Wallets) CoversAny(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(w.Cash) ||
		amount.LessThanOrEqual(w.Bank) ||
		amount.LessThanOrEqual(w.Society)
}

// Job is the player's job identity.
type Job struct {
	Name  string
	Grade int
}

// Snapshot mirrors what the host last told us about the player. It is
// replaced as a whole on every push and never patched. Weights are grams.
type Snapshot struct {
	Wallets   Wallets
	Weight    int64
	MaxWeight int64
	Licenses  map[string]bool
	Job       Job
}

// Clone returns a deep copy so holders can hand out snapshots freely.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Licenses != nil {
		out.Licenses = make(map[string]bool, len(s.Licenses))
		for name, held := range s.Licenses {
			out.Licenses[name] = held
		}
	}
	return out
}

// HasLicense reports whether the named license flag is held.
func (s Snapshot) HasLicense(name string) bool {
	return s.Licenses[name]
}

// SocietyApplicable reports whether the shared fund may be offered.
func (s Snapshot) SocietyApplicable() bool {
	return s.Wallets.Society.IsPositive()
}

// FreeCapacity returns how many grams can still be carried, never negative.
func (s Snapshot) FreeCapacity() int64 {
	free := s.MaxWeight - s.Weight
	if free < 0 {
		return 0
	}
	return free
}
