package enums

import "fmt"

// SettlementKind distinguishes purchase and sale round-trips.
type SettlementKind string

const (
	SettlementKindPurchase SettlementKind = "purchase"
	SettlementKindSale     SettlementKind = "sale"
)

var validSettlementKinds = []SettlementKind{
	SettlementKindPurchase,
	SettlementKindSale,
}

// String implements fmt.Stringer.
func (k SettlementKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known SettlementKind.
func (k SettlementKind) IsValid() bool {
	for _, candidate := range validSettlementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// SettlementOutcome records how the host answered a settlement.
type SettlementOutcome string

const (
	// SettlementOutcomeAccepted means the host acknowledged positively.
	SettlementOutcomeAccepted SettlementOutcome = "accepted"
	// SettlementOutcomeRejected means the host answered with a negative result.
	SettlementOutcomeRejected SettlementOutcome = "rejected"
	// SettlementOutcomeFailed means the round-trip itself did not complete.
	SettlementOutcomeFailed SettlementOutcome = "failed"
)

var validSettlementOutcomes = []SettlementOutcome{
	SettlementOutcomeAccepted,
	SettlementOutcomeRejected,
	SettlementOutcomeFailed,
}

// String implements fmt.Stringer.
func (o SettlementOutcome) String() string {
	return string(o)
}

// IsValid reports whether the value is a known SettlementOutcome.
func (o SettlementOutcome) IsValid() bool {
	for _, candidate := range validSettlementOutcomes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseSettlementOutcome converts raw input into a SettlementOutcome.
func ParseSettlementOutcome(value string) (SettlementOutcome, error) {
	for _, candidate := range validSettlementOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement outcome %q", value)
}
