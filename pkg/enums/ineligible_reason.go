package enums

import "fmt"

// IneligibleReason explains why an add-to-cart action is refused. The
// declaration order is the priority order used when several apply.
type IneligibleReason string

const (
	IneligibleMissingLicense    IneligibleReason = "missing_license"
	IneligibleInsufficientFunds IneligibleReason = "insufficient_funds"
	IneligibleOverWeight        IneligibleReason = "over_weight"
	IneligibleOutOfStock        IneligibleReason = "out_of_stock"
	IneligibleJobGrade          IneligibleReason = "job_grade"
)

var validIneligibleReasons = []IneligibleReason{
	IneligibleMissingLicense,
	IneligibleInsufficientFunds,
	IneligibleOverWeight,
	IneligibleOutOfStock,
	IneligibleJobGrade,
}

// String implements fmt.Stringer.
func (r IneligibleReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known IneligibleReason.
func (r IneligibleReason) IsValid() bool {
	for _, candidate := range validIneligibleReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseIneligibleReason converts raw input into an IneligibleReason.
func ParseIneligibleReason(value string) (IneligibleReason, error) {
	for _, candidate := range validIneligibleReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ineligible reason %q", value)
}
