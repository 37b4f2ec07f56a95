package enums

import "fmt"

// ShopMode selects which cart is active.
type ShopMode string

const (
	ShopModeBuying  ShopMode = "buying"
	ShopModeSelling ShopMode = "selling"
)

var validShopModes = []ShopMode{
	ShopModeBuying,
	ShopModeSelling,
}

// String implements fmt.Stringer.
func (m ShopMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known ShopMode.
func (m ShopMode) IsValid() bool {
	for _, candidate := range validShopModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsSelling is shorthand for m == ShopModeSelling.
func (m ShopMode) IsSelling() bool {
	return m == ShopModeSelling
}

// ParseShopMode converts raw input into a ShopMode.
func ParseShopMode(value string) (ShopMode, error) {
	for _, candidate := range validShopModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shop mode %q", value)
}
