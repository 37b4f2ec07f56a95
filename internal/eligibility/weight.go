package eligibility

import (
	"fmt"

	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/shopspring/decimal"
)

var gramsPerKilo = decimal.NewFromInt(1000)

// Kilograms converts grams to kilograms rounded to two places. Display only.
func Kilograms(grams int64) decimal.Decimal {
	return decimal.NewFromInt(grams).Div(gramsPerKilo).Round(2)
}

// WeightDisplay renders "current + cart / max kg" for the cart footer.
func WeightDisplay(snap resources.Snapshot, cartWeight int64) string {
	return fmt.Sprintf("%s + %s / %s kg",
		Kilograms(snap.Weight).String(),
		Kilograms(cartWeight).String(),
		Kilograms(snap.MaxWeight).String(),
	)
}
