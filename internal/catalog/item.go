package catalog

import (
	"github.com/shopspring/decimal"
)

// MiscCategory collects items pushed without a category.
const MiscCategory = "Misc"

// InventoryCategory is the single bucket used for the player's own items.
const InventoryCategory = "Inventory"

var hundred = decimal.NewFromInt(100)

// Item is one purchasable (shop) or sellable (inventory) entry.
// Weight is expressed in grams.
type Item struct {
	ID        int64
	Name      string
	Label     string
	Price     decimal.Decimal
	BasePrice *decimal.Decimal
	Weight    int64
	Count     *int
	ImagePath string
	Category  string
	License   string
	Jobs      map[string]int
}

// Unlimited reports whether the item has no stock ceiling.
func (i Item) Unlimited() bool {
	return i.Count == nil
}

// Available returns the stock count, treating unlimited as ok=false.
func (i Item) Available() (int, bool) {
	if i.Count == nil {
		return 0, false
	}
	return *i.Count, true
}

// CategoryOrMisc returns the category the item is filed under.
func (i Item) CategoryOrMisc() string {
	if i.Category == "" {
		return MiscCategory
	}
	return i.Category
}

// PriceTrend returns the rounded percentage between price and base price.
// ok is false when there is no positive base price or it equals the price.
func (i Item) PriceTrend() (percent int64, ok bool) {
	if i.BasePrice == nil || !i.BasePrice.IsPositive() || i.BasePrice.Equal(i.Price) {
		return 0, false
	}
	ratio := i.Price.Sub(*i.BasePrice).Div(*i.BasePrice).Mul(hundred)
	// half rounds towards positive infinity
	return ratio.Add(decimal.NewFromFloat(0.5)).Floor().IntPart(), true
}

// clone copies the mutable reference fields so snapshots never alias.
func (i Item) clone() Item {
	out := i
	if i.BasePrice != nil {
		base := *i.BasePrice
		out.BasePrice = &base
	}
	if i.Count != nil {
		count := *i.Count
		out.Count = &count
	}
	if i.Jobs != nil {
		out.Jobs = make(map[string]int, len(i.Jobs))
		for job, grade := range i.Jobs {
			out.Jobs[job] = grade
		}
	}
	return out
}
