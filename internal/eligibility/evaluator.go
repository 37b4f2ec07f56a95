// Package eligibility decides whether a cart action is allowed. Every
// function here is pure: it reads snapshots and returns a decision without
// touching session state.
package eligibility

import (
	"fmt"

	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/shopspring/decimal"
)

// Request describes a candidate add of Delta units of Item to the buy-cart.
type Request struct {
	Resources  resources.Snapshot
	CartValue  decimal.Decimal
	CartWeight int64
	InCart     int
	Item       catalog.Item
	Delta      int
}

// Decision is the evaluator verdict. Reason and Message are set only on deny.
type Decision struct {
	Allowed bool                   `json:"allowed"`
	Reason  enums.IneligibleReason `json:"reason,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Allow is the zero-reason positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a negative decision with the standard message for reason.
func Deny(reason enums.IneligibleReason, item catalog.Item) Decision {
	return Decision{Allowed: false, Reason: reason, Message: Message(reason, item)}
}

// Message renders the human-readable explanation for reason.
func Message(reason enums.IneligibleReason, item catalog.Item) string {
	switch reason {
	case enums.IneligibleMissingLicense:
		return fmt.Sprintf("You need a %s license to buy this item.", item.License)
	case enums.IneligibleInsufficientFunds:
		return "You cannot afford this item."
	case enums.IneligibleOverWeight:
		return "You cannot carry this item."
	case enums.IneligibleOutOfStock:
		return "This item is sold out."
	case enums.IneligibleJobGrade:
		return "You do not have the right job or grade to buy this item."
	}
	return ""
}

// Evaluate checks a buy-side add. When several conditions fail the reason is
// picked in this order: license, funds, weight, stock, job grade. A delta
// below one is a removal and is always allowed.
func Evaluate(req Request) Decision {
	if req.Delta < 1 {
		return Allow()
	}
	item := req.Item
	delta := int64(req.Delta)

	if !HasLicense(req.Resources, item) {
		return Deny(enums.IneligibleMissingLicense, item)
	}

	nextValue := req.CartValue.Add(item.Price.Mul(decimal.NewFromInt(delta)))
	if !req.Resources.Wallets.CoversAny(nextValue) {
		return Deny(enums.IneligibleInsufficientFunds, item)
	}

	if OverWeight(req.Resources, req.CartWeight+item.Weight*delta) {
		return Deny(enums.IneligibleOverWeight, item)
	}

	if count, limited := item.Available(); limited && req.InCart+req.Delta > count {
		return Deny(enums.IneligibleOutOfStock, item)
	}

	if !HasGrade(req.Resources.Job, item) {
		return Deny(enums.IneligibleJobGrade, item)
	}

	return Allow()
}

// EvaluateSale checks a sell-side add against the inventory count. Only
// stock applies when selling; an item without a count cannot be sold.
func EvaluateSale(item catalog.Item, inSellCart, delta int) Decision {
	if delta < 1 {
		return Allow()
	}
	count, _ := item.Available()
	if inSellCart+delta > count {
		return Deny(enums.IneligibleOutOfStock, item)
	}
	return Allow()
}

// MaxSellable returns how many more units of item fit in the sell-cart.
func MaxSellable(item catalog.Item, inSellCart int) int {
	count, _ := item.Available()
	if left := count - inSellCart; left > 0 {
		return left
	}
	return 0
}

// HasLicense reports whether the player holds the item's license, if any.
func HasLicense(snap resources.Snapshot, item catalog.Item) bool {
	return item.License == "" || snap.HasLicense(item.License)
}

// HasGrade reports whether the player's job satisfies the item's job map.
// An item without job requirements is open to everyone; otherwise the
// player's job must be listed with a minimum grade at or below theirs.
func HasGrade(job resources.Job, item catalog.Item) bool {
	if len(item.Jobs) == 0 {
		return true
	}
	minGrade, listed := item.Jobs[job.Name]
	return listed && minGrade <= job.Grade
}

// OverWeight reports whether carrying cartWeight more grams exceeds capacity.
func OverWeight(snap resources.Snapshot, cartWeight int64) bool {
	return snap.Weight+cartWeight > snap.MaxWeight
}
