package session

import (
	"context"

	"github.com/angelmondragon/shopoverlay/internal/cart"
	"github.com/angelmondragon/shopoverlay/internal/eligibility"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/shopspring/decimal"
)

// SaleUnit names one inventory line for per-unit selling.
type SaleUnit struct {
	ItemID   int64
	Name     string
	Quantity int
}

// Settlement is a frozen copy of a cart handed to the host. The session
// releases its in-flight guard only through Complete.
type Settlement struct {
	Kind   enums.SettlementKind
	Method enums.PaymentMethod
	Shop   Shop
	Lines  []cart.Line
	Total  decimal.Decimal
	Units  []SaleUnit

	mode       enums.ShopMode
	cartGen    uint64
	catalogGen uint64
}

// Quantities maps item ids to settled quantities.
func (st *Settlement) Quantities() map[int64]int {
	out := make(map[int64]int, len(st.Lines))
	for _, line := range st.Lines {
		out[line.ItemID] += line.Quantity
	}
	return out
}

// Result is what the transport learned from the host.
type Result struct {
	Accepted bool
	// RefreshInventory asks the host for a fresh inventory afterwards.
	RefreshInventory bool
	Notice           string
}

// BeginPurchase freezes the buy-cart for settlement with method. The session
// must be buying and the method must cover the cart on its own.
func (s *Session) BeginPurchase(method enums.PaymentMethod) (*Settlement, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shop == nil || !s.shop.CanBuy {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shop does not sell items")
	}
	if s.mode != enums.ShopModeBuying {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "switch to buying to check out the buy cart")
	}
	if s.inFlight[enums.ShopModeBuying] {
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutInFlight, "a purchase is already in progress")
	}
	ok, reason := eligibility.CanPay(s.checkoutState(), method)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotEligible, reason)
	}

	st := &Settlement{
		Kind:       enums.SettlementKindPurchase,
		Method:     method,
		Shop:       *s.shop,
		Lines:      s.buy.Lines(),
		Total:      s.buy.Value(),
		mode:       enums.ShopModeBuying,
		cartGen:    s.buyGen,
		catalogGen: s.catalogGen,
	}
	s.inFlight[enums.ShopModeBuying] = true
	return st, nil
}

// BeginSale freezes the sell-cart for settlement. The session must be selling.
func (s *Session) BeginSale() (*Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shop == nil || !s.shop.CanSell {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shop does not buy items")
	}
	if s.mode != enums.ShopModeSelling {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "switch to selling to check out the sell cart")
	}
	if s.inFlight[enums.ShopModeSelling] {
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutInFlight, "a sale is already in progress")
	}
	if s.sell.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeNotEligible, "The cart is empty.")
	}

	lines := s.sell.Lines()
	units := make([]SaleUnit, 0, len(lines))
	for _, line := range lines {
		name := line.Name
		if item, ok := s.inventory.Lookup(line.ItemID); ok {
			name = item.Name
		}
		units = append(units, SaleUnit{ItemID: line.ItemID, Name: name, Quantity: line.Quantity})
	}
	total, _ := s.sell.Recompute(s.inventory.Lookup)

	st := &Settlement{
		Kind:       enums.SettlementKindSale,
		Shop:       *s.shop,
		Lines:      lines,
		Total:      total,
		Units:      units,
		mode:       enums.ShopModeSelling,
		cartGen:    s.sellGen,
		catalogGen: s.inventoryGen,
	}
	s.inFlight[enums.ShopModeSelling] = true
	return st, nil
}

// Complete releases the settlement. On acceptance the settled quantities are
// taken off the local catalog and the cart is cleared, unless a newer
// snapshot or reset already replaced them. On refusal the cart is untouched.
func (s *Session) Complete(ctx context.Context, st *Settlement, res Result) {
	if st == nil {
		return
	}

	s.mu.Lock()
	delete(s.inFlight, st.mode)
	var queued []effect

	if res.Accepted {
		sold := st.Quantities()
		switch st.Kind {
		case enums.SettlementKindPurchase:
			if s.catalogGen == st.catalogGen {
				s.shopItems = s.shopItems.WithSold(sold, false)
			}
			if s.buyGen == st.cartGen {
				s.resetBuy()
			}
		case enums.SettlementKindSale:
			if s.inventoryGen == st.catalogGen {
				s.inventory = s.inventory.WithSold(sold, true)
			}
			if s.sellGen == st.cartGen {
				s.resetSell()
			}
		}
	}
	s.notice = res.Notice
	if res.RefreshInventory && s.shop != nil {
		queued = append(queued, s.inventoryEffect(s.shop.ID))
	}
	s.mu.Unlock()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"shop_id":  st.Shop.ID,
		"kind":     st.Kind.String(),
		"accepted": res.Accepted,
	})
	s.logg.Info(ctx, "session.settlement_completed")
	s.runEffects(ctx, queued)
}

// InFlight reports whether the cart for mode is being settled.
func (s *Session) InFlight(mode enums.ShopMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[mode]
}

func (s *Session) checkoutState() eligibility.CheckoutState {
	return eligibility.CheckoutState{
		Resources:  s.resources,
		CartValue:  s.buy.Value(),
		CartWeight: s.buy.Weight(),
		CartEmpty:  s.buy.IsEmpty(),
		InFlight:   s.inFlight[enums.ShopModeBuying],
	}
}
