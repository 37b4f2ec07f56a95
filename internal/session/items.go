package session

import (
	"context"

	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/eligibility"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
)

// Eligibility evaluates adding one unit of itemID to the active cart without
// mutating anything.
func (s *Session) Eligibility(itemID int64) (eligibility.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.lookupActive(itemID)
	if err != nil {
		return eligibility.Decision{}, err
	}
	return s.evaluate(item, 1), nil
}

// AddItem adds quantity units of itemID to the active cart after the
// eligibility check passes. A refusal leaves the cart unchanged and carries
// the decision as error details.
func (s *Session) AddItem(ctx context.Context, itemID int64, quantity int) (eligibility.Decision, error) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if err := s.mutable(); err != nil {
		s.mu.Unlock()
		return eligibility.Decision{}, err
	}
	item, err := s.lookupActive(itemID)
	if err != nil {
		s.mu.Unlock()
		return eligibility.Decision{}, err
	}
	decision := s.evaluate(item, quantity)
	if decision.Allowed {
		s.active().Add(item, quantity)
	}
	mode := s.mode
	s.mu.Unlock()

	ctx = s.logg.WithFields(ctx, map[string]any{
		"mode":     mode.String(),
		"item_id":  itemID,
		"quantity": quantity,
	})
	if !decision.Allowed {
		s.logg.Debug(s.logg.WithField(ctx, "reason", decision.Reason.String()), "session.add_refused")
		return decision, notEligible(decision)
	}
	s.logg.Debug(ctx, "session.item_added")
	return decision, nil
}

// SetQuantity moves the active cart line for itemID to quantity. Growth on
// the buy-cart is evaluated against the new totals; growth on the sell-cart
// is capped at what the inventory still holds. Zero or less removes the line.
func (s *Session) SetQuantity(ctx context.Context, itemID int64, quantity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return 0, err
	}
	active := s.active()
	current := active.Quantity(itemID)

	switch {
	case quantity <= 0:
		active.Remove(itemID, 0, true)
		return 0, nil
	case quantity < current:
		active.Remove(itemID, current-quantity, false)
		return quantity, nil
	case quantity == current:
		return current, nil
	}

	item, err := s.lookupActive(itemID)
	if err != nil {
		return current, err
	}
	delta := quantity - current
	if s.mode.IsSelling() {
		if room := eligibility.MaxSellable(item, current); delta > room {
			delta = room
		}
		if delta <= 0 {
			return current, notEligible(eligibility.Deny(enums.IneligibleOutOfStock, item))
		}
		active.Add(item, delta)
		return current + delta, nil
	}

	decision := s.evaluate(item, delta)
	if !decision.Allowed {
		return current, notEligible(decision)
	}
	active.Add(item, delta)
	return quantity, nil
}

// RemoveItem takes units off the active cart. Removing an absent line is a
// no-op that reports false.
func (s *Session) RemoveItem(itemID int64, quantity int, removeAll bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return false, err
	}
	return s.active().Remove(itemID, quantity, removeAll), nil
}

// ClearActive empties the active cart.
func (s *Session) ClearActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mutable(); err != nil {
		return err
	}
	if s.mode.IsSelling() {
		s.resetSell()
	} else {
		s.resetBuy()
	}
	return nil
}

// mutable refuses user edits of a cart whose checkout is outstanding.
func (s *Session) mutable() error {
	if s.inFlight[s.mode] {
		return pkgerrors.New(pkgerrors.CodeCheckoutInFlight, "the cart is being checked out")
	}
	return nil
}

func (s *Session) lookupActive(itemID int64) (catalog.Item, error) {
	source := s.activeCatalog()
	if !source.Loaded() {
		return catalog.Item{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no catalog loaded")
	}
	item, ok := source.Lookup(itemID)
	if !ok {
		return catalog.Item{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}

func (s *Session) evaluate(item catalog.Item, delta int) eligibility.Decision {
	if s.mode.IsSelling() {
		return eligibility.EvaluateSale(item, s.sell.Quantity(item.ID), delta)
	}
	return eligibility.Evaluate(eligibility.Request{
		Resources:  s.resources,
		CartValue:  s.buy.Value(),
		CartWeight: s.buy.Weight(),
		InCart:     s.buy.Quantity(item.ID),
		Item:       item,
		Delta:      delta,
	})
}

func notEligible(decision eligibility.Decision) error {
	return pkgerrors.New(pkgerrors.CodeNotEligible, decision.Message).WithDetails(decision)
}
