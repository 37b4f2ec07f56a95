package session

import (
	"context"

	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
)

// enterMode performs a mode transition. Entering buying drops the sell-cart;
// entering selling queues an inventory refresh. Staying put does nothing.
// Callers hold the lock.
func (s *Session) enterMode(mode enums.ShopMode, queued []effect) []effect {
	if s.mode == mode {
		return queued
	}
	s.mode = mode
	if mode.IsSelling() {
		if s.shop != nil {
			queued = append(queued, s.inventoryEffect(s.shop.ID))
		}
		return queued
	}
	s.resetSell()
	return queued
}

// SetMode switches the active cart. The shop must support the target mode
// and no checkout may be outstanding.
func (s *Session) SetMode(ctx context.Context, mode enums.ShopMode) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shop mode")
	}

	s.mu.Lock()
	if s.shop == nil {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no shop is open")
	}
	if !s.shop.Allows(mode) {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shop does not support "+mode.String())
	}
	if s.anyInFlight() {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeCheckoutInFlight, "a checkout is in progress")
	}
	queued := s.enterMode(mode, nil)
	shopID := s.shop.ID
	s.mu.Unlock()

	ctx = s.logg.WithShopID(ctx, shopID)
	ctx = s.logg.WithMode(ctx, mode.String())
	s.logg.Info(ctx, "session.mode_set")
	s.runEffects(ctx, queued)
	return nil
}

// ToggleMode flips between buying and selling on shops that support both.
func (s *Session) ToggleMode(ctx context.Context) (enums.ShopMode, error) {
	s.mu.Lock()
	if s.shop == nil || !s.shop.Toggleable() {
		s.mu.Unlock()
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "shop cannot switch modes")
	}
	next := enums.ShopModeSelling
	if s.mode.IsSelling() {
		next = enums.ShopModeBuying
	}
	s.mu.Unlock()

	if err := s.SetMode(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *Session) anyInFlight() bool {
	for _, busy := range s.inFlight {
		if busy {
			return true
		}
	}
	return false
}
