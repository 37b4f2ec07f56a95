// Package session owns the overlay's cart state: the current shop, both
// catalogs, the player's resources, the buy and sell carts and the mode.
// All mutations serialize through one mutex; host calls never hold it.
package session

import (
	"context"
	"sync"

	"github.com/angelmondragon/shopoverlay/internal/cart"
	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/google/uuid"
)

// KeyBindings maps keyboard codes to overlay actions.
type KeyBindings struct {
	ClearCart  string
	ToggleMode string
	Dismiss    string
}

// DefaultKeyBindings mirrors the stock configuration.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{ClearCart: "Delete", ToggleMode: "Tab", Dismiss: "Escape"}
}

// Session is the single owner of overlay state for one UI mount.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	effects Effects
	logg    *logger.Logger
	keys    KeyBindings

	visible   bool
	shop      *Shop
	shopItems *catalog.Catalog
	inventory *catalog.Catalog
	resources resources.Snapshot
	mode      enums.ShopMode

	buy  *cart.Cart
	sell *cart.Cart

	// generations detect snapshots and resets that land during a checkout
	catalogGen   uint64
	inventoryGen uint64
	buyGen       uint64
	sellGen      uint64

	inFlight map[enums.ShopMode]bool
	notice   string
}

// New builds an empty, hidden session in buying mode.
func New(effects Effects, logg *logger.Logger, keys KeyBindings) (*Session, error) {
	if effects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session effects required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	defaults := DefaultKeyBindings()
	if keys.ClearCart == "" {
		keys.ClearCart = defaults.ClearCart
	}
	if keys.ToggleMode == "" {
		keys.ToggleMode = defaults.ToggleMode
	}
	if keys.Dismiss == "" {
		keys.Dismiss = defaults.Dismiss
	}
	return &Session{
		id:       uuid.New(),
		effects:  effects,
		logg:     logg,
		keys:     keys,
		mode:     enums.ShopModeBuying,
		buy:      cart.NewBuy(),
		sell:     cart.NewSell(),
		inFlight: map[enums.ShopMode]bool{},
	}, nil
}

// ID identifies the session in logs and receipts.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Mode returns the active mode.
func (s *Session) Mode() enums.ShopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Visible reports whether the overlay is shown.
func (s *Session) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Shop returns a copy of the current shop, if any.
func (s *Session) Shop() (Shop, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shop == nil {
		return Shop{}, false
	}
	return *s.shop, true
}

// Resources returns the latest player snapshot.
func (s *Session) Resources() resources.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources.Clone()
}

// SetVisible shows or hides the overlay. Hiding leaves carts and any
// in-flight checkout alone.
func (s *Session) SetVisible(ctx context.Context, visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "visible", visible), "session.visibility")
}

// SetShop replaces the shop context. A different shop, or none, empties both
// carts. The mode is reset to the shop's entry mode; entering selling this
// way requests the player's inventory.
func (s *Session) SetShop(ctx context.Context, shop *Shop) {
	s.mu.Lock()
	var queued []effect

	if shop == nil {
		s.shop = nil
		s.resetBuy()
		s.resetSell()
		s.mode = enums.ShopModeBuying
		s.mu.Unlock()
		s.logg.Info(ctx, "session.shop_cleared")
		return
	}

	next := *shop
	changed := s.shop == nil || s.shop.ID != next.ID
	if changed {
		s.resetBuy()
		s.resetSell()
	}
	s.shop = &next
	entry := next.EntryMode()
	if changed && entry.IsSelling() && s.mode.IsSelling() {
		queued = append(queued, s.inventoryEffect(next.ID))
	}
	queued = s.enterMode(entry, queued)
	mode := s.mode
	s.mu.Unlock()

	ctx = s.logg.WithShopID(ctx, next.ID)
	ctx = s.logg.WithMode(ctx, mode.String())
	s.logg.Info(ctx, "session.shop_set")
	s.runEffects(ctx, queued)
}

// ReplaceCatalog installs a new shop catalog. The buy-cart is emptied on
// every push, including a push without items, which keeps the old catalog.
func (s *Session) ReplaceCatalog(ctx context.Context, items []catalog.Item, present bool) {
	s.mu.Lock()
	if present {
		s.shopItems = catalog.New(items)
	}
	s.catalogGen++
	s.resetBuy()
	s.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "items", len(items)), "session.catalog_replaced")
}

// ReplaceInventory installs the player's inventory-as-catalog. Sell-cart
// lines are not reconciled against the new counts.
func (s *Session) ReplaceInventory(ctx context.Context, items []catalog.Item, present bool) {
	if !present {
		return
	}
	s.mu.Lock()
	s.inventory = catalog.NewInventory(items)
	s.inventoryGen++
	s.mu.Unlock()
	s.logg.Debug(s.logg.WithField(ctx, "items", len(items)), "session.inventory_replaced")
}

// ReplaceResources swaps the player snapshot wholesale.
func (s *Session) ReplaceResources(ctx context.Context, snap resources.Snapshot) {
	s.mu.Lock()
	s.resources = snap.Clone()
	s.mu.Unlock()
	s.logg.Debug(ctx, "session.resources_replaced")
}

// Notice returns and keeps the last failure notice.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// DismissNotice clears the failure notice.
func (s *Session) DismissNotice() {
	s.setNotice("")
}

func (s *Session) setNotice(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

func (s *Session) resetBuy() {
	s.buy.Clear()
	s.buyGen++
}

func (s *Session) resetSell() {
	s.sell.Clear()
	s.sellGen++
}

func (s *Session) active() *cart.Cart {
	if s.mode.IsSelling() {
		return s.sell
	}
	return s.buy
}

func (s *Session) activeCatalog() *catalog.Catalog {
	if s.mode.IsSelling() {
		return s.inventory
	}
	return s.shopItems
}
