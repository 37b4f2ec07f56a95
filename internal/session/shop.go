package session

import "github.com/angelmondragon/shopoverlay/pkg/enums"

// Shop is the context the overlay was opened for.
type Shop struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Location int    `json:"location"`
	CanBuy   bool   `json:"canBuy"`
	CanSell  bool   `json:"canSell"`
	CanRob   *bool  `json:"canRob,omitempty"`
}

// EntryMode is the mode a shop opens in. Sell-only shops open selling.
func (s Shop) EntryMode() enums.ShopMode {
	if s.CanSell && !s.CanBuy {
		return enums.ShopModeSelling
	}
	return enums.ShopModeBuying
}

// Allows reports whether the shop supports mode.
func (s Shop) Allows(mode enums.ShopMode) bool {
	if mode.IsSelling() {
		return s.CanSell
	}
	return s.CanBuy
}

// Toggleable reports whether the user may switch between modes.
func (s Shop) Toggleable() bool {
	return s.CanBuy && s.CanSell
}

// Robbable reports whether a robbery may be started. Hosts that never send
// canRob get the buy flag instead.
func (s Shop) Robbable() bool {
	if s.CanRob != nil {
		return *s.CanRob
	}
	return s.CanBuy
}
