package session

import (
	"github.com/angelmondragon/shopoverlay/internal/cart"
	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/eligibility"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/shopspring/decimal"
)

// ItemView is one catalog card.
type ItemView struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Label     string               `json:"label"`
	Price     decimal.Decimal      `json:"price"`
	Trend     *int64               `json:"trend,omitempty"`
	Count     *int                 `json:"count,omitempty"`
	ImagePath string               `json:"imagePath"`
	Decision  eligibility.Decision `json:"eligibility"`
}

// CategoryView is one tab of the grid.
type CategoryView struct {
	Name  string     `json:"name"`
	Items []ItemView `json:"items"`
}

// LineView is one cart row priced from the live catalog. Missing is set when
// the item vanished from the latest snapshot; its price then reads zero.
type LineView struct {
	ItemID    int64           `json:"id"`
	Name      string          `json:"name"`
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
	Max       *int            `json:"max,omitempty"`
	Missing   bool            `json:"missing,omitempty"`
}

// CartView summarizes one cart.
type CartView struct {
	Lines    []LineView      `json:"lines"`
	Value    decimal.Decimal `json:"value"`
	Display  decimal.Decimal `json:"displayValue"`
	Weight   int64           `json:"weight"`
	InFlight bool            `json:"inFlight"`
}

// WalletView mirrors the player's balances.
type WalletView struct {
	Cash    decimal.Decimal  `json:"cash"`
	Bank    decimal.Decimal  `json:"bank"`
	Society *decimal.Decimal `json:"society,omitempty"`
}

// View is the full projection the presentation layer renders.
type View struct {
	SessionID      string                      `json:"sessionId"`
	Visible        bool                        `json:"visible"`
	Shop           *Shop                       `json:"shop,omitempty"`
	Mode           enums.ShopMode              `json:"mode"`
	CanToggle      bool                        `json:"canToggle"`
	CanRob         bool                        `json:"canRob"`
	Categories     []CategoryView              `json:"categories"`
	Buy            CartView                    `json:"buyCart"`
	Sell           CartView                    `json:"sellCart"`
	Wallets        WalletView                  `json:"wallets"`
	PaymentOptions []eligibility.PaymentOption `json:"paymentOptions"`
	Weight         string                      `json:"weight"`
	Notice         string                      `json:"notice,omitempty"`
}

// View projects the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		SessionID: s.id.String(),
		Visible:   s.visible,
		Mode:      s.mode,
		Buy:       s.cartView(s.buy, s.shopItems, enums.ShopModeBuying),
		Sell:      s.cartView(s.sell, s.inventory, enums.ShopModeSelling),
		Wallets: WalletView{
			Cash: s.resources.Wallets.Cash,
			Bank: s.resources.Wallets.Bank,
		},
		PaymentOptions: eligibility.PaymentOptions(s.checkoutState()),
		Weight:         eligibility.WeightDisplay(s.resources, s.buy.Weight()),
		Notice:         s.notice,
	}
	if s.resources.SocietyApplicable() {
		society := s.resources.Wallets.Society
		view.Wallets.Society = &society
	}
	if s.shop != nil {
		shop := *s.shop
		view.Shop = &shop
		view.CanToggle = shop.Toggleable()
		view.CanRob = shop.Robbable()
	}

	for _, category := range s.activeCatalog().Index().Categories() {
		items := make([]ItemView, 0, len(category.Items))
		for _, item := range category.Items {
			items = append(items, s.itemView(item))
		}
		view.Categories = append(view.Categories, CategoryView{Name: category.Name, Items: items})
	}
	return view
}

func (s *Session) itemView(item catalog.Item) ItemView {
	out := ItemView{
		ID:        item.ID,
		Name:      item.Name,
		Label:     item.Label,
		Price:     item.Price,
		Count:     item.Count,
		ImagePath: item.ImagePath,
		Decision:  s.evaluate(item, 1),
	}
	if trend, ok := item.PriceTrend(); ok {
		out.Trend = &trend
	}
	return out
}

func (s *Session) cartView(c *cart.Cart, source *catalog.Catalog, mode enums.ShopMode) CartView {
	display, _ := c.Recompute(source.Lookup)
	out := CartView{
		Lines:    make([]LineView, 0, c.Len()),
		Value:    c.Value(),
		Display:  display,
		Weight:   c.Weight(),
		InFlight: s.inFlight[mode],
	}
	for _, line := range c.Lines() {
		row := LineView{
			ItemID:    line.ItemID,
			Name:      line.Name,
			Label:     line.Name,
			Quantity:  line.Quantity,
			UnitPrice: decimal.Zero,
			Total:     decimal.Zero,
		}
		if item, ok := source.Lookup(line.ItemID); ok {
			row.Label = item.Label
			row.UnitPrice = item.Price
			row.Total = item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			row.Max = item.Count
		} else {
			row.Missing = true
		}
		out.Lines = append(out.Lines, row)
	}
	return out
}
