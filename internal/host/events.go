package host

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/angelmondragon/shopoverlay/internal/session"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/angelmondragon/shopoverlay/pkg/validate"
	"github.com/shopspring/decimal"
)

const (
	ActionSetVisible        = "setVisible"
	ActionSetCurrentShop    = "setCurrentShop"
	ActionSetShopItems      = "setShopItems"
	ActionSetInventoryItems = "setInventoryItems"
	ActionSetSelfData       = "setSelfData"
)

// Event is one push from the game client, shaped like an NUI message.
type Event struct {
	Action string          `json:"action" validate:"required"`
	Data   json.RawMessage `json:"data"`
}

// ItemPayload is a catalog or inventory row as the game client sends it.
type ItemPayload struct {
	ID        int64            `json:"id" validate:"gte=1"`
	Name      string           `json:"name" validate:"required"`
	Label     string           `json:"label"`
	Price     decimal.Decimal  `json:"price"`
	BasePrice *decimal.Decimal `json:"basePrice,omitempty"`
	Weight    int64            `json:"weight" validate:"gte=0"`
	Count     *int             `json:"count,omitempty" validate:"omitempty,gte=0"`
	ImagePath string           `json:"imagePath"`
	Category  string           `json:"category,omitempty"`
	License   string           `json:"license,omitempty"`
	Jobs      map[string]int   `json:"jobs,omitempty"`
}

// ShopPayload is the setCurrentShop body.
type ShopPayload struct {
	ID       string `json:"id" validate:"required"`
	Label    string `json:"label"`
	Location int    `json:"location"`
	CanBuy   bool   `json:"canBuy"`
	CanSell  bool   `json:"canSell"`
	CanRob   *bool  `json:"canRob,omitempty"`
}

// MoneyPayload carries the three wallets with the client's capitalized keys.
type MoneyPayload struct {
	Cash    decimal.Decimal `json:"Cash"`
	Bank    decimal.Decimal `json:"Bank"`
	Society decimal.Decimal `json:"Society"`
}

// JobPayload identifies the player's job.
type JobPayload struct {
	Name  string `json:"name"`
	Grade int    `json:"grade" validate:"gte=0"`
}

// SelfPayload is the setSelfData body.
type SelfPayload struct {
	Money     MoneyPayload    `json:"money"`
	Weight    int64           `json:"weight" validate:"gte=0"`
	MaxWeight int64           `json:"maxWeight" validate:"gte=0"`
	Licenses  map[string]bool `json:"licenses"`
	Job       JobPayload      `json:"job"`
}

// Item converts the payload into a catalog item.
func (p ItemPayload) Item() catalog.Item {
	return catalog.Item{
		ID:        p.ID,
		Name:      p.Name,
		Label:     p.Label,
		Price:     p.Price,
		BasePrice: p.BasePrice,
		Weight:    p.Weight,
		Count:     p.Count,
		ImagePath: p.ImagePath,
		Category:  p.Category,
		License:   p.License,
		Jobs:      p.Jobs,
	}
}

// Shop converts the payload into the session shop context.
func (p ShopPayload) Shop() session.Shop {
	return session.Shop{
		ID:       p.ID,
		Label:    p.Label,
		Location: p.Location,
		CanBuy:   p.CanBuy,
		CanSell:  p.CanSell,
		CanRob:   p.CanRob,
	}
}

// Snapshot converts the payload into a resource snapshot. Negative wallets
// are floored at zero.
func (p SelfPayload) Snapshot() resources.Snapshot {
	return resources.Snapshot{
		Wallets: resources.Wallets{
			Cash:    nonNegative(p.Money.Cash),
			Bank:    nonNegative(p.Money.Bank),
			Society: nonNegative(p.Money.Society),
		},
		Weight:    p.Weight,
		MaxWeight: p.MaxWeight,
		Licenses:  p.Licenses,
		Job:       resources.Job{Name: p.Job.Name, Grade: p.Job.Grade},
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Dispatcher applies host pushes to a session.
type Dispatcher struct {
	session *session.Session
	logg    *logger.Logger
}

// NewDispatcher binds a dispatcher to sess.
func NewDispatcher(sess *session.Session, logg *logger.Logger) (*Dispatcher, error) {
	if sess == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Dispatcher{session: sess, logg: logg}, nil
}

// Dispatch decodes, validates and applies one event. An invalid payload is
// rejected whole and leaves the session untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) error {
	if err := validate.Struct(evt); err != nil {
		return err
	}
	ctx = d.logg.WithField(ctx, "action", evt.Action)
	present := !isNull(evt.Data)

	switch evt.Action {
	case ActionSetVisible:
		var visible bool
		if err := decode(evt.Data, &visible); err != nil {
			return err
		}
		d.session.SetVisible(ctx, visible)

	case ActionSetCurrentShop:
		if !present {
			d.session.SetShop(ctx, nil)
			break
		}
		var payload ShopPayload
		if err := decodeValid(evt.Data, &payload); err != nil {
			return err
		}
		shop := payload.Shop()
		d.session.SetShop(ctx, &shop)

	case ActionSetShopItems:
		items, err := decodeItems(evt.Data, present)
		if err != nil {
			return err
		}
		d.session.ReplaceCatalog(ctx, items, present)

	case ActionSetInventoryItems:
		items, err := decodeItems(evt.Data, present)
		if err != nil {
			return err
		}
		d.session.ReplaceInventory(ctx, items, present)

	case ActionSetSelfData:
		if !present {
			return pkgerrors.New(pkgerrors.CodeValidation, "self data is required")
		}
		var payload SelfPayload
		if err := decodeValid(evt.Data, &payload); err != nil {
			return err
		}
		d.session.ReplaceResources(ctx, payload.Snapshot())

	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown host action").
			WithDetails(map[string]any{"action": evt.Action})
	}

	d.logg.Debug(ctx, "host.event_applied")
	return nil
}

func decodeItems(raw json.RawMessage, present bool) ([]catalog.Item, error) {
	if !present {
		return nil, nil
	}
	var payload []ItemPayload
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	items := make([]catalog.Item, 0, len(payload))
	for i := range payload {
		if err := validate.Struct(payload[i]); err != nil {
			return nil, err
		}
		items = append(items, payload[i].Item())
	}
	return items, nil
}

func decodeValid(raw json.RawMessage, dest any) error {
	if err := decode(raw, dest); err != nil {
		return err
	}
	return validate.Struct(dest)
}

func decode(raw json.RawMessage, dest any) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event payload")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
