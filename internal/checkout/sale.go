package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/shopoverlay/internal/host"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
)

// Sale settles the sell-cart. Hosts without sellItems are served one
// sellItem call per unit; the first refused unit stops the run.
func (s *service) Sale(ctx context.Context) (*Outcome, error) {
	st, err := s.session.BeginSale()
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"shop_id": st.Shop.ID,
		"total":   st.Total.StringFixed(2),
	})
	s.logg.Info(ctx, "checkout.sale_started")

	started := s.now()
	settleCtx, cancel := s.settleContext(ctx)
	defer cancel()

	out := newOutcome(st)
	accepted, sendErr := s.transport.SellItems(settleCtx, host.SaleRequest{Items: st.Lines, Shop: st.Shop.ID})
	if sendErr != nil && s.opts.SaleFallback && errors.Is(sendErr, host.ErrEndpointUnavailable) {
		s.logg.Warn(ctx, "checkout.sale_fallback")
		out.FallbackUsed = true
		accepted, out.UnitsSettled, sendErr = s.sellUnits(settleCtx, st)
	} else if sendErr == nil && accepted {
		out.UnitsSettled = totalUnits(st.Lines)
	}

	res := session.Result{Accepted: sendErr == nil && accepted}
	switch {
	case sendErr != nil:
		out.Outcome = enums.SettlementOutcomeFailed
		res.Notice = "Selling the items failed."
	case !accepted:
		out.Outcome = enums.SettlementOutcomeRejected
		res.Notice = "Selling the items failed."
	default:
		out.Outcome = enums.SettlementOutcomeAccepted
		res.Notice = fmt.Sprintf("Sold items for $%s.", st.Total.StringFixed(2))
	}
	// Per-unit sales may have moved some items already, so the host's
	// inventory is the only reliable count afterwards.
	res.RefreshInventory = out.FallbackUsed
	out.Notice = res.Notice

	s.session.Complete(ctx, st, res)
	s.finish(ctx, out, sendErr, s.now().Sub(started))
	return out, settlementError(out, sendErr)
}

func (s *service) sellUnits(ctx context.Context, st *session.Settlement) (bool, int, error) {
	sold := 0
	for _, unit := range st.Units {
		for i := 0; i < unit.Quantity; i++ {
			ok, err := s.transport.SellItem(ctx, unit.Name, st.Shop.ID)
			if err != nil {
				return false, sold, err
			}
			if !ok {
				return false, sold, nil
			}
			sold++
		}
	}
	return true, sold, nil
}
