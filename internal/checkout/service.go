// Package checkout settles overlay carts with the game client.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/shopoverlay/internal/cart"
	"github.com/angelmondragon/shopoverlay/internal/host"
	"github.com/angelmondragon/shopoverlay/internal/receipts"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/db/models"
	dbtypes "github.com/angelmondragon/shopoverlay/pkg/db/types"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultSettleTimeout = 30 * time.Second

// Transport carries settlement requests to the game client.
type Transport interface {
	PurchaseItems(ctx context.Context, req host.PurchaseRequest) (bool, error)
	SellItems(ctx context.Context, req host.SaleRequest) (bool, error)
	SellItem(ctx context.Context, name, shopID string) (bool, error)
}

// Settler is the part of the session a checkout drives.
type Settler interface {
	ID() uuid.UUID
	BeginPurchase(method enums.PaymentMethod) (*session.Settlement, error)
	BeginSale() (*session.Settlement, error)
	Complete(ctx context.Context, st *session.Settlement, res session.Result)
}

type receiptRecorder interface {
	Record(ctx context.Context, input receipts.RecordInput) (*models.SettlementReceipt, error)
}

type settlementObserver interface {
	Observe(kind, outcome string, duration time.Duration)
	IncFallback()
}

// Service runs purchases and sales end to end.
type Service interface {
	Purchase(ctx context.Context, method enums.PaymentMethod) (*Outcome, error)
	Sale(ctx context.Context) (*Outcome, error)
}

// Outcome describes a finished settlement.
type Outcome struct {
	Kind         enums.SettlementKind    `json:"kind"`
	Method       enums.PaymentMethod     `json:"method,omitempty"`
	Outcome      enums.SettlementOutcome `json:"outcome"`
	ShopID       string                  `json:"shopId"`
	Lines        []cart.Line             `json:"lines"`
	Total        decimal.Decimal         `json:"total"`
	FallbackUsed bool                    `json:"fallbackUsed"`
	UnitsSettled int                     `json:"unitsSettled"`
	Notice       string                  `json:"notice,omitempty"`
}

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	SettleTimeout time.Duration
	SaleFallback  bool
}

type service struct {
	session   Settler
	transport Transport
	receipts  receiptRecorder
	metrics   settlementObserver
	logg      *logger.Logger
	opts      Options
	now       func() time.Time
}

// NewService builds the checkout service. Receipts and metrics are optional.
func NewService(sess Settler, transport Transport, recorder receiptRecorder, metrics settlementObserver, logg *logger.Logger, opts Options) (Service, error) {
	if sess == nil {
		return nil, fmt.Errorf("session required")
	}
	if transport == nil {
		return nil, fmt.Errorf("transport required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = defaultSettleTimeout
	}
	return &service{
		session:   sess,
		transport: transport,
		receipts:  recorder,
		metrics:   metrics,
		logg:      logg,
		opts:      opts,
		now:       time.Now,
	}, nil
}

// Purchase settles the buy-cart with method. A refusal from the host leaves
// the cart as it was and returns a SETTLEMENT_REJECTED error.
func (s *service) Purchase(ctx context.Context, method enums.PaymentMethod) (*Outcome, error) {
	st, err := s.session.BeginPurchase(method)
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"shop_id": st.Shop.ID,
		"method":  method.String(),
		"total":   st.Total.StringFixed(2),
	})
	s.logg.Info(ctx, "checkout.purchase_started")

	started := s.now()
	settleCtx, cancel := s.settleContext(ctx)
	defer cancel()

	accepted, sendErr := s.transport.PurchaseItems(settleCtx, host.PurchaseRequest{
		Items:    st.Lines,
		Shop:     st.Shop,
		Currency: method.HostCurrency(),
	})

	out := newOutcome(st)
	res := session.Result{Accepted: sendErr == nil && accepted}
	switch {
	case sendErr != nil:
		out.Outcome = enums.SettlementOutcomeFailed
		res.Notice = "Purchase failed: the game client did not respond."
	case !accepted:
		out.Outcome = enums.SettlementOutcomeRejected
		res.Notice = "The purchase was declined."
	default:
		out.Outcome = enums.SettlementOutcomeAccepted
		out.UnitsSettled = totalUnits(st.Lines)
	}
	out.Notice = res.Notice

	s.session.Complete(ctx, st, res)
	s.finish(ctx, out, sendErr, s.now().Sub(started))
	return out, settlementError(out, sendErr)
}

func (s *service) settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opts.SettleTimeout)
}

func (s *service) finish(ctx context.Context, out *Outcome, sendErr error, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.Observe(out.Kind.String(), out.Outcome.String(), elapsed)
		if out.FallbackUsed {
			s.metrics.IncFallback()
		}
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"outcome":       out.Outcome.String(),
		"fallback":      out.FallbackUsed,
		"units_settled": out.UnitsSettled,
		"duration_ms":   elapsed.Milliseconds(),
	})
	switch out.Outcome {
	case enums.SettlementOutcomeAccepted:
		s.logg.Info(ctx, "checkout.settled")
	case enums.SettlementOutcomeRejected:
		s.logg.Warn(ctx, "checkout.rejected")
	default:
		s.logg.Error(ctx, "checkout.failed", sendErr)
	}

	if s.receipts == nil {
		return
	}
	lines := make(dbtypes.ReceiptLines, 0, len(out.Lines))
	for _, line := range out.Lines {
		lines = append(lines, dbtypes.ReceiptLine{ItemID: line.ItemID, Name: line.Name, Quantity: line.Quantity})
	}
	if _, err := s.receipts.Record(ctx, receipts.RecordInput{
		SessionID:    s.session.ID(),
		ShopID:       out.ShopID,
		Kind:         out.Kind,
		Method:       out.Method,
		Outcome:      out.Outcome,
		Total:        out.Total,
		Lines:        lines,
		FallbackUsed: out.FallbackUsed,
		UnitsSettled: out.UnitsSettled,
		Err:          sendErr,
	}); err != nil {
		s.logg.Error(ctx, "checkout.receipt_failed", err)
	}
}

func newOutcome(st *session.Settlement) *Outcome {
	return &Outcome{
		Kind:   st.Kind,
		Method: st.Method,
		ShopID: st.Shop.ID,
		Lines:  st.Lines,
		Total:  st.Total,
	}
}

func settlementError(out *Outcome, sendErr error) error {
	switch out.Outcome {
	case enums.SettlementOutcomeAccepted:
		return nil
	case enums.SettlementOutcomeRejected:
		return pkgerrors.New(pkgerrors.CodeSettlement, out.Notice).WithDetails(out)
	}
	if sendErr == nil {
		return pkgerrors.New(pkgerrors.CodeSettlement, out.Notice)
	}
	if pkgerrors.As(sendErr) != nil {
		return sendErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, sendErr, out.Notice)
}

func totalUnits(lines []cart.Line) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}
