package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/shopoverlay/internal/catalog"
	"github.com/angelmondragon/shopoverlay/internal/host"
	"github.com/angelmondragon/shopoverlay/internal/receipts"
	"github.com/angelmondragon/shopoverlay/internal/resources"
	"github.com/angelmondragon/shopoverlay/internal/session"
	"github.com/angelmondragon/shopoverlay/pkg/db/models"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEffects struct {
	mu        sync.Mutex
	inventory []string
}

func (f *fakeEffects) RequestInventory(_ context.Context, shopID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory = append(f.inventory, shopID)
	return nil
}

func (f *fakeEffects) HideFrame(context.Context) error            { return nil }
func (f *fakeEffects) StartRobbery(context.Context, string) error { return nil }

type fakeTransport struct {
	purchaseFn func(ctx context.Context, req host.PurchaseRequest) (bool, error)
	sellFn     func(ctx context.Context, req host.SaleRequest) (bool, error)
	unitFn     func(name string, call int) (bool, error)

	purchases []host.PurchaseRequest
	units     []string
}

func (f *fakeTransport) PurchaseItems(ctx context.Context, req host.PurchaseRequest) (bool, error) {
	f.purchases = append(f.purchases, req)
	if f.purchaseFn != nil {
		return f.purchaseFn(ctx, req)
	}
	return true, nil
}

func (f *fakeTransport) SellItems(ctx context.Context, req host.SaleRequest) (bool, error) {
	if f.sellFn != nil {
		return f.sellFn(ctx, req)
	}
	return true, nil
}

func (f *fakeTransport) SellItem(_ context.Context, name, _ string) (bool, error) {
	f.units = append(f.units, name)
	if f.unitFn != nil {
		return f.unitFn(name, len(f.units))
	}
	return true, nil
}

type fakeRecorder struct {
	inputs []receipts.RecordInput
	err    error
}

func (f *fakeRecorder) Record(_ context.Context, input receipts.RecordInput) (*models.SettlementReceipt, error) {
	f.inputs = append(f.inputs, input)
	return &models.SettlementReceipt{}, f.err
}

type fakeObserver struct {
	outcomes []string
	fallback int
}

func (f *fakeObserver) Observe(kind, outcome string, _ time.Duration) {
	f.outcomes = append(f.outcomes, kind+":"+outcome)
}

func (f *fakeObserver) IncFallback() { f.fallback++ }

func intPtr(v int) *int { return &v }

type fixture struct {
	sess      *session.Session
	effects   *fakeEffects
	transport *fakeTransport
	recorder  *fakeRecorder
	observer  *fakeObserver
	svc       Service
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	fx := &fakeEffects{}
	sess, err := session.New(fx, logger.Nop(), session.KeyBindings{})
	require.NoError(t, err)

	ctx := context.Background()
	sess.SetVisible(ctx, true)
	sess.SetShop(ctx, &session.Shop{ID: "general", Label: "General Store", CanBuy: true, CanSell: true})
	sess.ReplaceCatalog(ctx, []catalog.Item{
		{ID: 1, Name: "water", Label: "Water", Price: decimal.NewFromInt(10), Weight: 500, Count: intPtr(3)},
	}, true)
	sess.ReplaceInventory(ctx, []catalog.Item{
		{ID: 10, Name: "fish", Label: "Fish", Price: decimal.NewFromInt(4), Weight: 200, Count: intPtr(2)},
		{ID: 11, Name: "ore", Label: "Ore", Price: decimal.NewFromInt(20), Weight: 1000, Count: intPtr(2)},
	}, true)
	sess.ReplaceResources(ctx, resources.Snapshot{
		Wallets:   resources.Wallets{Cash: decimal.NewFromInt(100), Bank: decimal.NewFromInt(5)},
		MaxWeight: 20000,
	})

	f := &fixture{
		sess:      sess,
		effects:   fx,
		transport: &fakeTransport{},
		recorder:  &fakeRecorder{},
		observer:  &fakeObserver{},
	}
	f.svc, err = NewService(sess, f.transport, f.recorder, f.observer, logger.Nop(), opts)
	require.NoError(t, err)
	return f
}

func (f *fixture) fillSellCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sess.SetMode(ctx, enums.ShopModeSelling))
	_, err := f.sess.AddItem(ctx, 10, 2)
	require.NoError(t, err)
	_, err = f.sess.AddItem(ctx, 11, 1)
	require.NoError(t, err)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	sess, err := session.New(&fakeEffects{}, logger.Nop(), session.KeyBindings{})
	require.NoError(t, err)

	_, err = NewService(nil, &fakeTransport{}, nil, nil, logger.Nop(), Options{})
	assert.Error(t, err)
	_, err = NewService(sess, nil, nil, nil, logger.Nop(), Options{})
	assert.Error(t, err)
	_, err = NewService(sess, &fakeTransport{}, nil, nil, nil, Options{})
	assert.Error(t, err)
	_, err = NewService(sess, &fakeTransport{}, nil, nil, logger.Nop(), Options{})
	assert.NoError(t, err)
}

func TestPurchaseAcceptedAppliesAndRecords(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.sess.AddItem(ctx, 1, 2)
	require.NoError(t, err)

	out, err := f.svc.Purchase(ctx, enums.PaymentMethodCash)
	require.NoError(t, err)

	assert.Equal(t, enums.SettlementOutcomeAccepted, out.Outcome)
	assert.Equal(t, 2, out.UnitsSettled)
	require.Len(t, f.transport.purchases, 1)
	assert.Equal(t, "cash", f.transport.purchases[0].Currency)
	assert.Equal(t, "general", f.transport.purchases[0].Shop.ID)

	view := f.sess.View()
	assert.Empty(t, view.Buy.Lines)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, 1, *view.Categories[0].Items[0].Count)
	assert.False(t, f.sess.InFlight(enums.ShopModeBuying))

	require.Len(t, f.recorder.inputs, 1)
	assert.Equal(t, f.sess.ID(), f.recorder.inputs[0].SessionID)
	assert.Equal(t, enums.PaymentMethodCash, f.recorder.inputs[0].Method)
	assert.True(t, f.recorder.inputs[0].Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, []string{"purchase:accepted"}, f.observer.outcomes)
}

func TestPurchaseBankSentAsCard(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	f.sess.ReplaceResources(ctx, resources.Snapshot{
		Wallets:   resources.Wallets{Cash: decimal.NewFromInt(5), Bank: decimal.NewFromInt(100)},
		MaxWeight: 20000,
	})
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, enums.PaymentMethodBank)
	require.NoError(t, err)
	assert.Equal(t, "card", f.transport.purchases[0].Currency)
}

func TestPurchaseRejectedKeepsCart(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	f.transport.purchaseFn = func(context.Context, host.PurchaseRequest) (bool, error) { return false, nil }

	out, err := f.svc.Purchase(ctx, enums.PaymentMethodCash)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSettlement))
	assert.Equal(t, enums.SettlementOutcomeRejected, out.Outcome)

	view := f.sess.View()
	require.Len(t, view.Buy.Lines, 1)
	assert.Equal(t, 3, *view.Categories[0].Items[0].Count)
	assert.Equal(t, "The purchase was declined.", view.Notice)
	assert.False(t, f.sess.InFlight(enums.ShopModeBuying))
}

func TestPurchaseTransportFailureKeepsCart(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)
	f.transport.purchaseFn = func(context.Context, host.PurchaseRequest) (bool, error) {
		return false, errors.New("connection refused")
	}

	out, err := f.svc.Purchase(ctx, enums.PaymentMethodCash)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, enums.SettlementOutcomeFailed, out.Outcome)
	assert.Len(t, f.sess.View().Buy.Lines, 1)

	require.Len(t, f.recorder.inputs, 1)
	assert.EqualError(t, f.recorder.inputs[0].Err, "connection refused")
}

func TestPurchaseRefusedBeforeTransport(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, enums.PaymentMethodSociety)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotEligible))
	assert.Empty(t, f.transport.purchases)
	assert.Empty(t, f.recorder.inputs)
}

func TestPurchaseSurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, Options{SettleTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	f.transport.purchaseFn = func(settleCtx context.Context, _ host.PurchaseRequest) (bool, error) {
		cancel()
		if settleCtx.Err() != nil {
			return false, settleCtx.Err()
		}
		_, hasDeadline := settleCtx.Deadline()
		return hasDeadline, nil
	}

	out, err := f.svc.Purchase(ctx, enums.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, enums.SettlementOutcomeAccepted, out.Outcome)
}

func TestPurchaseReceiptFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture(t, Options{})
	f.recorder.err = errors.New("disk full")
	ctx := context.Background()
	_, err := f.sess.AddItem(ctx, 1, 1)
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, enums.PaymentMethodCash)
	assert.NoError(t, err)
}

func TestSaleAcceptedDropsEmptyRows(t *testing.T) {
	f := newFixture(t, Options{SaleFallback: true})
	f.fillSellCart(t)

	var sent host.SaleRequest
	f.transport.sellFn = func(_ context.Context, req host.SaleRequest) (bool, error) {
		sent = req
		return true, nil
	}

	out, err := f.svc.Sale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "general", sent.Shop)
	assert.Len(t, sent.Items, 2)
	assert.False(t, out.FallbackUsed)
	assert.Equal(t, 3, out.UnitsSettled)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(28)))

	view := f.sess.View()
	require.Len(t, view.Categories, 1)
	items := view.Categories[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, int64(11), items[0].ID)
	assert.Equal(t, 1, *items[0].Count)
	assert.Equal(t, "Sold items for $28.00.", view.Notice)
	assert.Empty(t, view.Sell.Lines)
}

func TestSaleFallsBackToUnitsWhenEndpointMissing(t *testing.T) {
	f := newFixture(t, Options{SaleFallback: true})
	f.fillSellCart(t)
	inventoryRequests := len(f.effects.inventory)

	f.transport.sellFn = func(context.Context, host.SaleRequest) (bool, error) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, host.ErrEndpointUnavailable, "sellItems not registered")
	}

	out, err := f.svc.Sale(context.Background())
	require.NoError(t, err)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, 3, out.UnitsSettled)
	assert.Equal(t, []string{"fish", "fish", "ore"}, f.transport.units)
	assert.Equal(t, 1, f.observer.fallback)
	assert.Len(t, f.effects.inventory, inventoryRequests+1)
	assert.Empty(t, f.sess.View().Sell.Lines)
}

func TestSaleFallbackAbortsOnFirstRefusal(t *testing.T) {
	f := newFixture(t, Options{SaleFallback: true})
	f.fillSellCart(t)

	f.transport.sellFn = func(context.Context, host.SaleRequest) (bool, error) {
		return false, host.ErrEndpointUnavailable
	}
	f.transport.unitFn = func(_ string, call int) (bool, error) { return call < 2, nil }

	out, err := f.svc.Sale(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSettlement))
	assert.Equal(t, enums.SettlementOutcomeRejected, out.Outcome)
	assert.Equal(t, 1, out.UnitsSettled)
	assert.Len(t, f.transport.units, 2)

	view := f.sess.View()
	assert.Len(t, view.Sell.Lines, 2)
	assert.Equal(t, "Selling the items failed.", view.Notice)
	assert.False(t, f.sess.InFlight(enums.ShopModeSelling))
}

func TestSaleWithoutFallbackReportsFailure(t *testing.T) {
	f := newFixture(t, Options{SaleFallback: false})
	f.fillSellCart(t)

	f.transport.sellFn = func(context.Context, host.SaleRequest) (bool, error) {
		return false, host.ErrEndpointUnavailable
	}

	out, err := f.svc.Sale(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, enums.SettlementOutcomeFailed, out.Outcome)
	assert.Empty(t, f.transport.units)
	assert.Len(t, f.sess.View().Sell.Lines, 2)
}

func TestSaleOtherErrorsDoNotFallBack(t *testing.T) {
	f := newFixture(t, Options{SaleFallback: true})
	f.fillSellCart(t)

	f.transport.sellFn = func(context.Context, host.SaleRequest) (bool, error) {
		return false, errors.New("timeout")
	}

	out, err := f.svc.Sale(context.Background())
	require.Error(t, err)
	assert.False(t, out.FallbackUsed)
	assert.Empty(t, f.transport.units)
}
