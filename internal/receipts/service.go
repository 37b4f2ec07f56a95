// Package receipts keeps an audit trail of settlement attempts.
package receipts

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/shopoverlay/pkg/db"
	"github.com/angelmondragon/shopoverlay/pkg/db/models"
	dbtypes "github.com/angelmondragon/shopoverlay/pkg/db/types"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopoverlay/pkg/errors"
	"github.com/angelmondragon/shopoverlay/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines operations that record and read receipts.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.SettlementReceipt, error)
	ListRecent(ctx context.Context, shopID string, params pagination.Params) (*ListResult, error)
}

// ListResult is one page of receipts, newest first. Cursor is empty on the
// last page.
type ListResult struct {
	Items  []models.SettlementReceipt
	Cursor string
}

// RecordInput captures one settlement attempt.
type RecordInput struct {
	SessionID    uuid.UUID
	ShopID       string
	Kind         enums.SettlementKind
	Method       enums.PaymentMethod
	Outcome      enums.SettlementOutcome
	Total        decimal.Decimal
	Lines        dbtypes.ReceiptLines
	FallbackUsed bool
	UnitsSettled int
	Err          error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a receipts service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipts repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) (*models.SettlementReceipt, error) {
	if input.SessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.ShopID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid settlement kind %q", input.Kind))
	}
	if !input.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid settlement outcome %q", input.Outcome))
	}
	if input.UnitsSettled < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "units settled cannot be negative")
	}

	receipt := &models.SettlementReceipt{
		ID:           uuid.New(),
		SessionID:    input.SessionID,
		ShopID:       input.ShopID,
		Kind:         input.Kind,
		Outcome:      input.Outcome,
		Total:        input.Total.Round(2),
		Lines:        input.Lines,
		FallbackUsed: input.FallbackUsed,
		UnitsSettled: input.UnitsSettled,
		CreatedAt:    s.now().UTC(),
	}
	if receipt.Lines == nil {
		receipt.Lines = dbtypes.ReceiptLines{}
	}
	if input.Kind == enums.SettlementKindPurchase {
		if !input.Method.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase requires a payment method")
		}
		method := input.Method
		receipt.Method = &method
	}
	if input.Err != nil {
		msg := input.Err.Error()
		receipt.Error = &msg
	}

	if err := s.repo.Create(ctx, receipt); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "settlement receipt already recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store settlement receipt")
	}
	return receipt, nil
}

func (s *service) ListRecent(ctx context.Context, shopID string, params pagination.Params) (*ListResult, error) {
	filter := ListFilter{
		ShopID: shopID,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		filter.Cursor = cursor
	}

	rows, err := s.repo.ListRecent(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlement receipts")
	}

	rows, next := pagination.Trim(rows, params.Limit)
	return &ListResult{Items: rows, Cursor: next}, nil
}
