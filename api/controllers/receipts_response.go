package controllers

import (
	"time"

	"github.com/angelmondragon/shopoverlay/pkg/db/models"
	dbtypes "github.com/angelmondragon/shopoverlay/pkg/db/types"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type receiptListResponse struct {
	Items      []receiptResponse `json:"items"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

type receiptResponse struct {
	ID           uuid.UUID               `json:"id"`
	SessionID    uuid.UUID               `json:"sessionId"`
	ShopID       string                  `json:"shopId"`
	Kind         enums.SettlementKind    `json:"kind"`
	Method       *enums.PaymentMethod    `json:"method,omitempty"`
	Outcome      enums.SettlementOutcome `json:"outcome"`
	Total        decimal.Decimal         `json:"total"`
	Lines        dbtypes.ReceiptLines    `json:"lines"`
	FallbackUsed bool                    `json:"fallbackUsed"`
	UnitsSettled int                     `json:"unitsSettled"`
	Error        *string                 `json:"error,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
}

func newReceiptResponse(rec models.SettlementReceipt) receiptResponse {
	return receiptResponse{
		ID:           rec.ID,
		SessionID:    rec.SessionID,
		ShopID:       rec.ShopID,
		Kind:         rec.Kind,
		Method:       rec.Method,
		Outcome:      rec.Outcome,
		Total:        rec.Total,
		Lines:        rec.Lines,
		FallbackUsed: rec.FallbackUsed,
		UnitsSettled: rec.UnitsSettled,
		Error:        rec.Error,
		CreatedAt:    rec.CreatedAt,
	}
}
