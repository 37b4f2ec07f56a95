package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/angelmondragon/shopoverlay/pkg/db/types"
	"github.com/angelmondragon/shopoverlay/pkg/enums"
	"github.com/angelmondragon/shopoverlay/pkg/pagination"
)

// SettlementReceipt records one checkout round-trip with the game client,
// whatever its outcome.
type SettlementReceipt struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	SessionID    uuid.UUID               `gorm:"column:session_id;type:uuid;not null"`
	ShopID       string                  `gorm:"column:shop_id;not null"`
	Kind         enums.SettlementKind    `gorm:"column:kind;not null"`
	Method       *enums.PaymentMethod    `gorm:"column:method"`
	Outcome      enums.SettlementOutcome `gorm:"column:outcome;not null"`
	Total        decimal.Decimal         `gorm:"column:total;type:numeric(14,2);not null"`
	Lines        dbtypes.ReceiptLines    `gorm:"column:lines;type:text;not null"`
	FallbackUsed bool                    `gorm:"column:fallback_used;not null;default:false"`
	UnitsSettled int                     `gorm:"column:units_settled;not null;default:0"`
	Error        *string                 `gorm:"column:error"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table name used by the migrations.
func (SettlementReceipt) TableName() string {
	return "settlement_receipts"
}

// PageKey positions the receipt in newest-first listings.
func (r SettlementReceipt) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}
