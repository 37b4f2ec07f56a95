package receipts

import (
	"context"

	"github.com/angelmondragon/shopoverlay/internal/repo"
	"github.com/angelmondragon/shopoverlay/pkg/db/models"
	"github.com/angelmondragon/shopoverlay/pkg/pagination"
	"gorm.io/gorm"
)

// Repository manages persistence for settlement receipts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, receipt *models.SettlementReceipt) error
	ListRecent(ctx context.Context, filter ListFilter) ([]models.SettlementReceipt, error)
}

// ListFilter narrows ListRecent. Zero values mean no filter. Cursor is the
// first row of the requested page.
type ListFilter struct {
	ShopID string
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	repo.Base
}

// NewRepository returns a receipts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, receipt *models.SettlementReceipt) error {
	return r.DB(ctx).Create(receipt).Error
}

func (r *repository) ListRecent(ctx context.Context, filter ListFilter) ([]models.SettlementReceipt, error) {
	query := r.DB(ctx).Order("created_at DESC").Order("id DESC")
	if filter.ShopID != "" {
		query = query.Where("shop_id = ?", filter.ShopID)
	}
	if filter.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id <= ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var out []models.SettlementReceipt
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
