package sqlite

import (
	"context"
	"errors"
	"time"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// sharePriceRepository implements the SharePriceRepository interface.
type sharePriceRepository struct {
	db *gorm.DB
}

// NewSharePriceRepo creates a new sharePriceRepository.
func NewSharePriceRepo(db *gorm.DB) *sharePriceRepository {
	return &sharePriceRepository{db: db}
}

// FirstAfter finds the earliest share price strictly after cutoff.
// Equal timestamps resolve to the lowest id so settlement is deterministic.
func (r *sharePriceRepository) FirstAfter(ctx context.Context, fundID int64, cutoff time.Time) (*model.SharePriceModel, error) {
	var price model.SharePriceModel
	err := r.db.WithContext(ctx).
		Where("fund_id = ? AND effective_at > ?", fundID, cutoff).
		Order("effective_at ASC, id ASC").
		First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *sharePriceRepository) ListByFund(ctx context.Context, fundID int64) ([]model.SharePriceModel, error) {
	var prices []model.SharePriceModel
	if err := r.db.WithContext(ctx).
		Where("fund_id = ?", fundID).
		Order("effective_at DESC, id DESC").
		Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *sharePriceRepository) Insert(ctx context.Context, price *model.SharePriceModel) error {
	if price == nil {
		return errors.New("share price cannot be nil")
	}
	return r.db.WithContext(ctx).Create(price).Error
}
