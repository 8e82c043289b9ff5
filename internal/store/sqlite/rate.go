package sqlite

import (
	"context"
	"errors"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// rateRepository implements the ExchangeRateRepository interface.
type rateRepository struct {
	db *gorm.DB
}

// NewRateRepo creates a new rateRepository.
func NewRateRepo(db *gorm.DB) *rateRepository {
	return &rateRepository{db: db}
}

// Latest returns the newest published rate for the currency.
func (r *rateRepository) Latest(ctx context.Context, currency string) (*model.ExchangeRateModel, error) {
	var rate model.ExchangeRateModel
	err := r.db.WithContext(ctx).
		Where("currency = ?", currency).
		Order("published_at DESC, id DESC").
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *rateRepository) Insert(ctx context.Context, rate *model.ExchangeRateModel) error {
	if rate == nil {
		return errors.New("rate cannot be nil")
	}
	return r.db.WithContext(ctx).Create(rate).Error
}
