package sqlite

import (
	"context"
	"errors"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// fundRepository implements the FundRepository interface.
type fundRepository struct {
	db *gorm.DB
}

// NewFundRepo creates a new fundRepository.
func NewFundRepo(db *gorm.DB) *fundRepository {
	return &fundRepository{db: db}
}

func (r *fundRepository) FindByID(ctx context.Context, id int64) (*model.FundModel, error) {
	var fund model.FundModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&fund).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *fundRepository) List(ctx context.Context) ([]model.FundModel, error) {
	var funds []model.FundModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&funds).Error; err != nil {
		return nil, err
	}
	return funds, nil
}

func (r *fundRepository) Save(ctx context.Context, fund *model.FundModel) error {
	if fund == nil {
		return errors.New("fund cannot be nil")
	}
	return r.db.WithContext(ctx).Save(fund).Error
}
