package sqlite

import (
	"context"
	"errors"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepo creates a new orderRepository.
func NewOrderRepo(db *gorm.DB) *orderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Insert(ctx context.Context, order *model.OrderModel) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) Save(ctx context.Context, order *model.OrderModel) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*model.OrderModel, error) {
	var order model.OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListPending returns up to limit pending orders, oldest first.
func (r *orderRepository) ListPending(ctx context.Context, limit int) ([]model.OrderModel, error) {
	var orders []model.OrderModel
	if limit <= 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.OrderStatusPending).
		Order("placed_at ASC, id ASC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) ListByAccount(ctx context.Context, accountID int64) ([]model.OrderModel, error) {
	var orders []model.OrderModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
