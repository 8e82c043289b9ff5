package sqlite

import (
	"context"
	"errors"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// notificationRepository implements the NotificationRepository interface.
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepo creates a new notificationRepository.
func NewNotificationRepo(db *gorm.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Append(ctx context.Context, rec *model.NotificationModel) error {
	if rec == nil {
		return errors.New("notification cannot be nil")
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *notificationRepository) ListUndelivered(ctx context.Context, limit int) ([]model.NotificationModel, error) {
	var recs []model.NotificationModel
	if limit <= 0 {
		limit = 10
	}
	if err := r.db.WithContext(ctx).
		Where("delivered = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.NotificationModel{}).
		Where("id = ?", id).
		Update("delivered", true).Error
}
