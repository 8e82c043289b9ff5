package sqlite

import (
	"context"
	"errors"

	"fundcore/internal/store/model"

	"gorm.io/gorm"
)

// accountRepository implements the AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepo creates a new accountRepository.
func NewAccountRepo(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*model.AccountModel, error) {
	var account model.AccountModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Save(ctx context.Context, account *model.AccountModel) error {
	if account == nil {
		return errors.New("account cannot be nil")
	}
	return r.db.WithContext(ctx).Save(account).Error
}
