package store

import (
	"context"
	"time"

	"fundcore/internal/store/model"
)

// UnitOfWork defines a transaction scope. Repositories obtained from it run
// inside the transaction; nothing persists until Commit.
type UnitOfWork interface {
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction. Safe to call after Commit.
	Rollback() error

	// Accounts returns the account repository within this transaction.
	Accounts() AccountRepository
	// Funds returns the fund repository within this transaction.
	Funds() FundRepository
	// SharePrices returns the share-price repository within this transaction.
	SharePrices() SharePriceRepository
	// Orders returns the order repository within this transaction.
	Orders() OrderRepository
	// Rates returns the exchange-rate repository within this transaction.
	Rates() ExchangeRateRepository
	// Notifications returns the outbox repository within this transaction.
	Notifications() NotificationRepository
}

// Store is the entry point for database access. The direct repository
// accessors auto-commit each call; mutations that must be atomic go through
// Begin.
type Store interface {
	// Begin starts a new UnitOfWork (transaction).
	Begin(ctx context.Context) (UnitOfWork, error)
	// Close closes the store connection.
	Close() error

	Accounts() AccountRepository
	Funds() FundRepository
	SharePrices() SharePriceRepository
	Orders() OrderRepository
	Rates() ExchangeRateRepository
	Notifications() NotificationRepository
}

// AccountRepository handles account persistence. Balance is only written
// inside a placement or settlement UnitOfWork.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*model.AccountModel, error)
	Save(ctx context.Context, account *model.AccountModel) error
}

// FundRepository handles fund persistence. The engine only reads funds.
type FundRepository interface {
	FindByID(ctx context.Context, id int64) (*model.FundModel, error)
	List(ctx context.Context) ([]model.FundModel, error)
	Save(ctx context.Context, fund *model.FundModel) error
}

// SharePriceRepository handles the per-fund share price time series.
type SharePriceRepository interface {
	// FirstAfter returns the share price with the minimum effective_at
	// strictly after cutoff, ties broken by lowest id. Nil when no such
	// row exists yet.
	FirstAfter(ctx context.Context, fundID int64, cutoff time.Time) (*model.SharePriceModel, error)
	ListByFund(ctx context.Context, fundID int64) ([]model.SharePriceModel, error)
	Insert(ctx context.Context, price *model.SharePriceModel) error
}

// OrderRepository handles order persistence.
type OrderRepository interface {
	Insert(ctx context.Context, order *model.OrderModel) error
	Save(ctx context.Context, order *model.OrderModel) error
	FindByID(ctx context.Context, id int64) (*model.OrderModel, error)
	// ListPending returns up to limit pending orders, oldest placed_at
	// first, ties broken by lowest id.
	ListPending(ctx context.Context, limit int) ([]model.OrderModel, error)
	ListByAccount(ctx context.Context, accountID int64) ([]model.OrderModel, error)
}

// ExchangeRateRepository handles published currency rates.
type ExchangeRateRepository interface {
	// Latest returns the newest rate row for the currency, nil when the
	// currency has never been published.
	Latest(ctx context.Context, currency string) (*model.ExchangeRateModel, error)
	Insert(ctx context.Context, rate *model.ExchangeRateModel) error
}

// NotificationRepository is the outbox: Append is producer-side and happens
// inside the settlement UnitOfWork; the other two form the consumer
// contract used by the delivery sweeper.
type NotificationRepository interface {
	Append(ctx context.Context, rec *model.NotificationModel) error
	ListUndelivered(ctx context.Context, limit int) ([]model.NotificationModel, error)
	MarkDelivered(ctx context.Context, id int64) error
}
