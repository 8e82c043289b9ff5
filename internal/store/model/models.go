package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus int

const (
	OrderStatusPending  OrderStatus = 0
	OrderStatusSettled  OrderStatus = 1
	OrderStatusCanceled OrderStatus = 2
)

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusSettled || s == OrderStatusCanceled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusSettled:
		return "SETTLED"
	case OrderStatusCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

type FeePolicy int

const (
	// FeePolicyNormal collects the trading fee at settlement time.
	FeePolicyNormal FeePolicy = 0
	// FeePolicyPrepay collects the trading fee up front at order placement.
	FeePolicyPrepay FeePolicy = 1
)

// BaseCurrency is the unit account balances and order amounts are kept in.
const BaseCurrency = "usd"

type AccountModel struct {
	ID                int64           `gorm:"column:id;primaryKey"`
	Username          string          `gorm:"column:username;uniqueIndex;size:63"`
	FirstName         string          `gorm:"column:first_name;size:63"`
	LastName          string          `gorm:"column:last_name;size:63"`
	Email             string          `gorm:"column:email;uniqueIndex;size:127"`
	Balance           decimal.Decimal `gorm:"column:balance;type:TEXT"`
	IsAgreementSigned bool            `gorm:"column:is_agreement_signed"`
	IsAdmin           bool            `gorm:"column:is_admin"`
	CreatedAt         time.Time       `gorm:"column:created_at"`
}

func (AccountModel) TableName() string { return "accounts" }

type FundModel struct {
	ID         int64           `gorm:"column:id;primaryKey"`
	Name       string          `gorm:"column:name;size:255"`
	FeePolicy  FeePolicy       `gorm:"column:fee_policy"`
	TradingFee decimal.Decimal `gorm:"column:trading_fee;type:TEXT"`
	Prospectus string          `gorm:"column:prospectus"`
}

func (FundModel) TableName() string { return "funds" }

type SharePriceModel struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	FundID      int64           `gorm:"column:fund_id;index"`
	Value       decimal.Decimal `gorm:"column:value;type:TEXT"`
	EffectiveAt time.Time       `gorm:"column:effective_at;index"`
}

func (SharePriceModel) TableName() string { return "share_prices" }

// OrderModel: Amount is the requested USD-equivalent amount; it keeps that
// meaning after settlement. SharesBought stays zero unless the order settles.
type OrderModel struct {
	ID           int64           `gorm:"column:id;primaryKey"`
	AccountID    int64           `gorm:"column:account_id;index"`
	FundID       int64           `gorm:"column:fund_id;index"`
	Amount       decimal.Decimal `gorm:"column:amount;type:TEXT"`
	SharesBought decimal.Decimal `gorm:"column:shares_bought;type:TEXT"`
	Status       OrderStatus     `gorm:"column:status;index"`
	PlacedAt     time.Time       `gorm:"column:placed_at;index"`
	SettledAt    *time.Time      `gorm:"column:settled_at"`
}

func (OrderModel) TableName() string { return "orders" }

// ExchangeRateModel holds the USD→currency rate published at a point in
// time. Rows form a series per currency; the newest published_at wins.
type ExchangeRateModel struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	Currency    string          `gorm:"column:currency;size:15;index"`
	Rate        decimal.Decimal `gorm:"column:rate;type:TEXT"`
	PublishedAt time.Time       `gorm:"column:published_at"`
}

func (ExchangeRateModel) TableName() string { return "exchange_rates" }

// NotificationModel is an outbox row for the external delivery system.
// It carries everything needed to deliver the message without joins.
type NotificationModel struct {
	ID               int64          `gorm:"column:id;primaryKey"`
	RecipientAddress string         `gorm:"column:recipient_address;size:127"`
	OrderID          int64          `gorm:"column:order_id;index"`
	OutcomeSucceeded bool           `gorm:"column:outcome_succeeded"`
	Delivered        bool           `gorm:"column:delivered;index"`
	Detail           datatypes.JSON `gorm:"column:detail;type:TEXT"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }
