package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fundcore/internal/store"
	"fundcore/internal/store/memstore"
	"fundcore/internal/store/model"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store store.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.NewMemStore()
	f := &fixture{svc: NewService(st), store: st, now: t0}
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

// advance moves the fixture clock forward.
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addAccount(t *testing.T, balance float64, signed bool) *model.AccountModel {
	t.Helper()
	account := &model.AccountModel{
		Username:          "user",
		Email:             "user@example.com",
		Balance:           decimal.NewFromFloat(balance),
		IsAgreementSigned: signed,
		CreatedAt:         f.now,
	}
	require.NoError(t, f.store.Accounts().Save(context.Background(), account))
	return account
}

func (f *fixture) addFund(t *testing.T, policy model.FeePolicy, fee float64) *model.FundModel {
	t.Helper()
	fund := &model.FundModel{
		Name:       "fund",
		FeePolicy:  policy,
		TradingFee: decimal.NewFromFloat(fee),
	}
	require.NoError(t, f.store.Funds().Save(context.Background(), fund))
	return fund
}

func (f *fixture) addPrice(t *testing.T, fundID int64, value float64, at time.Time) *model.SharePriceModel {
	t.Helper()
	price := &model.SharePriceModel{FundID: fundID, Value: decimal.NewFromFloat(value), EffectiveAt: at}
	require.NoError(t, f.store.SharePrices().Insert(context.Background(), price))
	return price
}

func (f *fixture) addRate(t *testing.T, currency string, rate float64, at time.Time) {
	t.Helper()
	require.NoError(t, f.store.Rates().Insert(context.Background(), &model.ExchangeRateModel{
		Currency: currency, Rate: decimal.NewFromFloat(rate), PublishedAt: at,
	}))
}

func (f *fixture) balance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()
	account, err := f.store.Accounts().FindByID(context.Background(), accountID)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account.Balance
}

func (f *fixture) order(t *testing.T, id int64) *model.OrderModel {
	t.Helper()
	order, err := f.store.Orders().FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}
