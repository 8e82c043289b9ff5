package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcore/internal/store/model"
)

// Scenario: NORMAL fund, fee 0.1, balance 1000, order for 100. The price 10
// published after placement settles the order: balance 890, 10 shares.
func TestSettle_NormalFund(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)
	assert.Equal(t, "1000", f.balance(t, account.ID).String())

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []int64{order.ID}, ids)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusSettled, got.Status)
	assert.Equal(t, "10", got.SharesBought.String())
	assert.Equal(t, "100", got.Amount.String())
	require.NotNil(t, got.SettledAt)
	assert.Equal(t, f.now, *got.SettledAt)
	assert.Equal(t, "890", f.balance(t, account.ID).String())
}

// Scenario: PREPAY fund, fee 0.015, balance 1000, order for 100. Placement
// debits 1.5; the balance is then forced to 50, so settlement cancels the
// order and refunds the prepaid fee: 51.5.
func TestSettle_PrepayFundCancelRefundsFee(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyPrepay, 0.015)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)
	assert.Equal(t, "998.5", f.balance(t, account.ID).String())

	// Drain the balance behind the order's back.
	account, err = f.store.Accounts().FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	account.Balance = decimal.NewFromInt(50)
	require.NoError(t, f.store.Accounts().Save(context.Background(), account))

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 30, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []int64{order.ID}, ids)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusCanceled, got.Status)
	assert.True(t, got.SharesBought.IsZero())
	require.NotNil(t, got.SettledAt)
	assert.Equal(t, "51.5", f.balance(t, account.ID).String())
}

func TestSettle_PrepayFundSettles(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyPrepay, 0.015)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 25, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusSettled, got.Status)
	assert.Equal(t, "4", got.SharesBought.String())
	// 1000 - 1.5 (fee at placement) - 100 (principal at settlement)
	assert.Equal(t, "898.5", f.balance(t, account.ID).String())
}

// Scenario: NORMAL fund cancel leaves the balance untouched (nothing was
// prepaid, so nothing is refunded).
func TestSettle_NormalFundCancelNoBalanceChange(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	account, err = f.store.Accounts().FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	account.Balance = decimal.NewFromInt(50)
	require.NoError(t, f.store.Accounts().Save(context.Background(), account))

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []int64{order.ID}, ids)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusCanceled, got.Status)
	assert.Equal(t, "50", f.balance(t, account.ID).String())
}

func TestSettle_NoPricePublishedYet(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	// A price published before placement must not be used.
	f.addPrice(t, fund.ID, 10, t0.Add(-time.Hour))

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Nil(t, got.SettledAt)
	assert.Equal(t, "1000", f.balance(t, account.ID).String())
}

func TestSettle_UsesEarliestPriceAfterPlacement(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	// Three prices after placement; the earliest one is authoritative.
	f.addPrice(t, fund.ID, 20, t0.Add(2*time.Hour))
	f.addPrice(t, fund.ID, 10, t0.Add(time.Hour))
	f.addPrice(t, fund.ID, 40, t0.Add(3*time.Hour))
	f.advance(4 * time.Hour)

	_, err = f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)

	got := f.order(t, order.ID)
	assert.Equal(t, "10", got.SharesBought.String())
}

func TestSettle_FIFOAndBatchLimit(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 100000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0)

	var orderIDs []int64
	for i := 0; i < 5; i++ {
		order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(10), "usd")
		require.NoError(t, err)
		orderIDs = append(orderIDs, order.ID)
		f.advance(time.Minute)
	}
	f.addPrice(t, fund.ID, 5, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 3)
	require.NoError(t, err)
	// Oldest-first, never more than the limit.
	assert.Equal(t, orderIDs[:3], ids)

	ids, err = f.svc.SettleDueOrders(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, orderIDs[3:], ids)
}

func TestSettle_IdempotentWithoutNewPrices(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	_, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	balanceAfter := f.balance(t, account.ID)

	// A second run with no new share price processes nothing and the
	// balance is not debited twice.
	ids, err = f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, balanceAfter.String(), f.balance(t, account.ID).String())
}

func TestSettle_TerminalStatesAreFinal(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)
	f.advance(time.Minute)

	_, err = f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	settled := f.order(t, order.ID)
	settledAt := *settled.SettledAt

	// Another price arriving later must not re-settle the order.
	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 99, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	again := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusSettled, again.Status)
	assert.Equal(t, settled.SharesBought.String(), again.SharesBought.String())
	assert.Equal(t, settledAt, *again.SettledAt)
}

func TestSettle_AppendsExactlyOneNotification(t *testing.T) {
	f := newFixture(t)
	okAccount := f.addAccount(t, 1000, true)
	brokeAccount := f.addAccount(t, 200, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0.1)

	okOrder, err := f.svc.PlaceOrder(context.Background(), okAccount.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)
	brokeOrder, err := f.svc.PlaceOrder(context.Background(), brokeAccount.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	// Make the second account unable to pay at settlement.
	acc, err := f.store.Accounts().FindByID(context.Background(), brokeAccount.ID)
	require.NoError(t, err)
	acc.Balance = decimal.NewFromInt(1)
	require.NoError(t, f.store.Accounts().Save(context.Background(), acc))

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	recs, err := f.store.Notifications().ListUndelivered(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byOrder := map[int64]bool{}
	for _, rec := range recs {
		byOrder[rec.OrderID] = rec.OutcomeSucceeded
		assert.False(t, rec.Delivered)
		assert.NotEmpty(t, rec.RecipientAddress)
	}
	assert.True(t, byOrder[okOrder.ID])
	assert.False(t, byOrder[brokeOrder.ID])
}

// A corrupt order (missing fund) must not block the rest of the batch.
func TestSettle_MissingFundSkipsOrderNotBatch(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 10000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0)

	// Corrupt row inserted behind the engine's back.
	corrupt := &model.OrderModel{
		AccountID: account.ID,
		FundID:    777,
		Amount:    decimal.NewFromInt(10),
		Status:    model.OrderStatusPending,
		PlacedAt:  f.now,
	}
	require.NoError(t, f.store.Orders().Insert(context.Background(), corrupt))

	f.advance(time.Minute)
	healthy, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(10), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 2, f.now)
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{healthy.ID}, ids)

	// Corrupt order is untouched, not canceled.
	got := f.order(t, corrupt.ID)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}

// A non-positive share price is a data-integrity fault: the order is
// aborted for this batch, not settled and not canceled.
func TestSettle_NonPositivePriceIsFault(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 1000, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0)

	order, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	price := &model.SharePriceModel{FundID: fund.ID, Value: decimal.Zero, EffectiveAt: f.now}
	require.NoError(t, f.store.SharePrices().Insert(context.Background(), price))
	f.advance(time.Minute)

	ids, err := f.svc.SettleDueOrders(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	got := f.order(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Equal(t, "1000", f.balance(t, account.ID).String())
}
