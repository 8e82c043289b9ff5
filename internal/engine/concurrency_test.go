package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundcore/internal/store/model"
)

// Two orders on one account with funds for only one of them. However many
// sweeps run, exactly one settles, the other cancels, and the balance never
// goes negative.
func TestSettle_ConcurrentSweepsOneAffordableOrder(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 150, true)
	fund := f.addFund(t, model.FeePolicyNormal, 0)

	first, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)
	f.advance(time.Minute)
	second, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(100), "usd")
	require.NoError(t, err)

	f.advance(time.Hour)
	f.addPrice(t, fund.ID, 10, f.now)
	f.advance(time.Minute)

	const sweeps = 8
	var wg sync.WaitGroup
	for i := 0; i < sweeps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SettleDueOrders(context.Background(), 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got1 := f.order(t, first.ID)
	got2 := f.order(t, second.ID)
	statuses := map[model.OrderStatus]int{got1.Status: 0, got2.Status: 0}
	statuses[got1.Status]++
	statuses[got2.Status]++
	assert.Equal(t, 1, statuses[model.OrderStatusSettled])
	assert.Equal(t, 1, statuses[model.OrderStatusCanceled])

	balance := f.balance(t, account.ID)
	assert.False(t, balance.IsNegative())
	assert.Equal(t, "50", balance.String())

	// One notification per order, no duplicates from racing sweeps.
	recs, err := f.store.Notifications().ListUndelivered(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestPlaceOrder_ConcurrentPlacementsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, 300, true)
	fund := f.addFund(t, model.FeePolicyPrepay, 1)

	const attempts = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		placed  int
		refused int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), account.ID, fund.ID, decimal.NewFromInt(50), "usd")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, ErrInsufficientBalance)
				refused++
				return
			}
			placed++
		}()
	}
	wg.Wait()

	// Fee 1 means each order of 50 must cover 100 at placement and debits
	// 50 of it up front, so exactly five placements fit in 300.
	assert.Equal(t, 5, placed)
	assert.Equal(t, attempts-5, refused)
	assert.Equal(t, "50", f.balance(t, account.ID).String())
}
