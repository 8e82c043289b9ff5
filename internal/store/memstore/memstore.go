// Package memstore is an in-memory Store used by tests. A unit of work
// clones the whole state and swaps it in on Commit, so rollback semantics
// match the sqlite store. The store mutex is held for the lifetime of a
// unit of work, mirroring sqlite's single-writer behavior.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"fundcore/internal/store"
	"fundcore/internal/store/model"
)

type state struct {
	accounts      map[int64]model.AccountModel
	funds         map[int64]model.FundModel
	prices        map[int64]model.SharePriceModel
	orders        map[int64]model.OrderModel
	rates         map[int64]model.ExchangeRateModel
	notifications map[int64]model.NotificationModel
	nextID        int64
}

func newState() *state {
	return &state{
		accounts:      make(map[int64]model.AccountModel),
		funds:         make(map[int64]model.FundModel),
		prices:        make(map[int64]model.SharePriceModel),
		orders:        make(map[int64]model.OrderModel),
		rates:         make(map[int64]model.ExchangeRateModel),
		notifications: make(map[int64]model.NotificationModel),
		nextID:        1,
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextID = s.nextID
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.funds {
		c.funds[k] = v
	}
	for k, v := range s.prices {
		c.prices[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.rates {
		c.rates[k] = v
	}
	for k, v := range s.notifications {
		n := v
		n.Detail = append([]byte(nil), v.Detail...)
		c.notifications[k] = n
	}
	return c
}

func (s *state) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

type MemStore struct {
	mu    sync.Mutex
	state *state
}

func NewMemStore() *MemStore {
	return &MemStore{state: newState()}
}

func (m *MemStore) Begin(ctx context.Context) (store.UnitOfWork, error) {
	m.mu.Lock()
	return &memUnitOfWork{store: m, work: m.state.clone()}, nil
}

func (m *MemStore) Close() error { return nil }

// session abstracts locked access to a state so the same repository code
// serves both the store (lock per call) and a unit of work (already locked).
type session interface {
	with(fn func(st *state))
}

type storeSession struct{ store *MemStore }

func (s storeSession) with(fn func(st *state)) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	fn(s.store.state)
}

func (m *MemStore) Accounts() store.AccountRepository { return accountRepo{storeSession{m}} }
func (m *MemStore) Funds() store.FundRepository       { return fundRepo{storeSession{m}} }
func (m *MemStore) SharePrices() store.SharePriceRepository {
	return sharePriceRepo{storeSession{m}}
}
func (m *MemStore) Orders() store.OrderRepository       { return orderRepo{storeSession{m}} }
func (m *MemStore) Rates() store.ExchangeRateRepository { return rateRepo{storeSession{m}} }
func (m *MemStore) Notifications() store.NotificationRepository {
	return notificationRepo{storeSession{m}}
}

type memUnitOfWork struct {
	store *MemStore
	work  *state
	done  bool
}

type uowSession struct{ uow *memUnitOfWork }

func (s uowSession) with(fn func(st *state)) { fn(s.uow.work) }

func (u *memUnitOfWork) Accounts() store.AccountRepository { return accountRepo{uowSession{u}} }
func (u *memUnitOfWork) Funds() store.FundRepository       { return fundRepo{uowSession{u}} }
func (u *memUnitOfWork) SharePrices() store.SharePriceRepository {
	return sharePriceRepo{uowSession{u}}
}
func (u *memUnitOfWork) Orders() store.OrderRepository       { return orderRepo{uowSession{u}} }
func (u *memUnitOfWork) Rates() store.ExchangeRateRepository { return rateRepo{uowSession{u}} }
func (u *memUnitOfWork) Notifications() store.NotificationRepository {
	return notificationRepo{uowSession{u}}
}

func (u *memUnitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.state = u.work
	u.store.mu.Unlock()
	return nil
}

func (u *memUnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Unlock()
	return nil
}

// --- repositories ---

type accountRepo struct{ s session }

func (r accountRepo) FindByID(ctx context.Context, id int64) (*model.AccountModel, error) {
	var found *model.AccountModel
	r.s.with(func(st *state) {
		if a, ok := st.accounts[id]; ok {
			found = &a
		}
	})
	return found, nil
}

func (r accountRepo) Save(ctx context.Context, account *model.AccountModel) error {
	r.s.with(func(st *state) {
		if account.ID == 0 {
			account.ID = st.allocID()
		}
		st.accounts[account.ID] = *account
	})
	return nil
}

type fundRepo struct{ s session }

func (r fundRepo) FindByID(ctx context.Context, id int64) (*model.FundModel, error) {
	var found *model.FundModel
	r.s.with(func(st *state) {
		if f, ok := st.funds[id]; ok {
			found = &f
		}
	})
	return found, nil
}

func (r fundRepo) List(ctx context.Context) ([]model.FundModel, error) {
	var funds []model.FundModel
	r.s.with(func(st *state) {
		for _, f := range st.funds {
			funds = append(funds, f)
		}
	})
	sort.Slice(funds, func(i, j int) bool { return funds[i].ID < funds[j].ID })
	return funds, nil
}

func (r fundRepo) Save(ctx context.Context, fund *model.FundModel) error {
	r.s.with(func(st *state) {
		if fund.ID == 0 {
			fund.ID = st.allocID()
		}
		st.funds[fund.ID] = *fund
	})
	return nil
}

type sharePriceRepo struct{ s session }

func (r sharePriceRepo) FirstAfter(ctx context.Context, fundID int64, cutoff time.Time) (*model.SharePriceModel, error) {
	var found *model.SharePriceModel
	r.s.with(func(st *state) {
		for _, p := range st.prices {
			if p.FundID != fundID || !p.EffectiveAt.After(cutoff) {
				continue
			}
			if found == nil ||
				p.EffectiveAt.Before(found.EffectiveAt) ||
				(p.EffectiveAt.Equal(found.EffectiveAt) && p.ID < found.ID) {
				cp := p
				found = &cp
			}
		}
	})
	return found, nil
}

func (r sharePriceRepo) ListByFund(ctx context.Context, fundID int64) ([]model.SharePriceModel, error) {
	var prices []model.SharePriceModel
	r.s.with(func(st *state) {
		for _, p := range st.prices {
			if p.FundID == fundID {
				prices = append(prices, p)
			}
		}
	})
	sort.Slice(prices, func(i, j int) bool {
		if !prices[i].EffectiveAt.Equal(prices[j].EffectiveAt) {
			return prices[i].EffectiveAt.After(prices[j].EffectiveAt)
		}
		return prices[i].ID > prices[j].ID
	})
	return prices, nil
}

func (r sharePriceRepo) Insert(ctx context.Context, price *model.SharePriceModel) error {
	r.s.with(func(st *state) {
		if price.ID == 0 {
			price.ID = st.allocID()
		}
		st.prices[price.ID] = *price
	})
	return nil
}

type orderRepo struct{ s session }

func (r orderRepo) Insert(ctx context.Context, order *model.OrderModel) error {
	r.s.with(func(st *state) {
		if order.ID == 0 {
			order.ID = st.allocID()
		}
		st.orders[order.ID] = *order
	})
	return nil
}

func (r orderRepo) Save(ctx context.Context, order *model.OrderModel) error {
	r.s.with(func(st *state) {
		if order.ID == 0 {
			order.ID = st.allocID()
		}
		st.orders[order.ID] = *order
	})
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id int64) (*model.OrderModel, error) {
	var found *model.OrderModel
	r.s.with(func(st *state) {
		if o, ok := st.orders[id]; ok {
			found = &o
		}
	})
	return found, nil
}

func (r orderRepo) ListPending(ctx context.Context, limit int) ([]model.OrderModel, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []model.OrderModel
	r.s.with(func(st *state) {
		for _, o := range st.orders {
			if o.Status == model.OrderStatusPending {
				orders = append(orders, o)
			}
		}
	})
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].PlacedAt.Equal(orders[j].PlacedAt) {
			return orders[i].PlacedAt.Before(orders[j].PlacedAt)
		}
		return orders[i].ID < orders[j].ID
	})
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r orderRepo) ListByAccount(ctx context.Context, accountID int64) ([]model.OrderModel, error) {
	var orders []model.OrderModel
	r.s.with(func(st *state) {
		for _, o := range st.orders {
			if o.AccountID == accountID {
				orders = append(orders, o)
			}
		}
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

type rateRepo struct{ s session }

func (r rateRepo) Latest(ctx context.Context, currency string) (*model.ExchangeRateModel, error) {
	var found *model.ExchangeRateModel
	r.s.with(func(st *state) {
		for _, rt := range st.rates {
			if rt.Currency != currency {
				continue
			}
			if found == nil ||
				rt.PublishedAt.After(found.PublishedAt) ||
				(rt.PublishedAt.Equal(found.PublishedAt) && rt.ID > found.ID) {
				cp := rt
				found = &cp
			}
		}
	})
	return found, nil
}

func (r rateRepo) Insert(ctx context.Context, rate *model.ExchangeRateModel) error {
	r.s.with(func(st *state) {
		if rate.ID == 0 {
			rate.ID = st.allocID()
		}
		st.rates[rate.ID] = *rate
	})
	return nil
}

type notificationRepo struct{ s session }

func (r notificationRepo) Append(ctx context.Context, rec *model.NotificationModel) error {
	r.s.with(func(st *state) {
		if rec.ID == 0 {
			rec.ID = st.allocID()
		}
		st.notifications[rec.ID] = *rec
	})
	return nil
}

func (r notificationRepo) ListUndelivered(ctx context.Context, limit int) ([]model.NotificationModel, error) {
	if limit <= 0 {
		limit = 10
	}
	var recs []model.NotificationModel
	r.s.with(func(st *state) {
		for _, n := range st.notifications {
			if !n.Delivered {
				recs = append(recs, n)
			}
		}
	})
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (r notificationRepo) MarkDelivered(ctx context.Context, id int64) error {
	r.s.with(func(st *state) {
		if n, ok := st.notifications[id]; ok {
			n.Delivered = true
			st.notifications[id] = n
		}
	})
	return nil
}
