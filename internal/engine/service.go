// Package engine implements the order placement service, the settlement
// engine, and the pricing resolver they share. All persistence goes through
// the injected store; the engine owns no global state beyond per-account
// locks.
package engine

import (
	"time"

	"fundcore/internal/store"
)

const DefaultBatchSize = 10

type Service struct {
	store store.Store
	locks *accountLocks
	now   func() time.Time

	batchSize int
}

func NewService(st store.Store) *Service {
	return &Service{
		store:     st,
		locks:     newAccountLocks(),
		now:       time.Now,
		batchSize: DefaultBatchSize,
	}
}

// SetClock replaces the settlement clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SetDefaultBatchSize sets the batch size used when SettleDueOrders is
// called with a non-positive limit.
func (s *Service) SetDefaultBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}
