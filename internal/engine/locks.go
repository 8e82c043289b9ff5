package engine

import "sync"

// accountLocks serializes balance access per account so a balance check and
// the debit that follows it cannot race against another order on the same
// account. Locks are created on first use and never reclaimed; the account
// population of this system is small.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *accountLocks) lock(accountID int64) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}
