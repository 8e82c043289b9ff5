// Package notify drains the notification outbox. Actual delivery belongs to
// an external system; the default sender only logs, and the sweeper's job
// is the consumer contract: take up to N undelivered records, hand each to
// the sender, mark it delivered.
package notify

import (
	"context"
	"fmt"
	"time"

	"fundcore/internal/logger"
	"fundcore/internal/metrics"
	"fundcore/internal/store"
	"fundcore/internal/store/model"
)

// Sender delivers one notification record.
type Sender interface {
	Send(ctx context.Context, rec model.NotificationModel) error
}

// LogSender pretends to deliver by logging, the way the reference system's
// demo worker does.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, rec model.NotificationModel) error {
	logger.Infof("sending notification to %s: order=%d success=%t", rec.RecipientAddress, rec.OrderID, rec.OutcomeSucceeded)
	return nil
}

type Sweeper struct {
	store     store.Store
	sender    Sender
	batchSize int
	interval  time.Duration
}

func NewSweeper(st store.Store, sender Sender, batchSize int, interval time.Duration) *Sweeper {
	if sender == nil {
		sender = LogSender{}
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Sweeper{store: st, sender: sender, batchSize: batchSize, interval: interval}
}

// Run drains the outbox on a fixed interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := s.DrainOnce(ctx); err != nil {
				logger.Errorf("outbox drain failed: %v", err)
			} else if n > 0 {
				logger.Debugf("outbox drain delivered %d notification(s)", n)
			}
		}
	}
}

// DrainOnce processes one batch of undelivered records and returns how many
// were delivered. A record whose send fails stays undelivered and is
// retried on the next drain.
func (s *Sweeper) DrainOnce(ctx context.Context) (int, error) {
	recs, err := s.store.Notifications().ListUndelivered(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("listing undelivered notifications: %w", err)
	}
	delivered := 0
	for _, rec := range recs {
		if err := s.sender.Send(ctx, rec); err != nil {
			logger.Warnf("delivering notification %d failed: %v", rec.ID, err)
			continue
		}
		if err := s.store.Notifications().MarkDelivered(ctx, rec.ID); err != nil {
			return delivered, fmt.Errorf("marking notification %d delivered: %w", rec.ID, err)
		}
		metrics.NotificationsDelivered.Inc()
		delivered++
	}
	return delivered, nil
}
