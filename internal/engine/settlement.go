package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"fundcore/internal/logger"
	"fundcore/internal/metrics"
	"fundcore/internal/store"
	"fundcore/internal/store/model"
)

// SettleDueOrders processes up to batchLimit pending orders, oldest first.
// Every order is settled or canceled in its own transaction together with
// its balance mutation and outbox append; an order with no usable share
// price yet is skipped and stays pending. Returns the ids of orders that
// changed state.
func (s *Service) SettleDueOrders(ctx context.Context, batchLimit int) ([]int64, error) {
	if batchLimit <= 0 {
		batchLimit = s.batchSize
	}
	batchID := uuid.NewString()

	orders, err := s.store.Orders().ListPending(ctx, batchLimit)
	if err != nil {
		return nil, fmt.Errorf("listing pending orders: %w", err)
	}
	logger.Debugf("settlement batch %s: %d pending order(s)", batchID, len(orders))

	processed := make([]int64, 0, len(orders))
	for _, ord := range orders {
		if ctx.Err() != nil {
			// Interrupted between orders; everything committed so far
			// stays committed.
			return processed, ctx.Err()
		}
		done, settled, err := s.settleOne(ctx, ord.ID)
		if err != nil {
			// One corrupt order must not block the batch.
			metrics.SettlementFaults.Inc()
			logger.Errorf("settlement batch %s: order %d aborted: %v", batchID, ord.ID, err)
			continue
		}
		if !done {
			metrics.OrdersSkipped.Inc()
			continue
		}
		if settled {
			metrics.OrdersSettled.Inc()
		} else {
			metrics.OrdersCanceled.Inc()
		}
		processed = append(processed, ord.ID)
	}

	if len(processed) > 0 {
		logger.Infof("settlement batch %s: processed %d order(s)", batchID, len(processed))
	}
	return processed, nil
}

// settleOne runs one order's settlement as a single unit of work under the
// account lock. done is false when the order was skipped (no price yet, or
// no longer pending); settled distinguishes SETTLED from CANCELED.
func (s *Service) settleOne(ctx context.Context, orderID int64) (done, settled bool, err error) {
	// The account id on the batch snapshot could be stale; re-read the
	// order first to lock the right account.
	ord, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return false, false, fmt.Errorf("loading order: %w", err)
	}
	if ord == nil || ord.Status != model.OrderStatusPending {
		return false, false, nil
	}

	lock := s.locks.lock(ord.AccountID)
	defer lock.Unlock()

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return false, false, fmt.Errorf("starting settlement transaction: %w", err)
	}
	defer uow.Rollback()

	order, err := uow.Orders().FindByID(ctx, orderID)
	if err != nil {
		return false, false, fmt.Errorf("re-reading order: %w", err)
	}
	if order == nil || order.Status != model.OrderStatusPending {
		// Raced with another sweep; terminal states are final.
		return false, false, nil
	}

	account, err := uow.Accounts().FindByID(ctx, order.AccountID)
	if err != nil {
		return false, false, fmt.Errorf("loading account %d: %w", order.AccountID, err)
	}
	if account == nil {
		return false, false, fmt.Errorf("order %d references missing account %d", order.ID, order.AccountID)
	}
	fund, err := uow.Funds().FindByID(ctx, order.FundID)
	if err != nil {
		return false, false, fmt.Errorf("loading fund %d: %w", order.FundID, err)
	}
	if fund == nil {
		return false, false, fmt.Errorf("order %d references missing fund %d", order.ID, order.FundID)
	}

	price, err := resolveSettlementPrice(ctx, uow.SharePrices(), order.FundID, order.PlacedAt)
	if err != nil {
		return false, false, err
	}
	if price == nil {
		// No share price published after placement yet; retry next sweep.
		return false, false, nil
	}

	policy, err := policyFor(fund)
	if err != nil {
		return false, false, err
	}

	logger.Debugf("settling order %d: account=%d balance=%s policy=%s price=%s",
		order.ID, account.ID, account.Balance, policy.Name(), price.Value)

	now := s.now()
	due := policy.SettlementDue(order.Amount)
	if due.GreaterThan(account.Balance) {
		order.Status = model.OrderStatusCanceled
		order.SettledAt = &now
		if refund := policy.CancelRefund(order.Amount); refund.IsPositive() {
			account.Balance = account.Balance.Add(refund)
			if err := uow.Accounts().Save(ctx, account); err != nil {
				return false, false, fmt.Errorf("refunding prepaid fee: %w", err)
			}
		}
		if err := uow.Orders().Save(ctx, order); err != nil {
			return false, false, fmt.Errorf("canceling order: %w", err)
		}
		settled = false
	} else {
		order.SharesBought = order.Amount.Div(price.Value)
		order.Status = model.OrderStatusSettled
		order.SettledAt = &now
		account.Balance = account.Balance.Sub(due)
		if err := uow.Orders().Save(ctx, order); err != nil {
			return false, false, fmt.Errorf("settling order: %w", err)
		}
		if err := uow.Accounts().Save(ctx, account); err != nil {
			return false, false, fmt.Errorf("debiting balance: %w", err)
		}
		settled = true
	}

	if err := s.appendNotification(ctx, uow.Notifications(), order, account, settled); err != nil {
		return false, false, err
	}
	if err := uow.Commit(); err != nil {
		return false, false, fmt.Errorf("committing settlement: %w", err)
	}

	logger.Infof("order %d %s: account=%d balance=%s shares=%s",
		order.ID, order.Status.String(), account.ID, account.Balance, order.SharesBought)
	return true, settled, nil
}

func (s *Service) appendNotification(ctx context.Context, outbox store.NotificationRepository, order *model.OrderModel, account *model.AccountModel, settled bool) error {
	detail, err := json.Marshal(map[string]any{
		"order_id":      order.ID,
		"amount":        order.Amount,
		"shares_bought": order.SharesBought,
		"status":        order.Status.String(),
	})
	if err != nil {
		return fmt.Errorf("encoding notification detail: %w", err)
	}
	rec := &model.NotificationModel{
		RecipientAddress: account.Email,
		OrderID:          order.ID,
		OutcomeSucceeded: settled,
		Detail:           detail,
		CreatedAt:        s.now(),
	}
	if err := outbox.Append(ctx, rec); err != nil {
		return fmt.Errorf("appending notification: %w", err)
	}
	return nil
}
