package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fundcore/internal/logger"
	"fundcore/internal/metrics"
	"fundcore/internal/store/model"
)

// PlaceOrder validates and atomically creates a pending order for the
// account. The requested amount is converted to the base unit using the
// latest published exchange rate; under the prepay policy the trading fee
// is debited in the same transaction that creates the order.
func (s *Service) PlaceOrder(ctx context.Context, accountID, fundID int64, amount decimal.Decimal, currency string) (*model.OrderModel, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = model.BaseCurrency
	}

	lock := s.locks.lock(accountID)
	defer lock.Unlock()

	account, err := s.store.Accounts().FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("loading account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d not found", accountID)
	}
	if !account.IsAgreementSigned {
		metrics.PlacementsRejected.WithLabelValues("agreement_not_signed").Inc()
		return nil, ErrAgreementNotSigned
	}

	fund, err := s.store.Funds().FindByID(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("loading fund %d: %w", fundID, err)
	}
	if fund == nil {
		return nil, fmt.Errorf("fund %d not found", fundID)
	}

	converted, err := s.convertToBase(ctx, amount, currency)
	if err != nil {
		return nil, err
	}
	logger.Debugf("amount ordered in %s: %s (original %s %s)", model.BaseCurrency, converted, amount, currency)

	policy, err := policyFor(fund)
	if err != nil {
		return nil, err
	}

	// Both policies must afford amount plus fee at order time, even though
	// only the prepay policy moves money now.
	totalCost := converted.Mul(decimal.NewFromInt(1).Add(fund.TradingFee))
	if account.Balance.LessThan(totalCost) {
		metrics.PlacementsRejected.WithLabelValues("insufficient_balance").Inc()
		return nil, ErrInsufficientBalance
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting placement transaction: %w", err)
	}
	defer uow.Rollback()

	if debit := policy.PlacementDebit(converted); debit.IsPositive() {
		account.Balance = account.Balance.Sub(debit)
		if err := uow.Accounts().Save(ctx, account); err != nil {
			return nil, fmt.Errorf("debiting prepaid fee: %w", err)
		}
	}

	order := &model.OrderModel{
		AccountID:    accountID,
		FundID:       fundID,
		Amount:       converted,
		SharesBought: decimal.Zero,
		Status:       model.OrderStatusPending,
		PlacedAt:     s.now(),
	}
	if err := uow.Orders().Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("committing placement: %w", err)
	}

	metrics.OrdersPlaced.WithLabelValues(policy.Name()).Inc()
	logger.Infof("order %d placed: account=%d fund=%d amount=%s policy=%s",
		order.ID, accountID, fundID, converted, policy.Name())
	return order, nil
}

// convertToBase converts amount into the base unit using the latest rate
// published for currency "as of now". Identity for the base currency.
func (s *Service) convertToBase(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == model.BaseCurrency {
		return amount, nil
	}
	rate, err := s.store.Rates().Latest(ctx, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading exchange rate for %s: %w", currency, err)
	}
	if rate == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRateUnavailable, currency)
	}
	if !rate.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("exchange rate %d for %s has non-positive value %s", rate.ID, currency, rate.Rate)
	}
	return amount.Div(rate.Rate), nil
}
