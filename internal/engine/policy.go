package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fundcore/internal/store/model"
)

// feePolicy is the per-fund fee variant, resolved once per order. The
// settlement algorithm is policy-agnostic: it debits PlacementDebit at
// order time, requires SettlementDue to be covered at settlement, and
// credits CancelRefund when the order is canceled instead.
type feePolicy interface {
	// PlacementDebit is taken from the balance when the order is created.
	PlacementDebit(amount decimal.Decimal) decimal.Decimal
	// SettlementDue is taken from the balance when the order settles, and
	// is the figure the balance is checked against first.
	SettlementDue(amount decimal.Decimal) decimal.Decimal
	// CancelRefund is returned to the balance when settlement cancels the
	// order for insufficient funds.
	CancelRefund(amount decimal.Decimal) decimal.Decimal
	// Name labels the policy in logs and metrics.
	Name() string
}

// normalPolicy charges amount plus fee at settlement; nothing moves at
// placement and nothing is refunded on cancel.
type normalPolicy struct {
	fee decimal.Decimal
}

func (p normalPolicy) PlacementDebit(decimal.Decimal) decimal.Decimal { return decimal.Zero }

func (p normalPolicy) SettlementDue(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(p.fee))
}

func (p normalPolicy) CancelRefund(decimal.Decimal) decimal.Decimal { return decimal.Zero }

func (p normalPolicy) Name() string { return "normal" }

// prepayPolicy collects the fee at placement; settlement only charges the
// principal, and a cancel refunds the prepaid fee in full.
type prepayPolicy struct {
	fee decimal.Decimal
}

func (p prepayPolicy) PlacementDebit(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.fee)
}

func (p prepayPolicy) SettlementDue(amount decimal.Decimal) decimal.Decimal { return amount }

func (p prepayPolicy) CancelRefund(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.fee)
}

func (p prepayPolicy) Name() string { return "prepay_trading_fee" }

func policyFor(fund *model.FundModel) (feePolicy, error) {
	switch fund.FeePolicy {
	case model.FeePolicyNormal:
		return normalPolicy{fee: fund.TradingFee}, nil
	case model.FeePolicyPrepay:
		return prepayPolicy{fee: fund.TradingFee}, nil
	default:
		return nil, fmt.Errorf("fund %d has unknown fee policy %d", fund.ID, fund.FeePolicy)
	}
}
