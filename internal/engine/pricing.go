package engine

import (
	"context"
	"fmt"
	"time"

	"fundcore/internal/store"
	"fundcore/internal/store/model"
)

// resolveSettlementPrice finds the earliest share price published strictly
// after cutoff. A nil result means "not yet available": the order stays
// pending and is retried on the next sweep. A non-positive price value is a
// data-integrity fault and is rejected before use.
func resolveSettlementPrice(ctx context.Context, prices store.SharePriceRepository, fundID int64, cutoff time.Time) (*model.SharePriceModel, error) {
	price, err := prices.FirstAfter(ctx, fundID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying share price for fund %d: %w", fundID, err)
	}
	if price == nil {
		return nil, nil
	}
	if !price.Value.IsPositive() {
		return nil, fmt.Errorf("share price %d for fund %d has non-positive value %s", price.ID, fundID, price.Value)
	}
	return price, nil
}
