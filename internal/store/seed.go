package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fundcore/internal/store/model"
)

// SeedDemoData loads the demo dataset: two accounts (one with the agreement
// signed), a prepay fund and a normal fund with share price history, and
// exchange rates for euro and ntd. No-op when accounts already exist.
func SeedDemoData(ctx context.Context, st Store) error {
	existing, err := st.Accounts().FindByID(ctx, 1)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	signed := &model.AccountModel{
		Username:          "louis_huang",
		FirstName:         "Louis",
		LastName:          "Huang",
		Email:             "louis@example.com",
		Balance:           decimal.NewFromInt(1000),
		IsAgreementSigned: true,
		IsAdmin:           true,
		CreatedAt:         now,
	}
	unsigned := &model.AccountModel{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Miller",
		Email:     "alice@example.com",
		Balance:   decimal.NewFromInt(500),
		CreatedAt: now,
	}
	for _, a := range []*model.AccountModel{signed, unsigned} {
		if err := st.Accounts().Save(ctx, a); err != nil {
			return err
		}
	}

	rates := []model.ExchangeRateModel{
		{Currency: "usd", Rate: decimal.NewFromInt(1), PublishedAt: yesterday},
		{Currency: "euro", Rate: decimal.NewFromFloat(0.9), PublishedAt: yesterday},
		{Currency: "euro", Rate: decimal.NewFromFloat(0.95), PublishedAt: now},
		{Currency: "ntd", Rate: decimal.NewFromFloat(28.0), PublishedAt: yesterday},
		{Currency: "ntd", Rate: decimal.NewFromFloat(29.68), PublishedAt: now},
	}
	for i := range rates {
		if err := st.Rates().Insert(ctx, &rates[i]); err != nil {
			return err
		}
	}

	prepay := &model.FundModel{
		Name:       "The best mutual fund",
		FeePolicy:  model.FeePolicyPrepay,
		TradingFee: decimal.NewFromFloat(0.015),
		Prospectus: "Buy to earn. Maybe?",
	}
	normal := &model.FundModel{
		Name:       "Do not buy fund",
		FeePolicy:  model.FeePolicyNormal,
		TradingFee: decimal.NewFromFloat(0.1),
		Prospectus: "Buying = losing money",
	}
	for _, f := range []*model.FundModel{prepay, normal} {
		if err := st.Funds().Save(ctx, f); err != nil {
			return err
		}
	}

	prices := []model.SharePriceModel{
		{FundID: prepay.ID, Value: decimal.NewFromFloat(30.123), EffectiveAt: yesterday},
		{FundID: prepay.ID, Value: decimal.NewFromFloat(35.412), EffectiveAt: now},
		{FundID: normal.ID, Value: decimal.NewFromFloat(10.984), EffectiveAt: now},
	}
	for i := range prices {
		if err := st.SharePrices().Insert(ctx, &prices[i]); err != nil {
			return err
		}
	}
	return nil
}
