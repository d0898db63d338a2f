package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataSource provides prices and candle history for a symbol.
// RecentCloses returns closing prices ordered oldest first, most recent last.
type MarketDataSource interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	RecentCloses(ctx context.Context, symbol, interval string, limit int) ([]decimal.Decimal, error)
}

// AccountSource provides the current per-asset balances of the account.
type AccountSource interface {
	Balances(ctx context.Context) (BalanceSet, error)
}

// OrderExecutor submits market orders to the exchange.
type OrderExecutor interface {
	SubmitMarketOrder(ctx context.Context, intent OrderIntent) (OrderResult, error)
}

// Ledger persists trade records, error records, status snapshots and
// portfolio snapshots. Writes are best-effort from the controller's
// perspective: a returned error is logged locally, never propagated.
type Ledger interface {
	RecordTrade(result OrderResult) error
	RecordError(component, symbol, message string, at time.Time) error
	UpsertStatus(state BotState, at time.Time) error
	SavePortfolio(snapshot PortfolioSnapshot) error
}
