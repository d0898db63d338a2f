package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// PriceSource resolves a current price for a symbol. Satisfied by PriceCache.
type PriceSource interface {
	Price(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Portfolio values the whole account in the quote asset.
type Portfolio struct {
	prices     PriceSource
	quoteAsset string
}

// NewPortfolio creates a portfolio valuation service.
func NewPortfolio(prices PriceSource, quoteAsset string) *Portfolio {
	return &Portfolio{prices: prices, quoteAsset: quoteAsset}
}

// Valuate converts every non-zero balance into the quote asset and sums the
// result. Assets without a quote pair are skipped, matching the exchange's
// own portfolio view.
func (p *Portfolio) Valuate(ctx context.Context, balances domain.BalanceSet) domain.PortfolioSnapshot {
	total := decimal.Zero
	assets := balances.NonZero()

	for _, b := range assets {
		if b.Asset == p.quoteAsset {
			total = total.Add(b.Total())
			continue
		}
		price, err := p.prices.Price(ctx, b.Asset+p.quoteAsset)
		if err != nil {
			slog.Debug("No quote pair for asset, skipping valuation",
				slog.String("asset", b.Asset), slog.Any("error", err))
			continue
		}
		total = total.Add(b.Total().Mul(price))
	}

	assetsJSON, err := json.Marshal(assets)
	if err != nil {
		assetsJSON = []byte("[]")
	}

	return domain.PortfolioSnapshot{
		TotalQuote: total,
		AssetsJSON: string(assetsJSON),
		Timestamp:  time.Now().UTC(),
	}
}
