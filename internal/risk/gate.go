package risk

import (
	"strings"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Limits are the sizing constraints for one symbol. Zero fields fall back
// to the gate-wide defaults.
type Limits struct {
	// MaxQuote caps the quote amount a single BUY may spend.
	MaxQuote decimal.Decimal
	// MinNotional is the exchange's minimum order value; a computed BUY
	// below it is skipped rather than submitted.
	MinNotional decimal.Decimal
}

// Config holds the gate-wide sizing defaults.
type Config struct {
	// QuoteAsset is the pricing currency all pairs settle in (e.g. "USDT").
	QuoteAsset string
	// BalanceThreshold is the minimum free quote balance required before
	// any BUY is considered.
	BalanceThreshold decimal.Decimal
	// PositionPct is the fraction of the free quote balance a BUY spends.
	PositionPct decimal.Decimal
	// MaxQuote is the default cap on a single BUY's quote amount.
	MaxQuote decimal.Decimal
	// MinNotional is the default minimum order value.
	MinNotional decimal.Decimal
}

// DefaultConfig returns the stock sizing rules: trade 5% of the free quote
// balance, at most 50 quote units per order, skip anything under 10, and
// require at least 10 free before buying at all.
func DefaultConfig(quoteAsset string) Config {
	return Config{
		QuoteAsset:       quoteAsset,
		BalanceThreshold: decimal.NewFromInt(10),
		PositionPct:      decimal.NewFromFloat(0.05),
		MaxQuote:         decimal.NewFromInt(50),
		MinNotional:      decimal.NewFromInt(10),
	}
}

// Gate decides whether and how much to trade for a given signal. Absence of
// funds is never an error: the gate answers with a nil intent and the
// controller logs and skips.
type Gate struct {
	cfg Config
}

// NewGate creates a risk gate with the given configuration.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// Size turns a signal into an order intent, or nil when no trade should
// happen. BUY orders are sized in the quote asset; SELL orders liquidate
// the entire free base balance.
func (g *Gate) Size(signal domain.Signal, symbol string, balances domain.BalanceSet, limits Limits) *domain.OrderIntent {
	switch signal {
	case domain.SignalBuy:
		return g.sizeBuy(symbol, balances, limits)
	case domain.SignalSell:
		return g.sizeSell(symbol, balances)
	default:
		return nil
	}
}

func (g *Gate) sizeBuy(symbol string, balances domain.BalanceSet, limits Limits) *domain.OrderIntent {
	freeQuote := balances.Free(g.cfg.QuoteAsset)
	if freeQuote.LessThan(g.cfg.BalanceThreshold) {
		return nil
	}

	cap := g.cfg.MaxQuote
	if limits.MaxQuote.IsPositive() {
		cap = limits.MaxQuote
	}
	minNotional := g.cfg.MinNotional
	if limits.MinNotional.IsPositive() {
		minNotional = limits.MinNotional
	}

	amount := decimal.Min(freeQuote.Mul(g.cfg.PositionPct), cap)
	if amount.LessThan(minNotional) {
		return nil
	}

	return &domain.OrderIntent{
		Symbol: symbol,
		Side:   domain.SideBuy,
		Mode:   domain.SizeByQuote,
		Amount: amount,
	}
}

func (g *Gate) sizeSell(symbol string, balances domain.BalanceSet) *domain.OrderIntent {
	freeBase := balances.Free(BaseAsset(symbol, g.cfg.QuoteAsset))
	if !freeBase.IsPositive() {
		return nil
	}

	return &domain.OrderIntent{
		Symbol: symbol,
		Side:   domain.SideSell,
		Mode:   domain.SizeByBase,
		Amount: freeBase,
	}
}

// BaseAsset extracts the base asset code from a pair symbol like "BTCUSDT".
func BaseAsset(symbol, quoteAsset string) string {
	return strings.TrimSuffix(symbol, quoteAsset)
}
