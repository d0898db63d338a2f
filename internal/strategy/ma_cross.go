package strategy

import (
	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Default moving-average windows for the crossover rule.
const (
	DefaultShortWindow = 10
	DefaultLongWindow  = 20
)

// MACross implements a moving-average crossover signal engine.
// It compares the short-window mean against the long-window mean over the
// tail of the series:
//
//	shortMean > longMean && latest > shortMean  => BUY
//	shortMean < longMean && latest < shortMean  => SELL
//	otherwise                                   => HOLD
//
// Both comparisons are strict, so exact ties resolve to HOLD.
type MACross struct {
	shortWindow int
	longWindow  int
}

// NewMACross creates a crossover engine with the given windows.
func NewMACross(shortWindow, longWindow int) *MACross {
	if shortWindow <= 0 {
		shortWindow = DefaultShortWindow
	}
	if longWindow <= 0 {
		longWindow = DefaultLongWindow
	}
	if shortWindow >= longWindow {
		panic("strategy: short window must be less than long window")
	}
	return &MACross{shortWindow: shortWindow, longWindow: longWindow}
}

// LongWindow returns the minimum series length required for a decision.
func (m *MACross) LongWindow() int {
	return m.longWindow
}

// Evaluate derives a signal from closing prices, most recent last.
// Fewer prices than the long window is a normal condition, not a fault,
// and resolves to HOLD.
func (m *MACross) Evaluate(closes []decimal.Decimal) domain.Signal {
	if len(closes) < m.longWindow {
		return domain.SignalHold
	}

	shortMean := tailMean(closes, m.shortWindow)
	longMean := tailMean(closes, m.longWindow)
	latest := closes[len(closes)-1]

	switch {
	case shortMean.GreaterThan(longMean) && latest.GreaterThan(shortMean):
		return domain.SignalBuy
	case shortMean.LessThan(longMean) && latest.LessThan(shortMean):
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}

// tailMean computes the exact arithmetic mean of the last n elements.
func tailMean(closes []decimal.Decimal, n int) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range closes[len(closes)-n:] {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
