package strategy

import (
	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

// Evaluator is the interface that all signal engines must implement.
// It is called once per symbol per cycle by the trading controller.
type Evaluator interface {
	// Evaluate derives a trade decision from a series of closing prices,
	// ordered oldest first with the most recent price last. It is a pure
	// function of the series: no state is retained between calls.
	Evaluate(closes []decimal.Decimal) domain.Signal
}
