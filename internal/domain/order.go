package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// SizingMode selects how a market order amount is interpreted.
type SizingMode string

const (
	// SizeByQuote spends Amount units of the quote asset (e.g. 50 USDT worth).
	SizeByQuote SizingMode = "QUOTE_AMOUNT"
	// SizeByBase trades Amount units of the base asset (e.g. 0.5 BTC).
	SizeByBase SizingMode = "BASE_QUANTITY"
)

// OrderIntent is a sized, approved trade produced by the risk gate
// and consumed by the order executor.
type OrderIntent struct {
	Symbol string
	Side   string // SideBuy or SideSell
	Mode   SizingMode
	Amount decimal.Decimal
}

// OrderResult is the exchange's acknowledgement of an executed market order.
// It is forwarded verbatim to the ledger.
type OrderResult struct {
	OrderID   string
	Symbol    string
	Side      string
	Amount    decimal.Decimal
	Timestamp time.Time
}
