package domain

// Signal is the trade decision derived from a price series. The zero value
// is SignalHold, so an unset signal never places an order.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

// String returns the string representation of Signal
func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}
