package domain

import "github.com/shopspring/decimal"

// Balance represents the funds held for a single asset.
// Only the free portion is eligible for sizing decisions; locked funds
// back open orders on the exchange side.
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Total returns free + locked.
func (b Balance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// IsZero reports whether the balance holds no funds at all.
func (b Balance) IsZero() bool {
	return b.Free.IsZero() && b.Locked.IsZero()
}

// BalanceSet is an account snapshot keyed by asset code.
type BalanceSet map[string]Balance

// Free returns the free balance for an asset, zero if absent.
func (s BalanceSet) Free(asset string) decimal.Decimal {
	return s[asset].Free
}

// NonZero returns the subset of balances that actually hold funds,
// for portfolio snapshots and status queries.
func (s BalanceSet) NonZero() []Balance {
	result := make([]Balance, 0, len(s))
	for _, b := range s {
		if !b.IsZero() {
			result = append(result, b)
		}
	}
	return result
}
