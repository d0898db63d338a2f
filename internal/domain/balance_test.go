package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBalanceTotal(t *testing.T) {
	b := Balance{
		Asset:  "BTC",
		Free:   decimal.NewFromFloat(0.5),
		Locked: decimal.NewFromFloat(0.25),
	}

	if !b.Total().Equal(decimal.NewFromFloat(0.75)) {
		t.Errorf("Total() = %s, want 0.75", b.Total())
	}
}

func TestBalanceSet_Free(t *testing.T) {
	set := BalanceSet{
		"USDT": {Asset: "USDT", Free: decimal.NewFromInt(100)},
	}

	t.Run("known asset", func(t *testing.T) {
		if !set.Free("USDT").Equal(decimal.NewFromInt(100)) {
			t.Errorf("Free(USDT) = %s, want 100", set.Free("USDT"))
		}
	})

	t.Run("unknown asset yields zero", func(t *testing.T) {
		if !set.Free("ETH").IsZero() {
			t.Errorf("Free(ETH) = %s, want 0", set.Free("ETH"))
		}
	})
}

func TestBalanceSet_NonZero(t *testing.T) {
	set := BalanceSet{
		"USDT": {Asset: "USDT", Free: decimal.NewFromInt(100)},
		"BTC":  {Asset: "BTC", Locked: decimal.NewFromFloat(0.1)},
		"DUST": {Asset: "DUST"},
	}

	nonZero := set.NonZero()
	if len(nonZero) != 2 {
		t.Fatalf("NonZero() returned %d balances, want 2", len(nonZero))
	}
	for _, b := range nonZero {
		if b.Asset == "DUST" {
			t.Error("empty balance should be filtered out")
		}
	}
}
