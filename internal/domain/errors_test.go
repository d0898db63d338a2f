package domain

import (
	"errors"
	"testing"
)

func TestExchangeError(t *testing.T) {
	baseErr := errors.New("connection refused")

	t.Run("retriable error", func(t *testing.T) {
		err := NewExchangeError("klines", "BTCUSDT", baseErr)

		if !err.IsRetriable() {
			t.Error("Expected error to be retriable")
		}

		if err.Error() != "exchange klines [BTCUSDT]: connection refused" {
			t.Errorf("Error message = %q", err.Error())
		}

		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("fatal error", func(t *testing.T) {
		err := NewFatalExchangeError("order", "NOPEUSDT", ErrInvalidSymbol)

		if err.IsRetriable() {
			t.Error("Expected error to be non-retriable")
		}
		if !errors.Is(err, ErrInvalidSymbol) {
			t.Error("Expected error to wrap ErrInvalidSymbol")
		}
	})

	t.Run("account-level error has no symbol", func(t *testing.T) {
		err := NewExchangeError("account", "", baseErr)
		if err.Error() != "exchange account: connection refused" {
			t.Errorf("Error message = %q", err.Error())
		}
	})
}

func TestCycleError(t *testing.T) {
	baseErr := errors.New("network unreachable")
	err := &CycleError{Err: baseErr}

	if !errors.Is(err, baseErr) {
		t.Error("Expected CycleError to wrap cause")
	}
	if !IsRetriable(err) {
		t.Error("Cycle faults must be retriable - the loop never gives up")
	}

	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Error("errors.As should find CycleError")
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retriable exchange error", NewExchangeError("ticker", "BTCUSDT", errors.New("timeout")), true},
		{"fatal exchange error", NewFatalExchangeError("order", "X", ErrInvalidSymbol), false},
		{"config error", &ConfigError{Field: "interval", Err: errors.New("negative")}, false},
		{"plain error", errors.New("something"), false},
		{"nil-ish sentinel", ErrRateLimited, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetriable(tt.err); got != tt.want {
				t.Errorf("IsRetriable() = %v, want %v", got, tt.want)
			}
		})
	}
}
