package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// ExchangeError represents a rejection or failure at the exchange boundary:
// a data fetch, balance query or order submission that the exchange refused
// or that never completed. It is caught per symbol and never crashes the loop.
type ExchangeError struct {
	Op        string // Operation that failed (e.g. "klines", "order", "account")
	Symbol    string // Trading pair involved, empty for account-level calls
	Err       error  // Underlying error
	Retriable bool   // Whether retrying the same call later may succeed
}

func (e *ExchangeError) Error() string {
	if e.Symbol != "" {
		return "exchange " + e.Op + " [" + e.Symbol + "]: " + e.Err.Error()
	}
	return "exchange " + e.Op + ": " + e.Err.Error()
}

func (e *ExchangeError) IsRetriable() bool {
	return e.Retriable
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// NewExchangeError creates a retriable exchange error
func NewExchangeError(op, symbol string, err error) *ExchangeError {
	return &ExchangeError{Op: op, Symbol: symbol, Err: err, Retriable: true}
}

// NewFatalExchangeError creates a non-retriable exchange error (e.g. invalid symbol)
func NewFatalExchangeError(op, symbol string, err error) *ExchangeError {
	return &ExchangeError{Op: op, Symbol: symbol, Err: err, Retriable: false}
}

// CycleError marks a failure not attributable to a single symbol, such as a
// total connectivity loss. The controller reacts with the longer backoff
// interval instead of the regular cycle interval.
type CycleError struct {
	Err error
}

func (e *CycleError) Error() string {
	return "cycle failed: " + e.Err.Error()
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

func (e *CycleError) IsRetriable() bool {
	return true
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrInvalidSymbol is returned when a symbol is not tradable or malformed. Not retriable.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrRateLimited is returned when the exchange throttles a request. Retriable.
	ErrRateLimited = errors.New("rate limited")

	// ErrOrderRejected is returned when the exchange refuses an order outright.
	ErrOrderRejected = errors.New("order rejected")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")
)
