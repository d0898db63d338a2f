package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/infra"
	"trading_go/internal/risk"
	"trading_go/internal/service"
	"trading_go/internal/strategy"
)

// Options configure the controller's cycle behavior. All durations and
// limits come from the external configuration surface.
type Options struct {
	Pairs          []string
	QuoteAsset     string
	CycleInterval  time.Duration
	ErrorBackoff   time.Duration
	CandleInterval string
	CandleLimit    int
	Limits         map[string]risk.Limits
}

// Controller owns the bot run state and drives the periodic trading cycle:
// fetch history, evaluate the signal, size through the risk gate, submit the
// order, record the result. One cycle goroutine exists at most; start is
// idempotent and stop is the only way the loop ends.
type Controller struct {
	opts      Options
	market    domain.MarketDataSource
	account   domain.AccountSource
	executor  domain.OrderExecutor
	ledger    domain.Ledger
	evaluator strategy.Evaluator
	gate      *risk.Gate
	portfolio *service.Portfolio
	metrics   *infra.Metrics
	logger    *slog.Logger

	mu     sync.RWMutex
	state  domain.BotState
	pairs  []string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a stopped controller.
func NewController(
	opts Options,
	market domain.MarketDataSource,
	account domain.AccountSource,
	executor domain.OrderExecutor,
	ledger domain.Ledger,
	evaluator strategy.Evaluator,
	gate *risk.Gate,
	portfolio *service.Portfolio,
) *Controller {
	pairs := make([]string, len(opts.Pairs))
	copy(pairs, opts.Pairs)

	return &Controller{
		opts:      opts,
		market:    market,
		account:   account,
		executor:  executor,
		ledger:    ledger,
		evaluator: evaluator,
		gate:      gate,
		portfolio: portfolio,
		metrics:   infra.GlobalMetrics,
		logger:    slog.Default().With("module", "controller"),
		state:     domain.StateStopped,
		pairs:     pairs,
	}
}

// Start transitions STOPPED -> RUNNING and launches the cycle loop.
// Calling it while already RUNNING is a no-op; a second loop is never
// spawned. It reports whether a new run actually began.
func (c *Controller) Start(ctx context.Context) bool {
	c.mu.Lock()
	if c.state == domain.StateRunning {
		c.mu.Unlock()
		c.logger.Info("Start ignored: already running")
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.state = domain.StateRunning
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.metrics.SetRunning(true)
	c.persistStatus(domain.StateRunning)
	c.logger.Info("Trading started", slog.Any("pairs", c.TradingPairs()))

	go c.run(runCtx, done)
	return true
}

// Stop transitions RUNNING -> STOPPED. The inter-cycle sleep is aborted
// promptly; an in-flight exchange call completes rather than being cut off
// mid-order. Calling it while already STOPPED is a no-op.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if c.state == domain.StateStopped {
		c.mu.Unlock()
		c.logger.Info("Stop ignored: already stopped")
		return false
	}
	c.state = domain.StateStopped
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.metrics.SetRunning(false)
	c.persistStatus(domain.StateStopped)
	c.logger.Info("Trading stopped")
	return true
}

// Wait blocks until the cycle loop has fully exited after a Stop.
func (c *Controller) Wait() {
	c.mu.RLock()
	done := c.done
	c.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// State returns the current run state.
func (c *Controller) State() domain.BotState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsRunning reports whether the controller is RUNNING.
func (c *Controller) IsRunning() bool {
	return c.State() == domain.StateRunning
}

// TradingPairs returns a copy of the monitored pair set.
func (c *Controller) TradingPairs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pairs := make([]string, len(c.pairs))
	copy(pairs, c.pairs)
	return pairs
}

// UpdateTradingPairs replaces the monitored pair set. The update is fully
// visible at the start of the next cycle, never mid-cycle.
func (c *Controller) UpdateTradingPairs(pairs []string) {
	copied := make([]string, len(pairs))
	copy(copied, pairs)

	c.mu.Lock()
	c.pairs = copied
	c.mu.Unlock()

	c.logger.Info("Trading pairs updated", slog.Any("pairs", copied))
}

// run is the single cycle loop. It exits only when the run context is
// cancelled by Stop (or the parent shutting down).
func (c *Controller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		delay := c.opts.CycleInterval

		if err := c.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			// A fault hitting the whole cycle gets the longer pause, a
			// blunt circuit breaker rather than exponential backoff.
			delay = c.opts.ErrorBackoff
			c.metrics.RecordCycleFault()
			c.logger.Error("Cycle failed", slog.Any("error", err), slog.Duration("backoff", delay))
			c.recordError("controller", "", err.Error())
		} else {
			c.metrics.RecordCycle(time.Since(start))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// runCycle executes one pass over the pair set. Per-symbol faults are
// recorded and skipped; only failures affecting every symbol (such as the
// account snapshot being unreachable) surface as a cycle fault.
func (c *Controller) runCycle(ctx context.Context) error {
	balances, err := c.account.Balances(ctx)
	if err != nil {
		return &domain.CycleError{Err: err}
	}

	if c.portfolio != nil {
		snapshot := c.portfolio.Valuate(ctx, balances)
		if err := c.ledger.SavePortfolio(snapshot); err != nil {
			c.logger.Warn("Portfolio snapshot not persisted", slog.Any("error", err))
		}
	}

	for _, symbol := range c.TradingPairs() {
		if ctx.Err() != nil {
			return nil // stopping; the rest of the cycle is abandoned
		}
		if err := c.processSymbol(ctx, symbol); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.metrics.RecordSymbolFault()
			c.logger.Error("Symbol processing failed",
				slog.String("symbol", symbol), slog.Any("error", err))
			c.recordError("controller", symbol, err.Error())
		}
	}
	return nil
}

// processSymbol runs the signal -> risk -> execution pipeline for one pair.
func (c *Controller) processSymbol(ctx context.Context, symbol string) error {
	closes, err := c.market.RecentCloses(ctx, symbol, c.opts.CandleInterval, c.opts.CandleLimit)
	if err != nil {
		return err
	}

	signal := c.evaluator.Evaluate(closes)
	if signal == domain.SignalHold {
		c.logger.Debug("No signal", slog.String("symbol", symbol))
		return nil
	}

	// Balances are re-read right before sizing so that an earlier order in
	// this cycle is already reflected in the free quote balance.
	balances, err := c.account.Balances(ctx)
	if err != nil {
		return err
	}

	intent := c.gate.Size(signal, symbol, balances, c.opts.Limits[symbol])
	if intent == nil {
		c.logger.Info("Signal without eligible balance, skipping",
			slog.String("symbol", symbol), slog.String("signal", signal.String()))
		return nil
	}

	result, err := c.executor.SubmitMarketOrder(ctx, *intent)
	if err != nil {
		return err
	}

	c.metrics.RecordOrderExecuted()
	c.logger.Info("Trade executed",
		slog.String("symbol", symbol),
		slog.String("side", result.Side),
		slog.String("amount", result.Amount.String()),
		slog.String("order_id", result.OrderID))

	c.recordTrade(result)
	return nil
}

// Ledger writes are best-effort: trading must continue even when
// persistence is down, so failures are only logged locally.

func (c *Controller) persistStatus(state domain.BotState) {
	if err := c.ledger.UpsertStatus(state, time.Now().UTC()); err != nil {
		c.logger.Warn("Status not persisted", slog.Any("error", err))
	}
}

func (c *Controller) recordTrade(result domain.OrderResult) {
	if err := c.ledger.RecordTrade(result); err != nil {
		c.logger.Warn("Trade not persisted",
			slog.String("order_id", result.OrderID), slog.Any("error", err))
	}
}

func (c *Controller) recordError(component, symbol, message string) {
	if err := c.ledger.RecordError(component, symbol, message, time.Now().UTC()); err != nil {
		c.logger.Warn("Error record not persisted", slog.Any("error", err))
	}
}
