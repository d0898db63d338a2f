package app

import (
	"context"
	"log/slog"

	"trading_go/internal/api"
	"trading_go/internal/engine"
	"trading_go/internal/infra"
	"trading_go/internal/infra/binance"
	"trading_go/internal/infra/storage"
	"trading_go/internal/risk"
	"trading_go/internal/service"
	"trading_go/internal/strategy"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Exchange   *binance.Client
	PriceCache *service.PriceCache
	Stream     *binance.StreamWorker
	Controller *engine.Controller
	Server     *api.Server
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, exchange,
// controller, HTTP server).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping trading bot...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Exchange client and live price cache
	b.Exchange = binance.NewClient(cfg)
	b.PriceCache = service.NewPriceCache(b.Exchange)
	slog.Info("✅ Exchange client ready")

	// 5. Trading pairs: a persisted set from a previous run wins over the
	// configured default.
	pairs := cfg.Trading.Pairs
	if persisted, err := store.TradingPairs(); err != nil {
		slog.Warn("Could not load persisted trading pairs", slog.Any("error", err))
	} else if len(persisted) > 0 {
		pairs = persisted
		slog.Info("Restored trading pairs", slog.Any("pairs", pairs))
	}

	// 6. Controller: signal engine + risk gate + portfolio valuation
	evaluator := strategy.NewMACross(cfg.Trading.ShortWindow, cfg.Trading.LongWindow)
	gate := risk.NewGate(risk.Config{
		QuoteAsset:       cfg.Trading.QuoteAsset,
		BalanceThreshold: cfg.Trading.BalanceThreshold,
		PositionPct:      cfg.Trading.PositionPct,
		MaxQuote:         cfg.Trading.MaxQuote,
		MinNotional:      cfg.Trading.MinNotional,
	})
	portfolio := service.NewPortfolio(b.PriceCache, cfg.Trading.QuoteAsset)

	limits := make(map[string]risk.Limits, len(cfg.Trading.Limits))
	for symbol, l := range cfg.Trading.Limits {
		limits[symbol] = risk.Limits{MaxQuote: l.MaxQuote, MinNotional: l.MinNotional}
	}

	b.Controller = engine.NewController(
		engine.Options{
			Pairs:          pairs,
			QuoteAsset:     cfg.Trading.QuoteAsset,
			CycleInterval:  cfg.CycleInterval(),
			ErrorBackoff:   cfg.ErrorBackoff(),
			CandleInterval: cfg.Trading.CandleInterval,
			CandleLimit:    cfg.Trading.CandleLimit,
			Limits:         limits,
		},
		b.Exchange, b.Exchange, b.Exchange, store,
		evaluator, gate, portfolio,
	)
	slog.Info("✅ Trading controller ready")

	// 7. Market data stream (connected later in StartStream)
	b.Stream = binance.NewStreamWorker(cfg, pairs, b.PriceCache.Update)

	// 8. Control-plane HTTP server. Pair updates fan out to the stream so
	// new pairs get live prices without a restart.
	hub := &pairsHub{Controller: b.Controller, stream: b.Stream}
	b.Server = api.NewServer(hub, store, b.Exchange,
		cfg.Trading.QuoteAsset, cfg.API.AuthToken)

	return nil
}

// pairsHub fans a trading-pair update out to the controller and the market
// stream subscription.
type pairsHub struct {
	*engine.Controller
	stream *binance.StreamWorker
}

func (h *pairsHub) UpdateTradingPairs(pairs []string) {
	h.Controller.UpdateTradingPairs(pairs)
	h.stream.UpdateSymbols(pairs)
}

// StartStream connects the market data stream feeding the price cache. A
// stream outage is not fatal: valuation falls back to REST lookups.
func (b *Bootstrap) StartStream(ctx context.Context) {
	if err := b.Stream.Connect(ctx); err != nil {
		slog.Warn("Market stream unavailable, using REST fallback", slog.Any("error", err))
		return
	}
	slog.Info("✅ Market stream connected")
}

// Close releases held resources in reverse start order.
func (b *Bootstrap) Close() {
	if b.Stream != nil {
		b.Stream.Disconnect()
	}
	if b.Controller != nil && b.Controller.IsRunning() {
		b.Controller.Stop()
		b.Controller.Wait()
	}
	if b.Storage != nil {
		b.Storage.Close()
	}
}
