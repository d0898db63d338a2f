package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"trading_go/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// 1. Environment: a .env file is optional, real env vars win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", slog.Any("error", err))
	}

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Live market stream feeding the price cache
	bootstrap.StartStream(ctx)

	// 5. Auto-start trading when configured; otherwise wait for the
	// control endpoint.
	if bootstrap.Config.Trading.AutoStart {
		bootstrap.Controller.Start(ctx)
		slog.InfoContext(ctx, "✅ Trading loop started",
			slog.Any("pairs", bootstrap.Controller.TradingPairs()))
	} else {
		slog.InfoContext(ctx, "⏸ Trading idle, start via POST /api/bot/control")
	}

	// 6. Control-plane HTTP server
	go func() {
		slog.Info("✅ API server listening", slog.String("addr", bootstrap.Config.API.Listen))
		if err := bootstrap.Server.Run(bootstrap.Config.API.Listen); err != nil {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ Trading bot fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
