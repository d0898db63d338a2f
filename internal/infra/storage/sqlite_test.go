package storage

import (
	"path/filepath"
	"testing"
	"time"

	"trading_go/internal/domain"

	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}

func TestRecordTrade(t *testing.T) {
	s := setupTestDB(t)

	result := domain.OrderResult{
		OrderID:   "98765",
		Symbol:    "BTCUSDT",
		Side:      domain.SideBuy,
		Amount:    decimal.NewFromInt(50),
		Timestamp: time.Now(),
	}

	if err := s.RecordTrade(result); err != nil {
		t.Fatalf("RecordTrade failed: %v", err)
	}

	trades, err := s.RecentTrades(10)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].OrderID != "98765" {
		t.Errorf("OrderID = %s, want 98765", trades[0].OrderID)
	}
	if !trades[0].Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Amount = %s, want 50", trades[0].Amount)
	}
}

func TestRecentTrades_Ordering(t *testing.T) {
	s := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		s.RecordTrade(domain.OrderResult{
			OrderID:   string(rune('a' + i)),
			Symbol:    "ETHUSDT",
			Side:      domain.SideSell,
			Amount:    decimal.NewFromInt(int64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	trades, err := s.RecentTrades(2)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if trades[0].OrderID != "c" {
		t.Errorf("newest trade should come first, got %s", trades[0].OrderID)
	}
}

func TestRecordError(t *testing.T) {
	s := setupTestDB(t)

	if err := s.RecordError("controller", "BTCUSDT", "exchange klines: timeout", time.Now()); err != nil {
		t.Fatalf("RecordError failed: %v", err)
	}

	records, err := s.RecentErrors(10)
	if err != nil {
		t.Fatalf("RecentErrors failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 error record, got %d", len(records))
	}
	if records[0].Component != "controller" {
		t.Errorf("Component = %s, want controller", records[0].Component)
	}
}

func TestUpsertStatus(t *testing.T) {
	s := setupTestDB(t)

	// Never written yet
	status, err := s.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status != nil {
		t.Fatal("expected nil status before first upsert")
	}

	// First write
	if err := s.UpsertStatus(domain.StateRunning, time.Now()); err != nil {
		t.Fatalf("UpsertStatus failed: %v", err)
	}
	status, _ = s.GetStatus()
	if status == nil || status.Status != "RUNNING" {
		t.Fatalf("status = %+v, want RUNNING", status)
	}

	// Upsert must overwrite, not append
	if err := s.UpsertStatus(domain.StateStopped, time.Now()); err != nil {
		t.Fatalf("UpsertStatus failed: %v", err)
	}
	status, _ = s.GetStatus()
	if status.Status != "STOPPED" {
		t.Errorf("status = %s, want STOPPED", status.Status)
	}
}

func TestSavePortfolio(t *testing.T) {
	s := setupTestDB(t)

	snapshot, err := s.LatestPortfolio()
	if err != nil {
		t.Fatalf("LatestPortfolio failed: %v", err)
	}
	if snapshot != nil {
		t.Fatal("expected nil snapshot on empty DB")
	}

	s.SavePortfolio(domain.PortfolioSnapshot{
		TotalQuote: decimal.NewFromInt(1000),
		Timestamp:  time.Now().Add(-time.Minute),
	})
	s.SavePortfolio(domain.PortfolioSnapshot{
		TotalQuote: decimal.NewFromInt(1100),
		Timestamp:  time.Now(),
	})

	snapshot, err = s.LatestPortfolio()
	if err != nil {
		t.Fatalf("LatestPortfolio failed: %v", err)
	}
	if !snapshot.TotalQuote.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("TotalQuote = %s, want 1100 (most recent)", snapshot.TotalQuote)
	}
}

func TestTradingPairs(t *testing.T) {
	s := setupTestDB(t)

	// Empty set before any write
	pairs, err := s.TradingPairs()
	if err != nil {
		t.Fatalf("TradingPairs failed: %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected empty set, got %v", pairs)
	}

	if err := s.ReplaceTradingPairs([]string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}); err != nil {
		t.Fatalf("ReplaceTradingPairs failed: %v", err)
	}

	pairs, _ = s.TradingPairs()
	if len(pairs) != 3 || pairs[0] != "BTCUSDT" || pairs[2] != "SOLUSDT" {
		t.Errorf("pairs = %v, want stored order preserved", pairs)
	}

	// Replace fully overwrites
	if err := s.ReplaceTradingPairs([]string{"SOLUSDT"}); err != nil {
		t.Fatalf("ReplaceTradingPairs failed: %v", err)
	}
	pairs, _ = s.TradingPairs()
	if len(pairs) != 1 || pairs[0] != "SOLUSDT" {
		t.Errorf("pairs = %v, want [SOLUSDT]", pairs)
	}
}
