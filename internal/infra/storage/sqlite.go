package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trading_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite-backed ledger. Trade, error and portfolio records
// are append-only; the bot status row is upserted in place.
type Storage struct {
	db *gorm.DB
}

var _ domain.Ledger = (*Storage)(nil)

// NewStorage creates a new SQLite storage instance at the given path,
// creating parent directories as needed.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join("data", "trading.db")
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(
		&domain.TradeRecord{},
		&domain.ErrorRecord{},
		&domain.BotStatus{},
		&domain.PortfolioSnapshot{},
		&domain.TradingPair{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Ledger Operations
// ======================================================================================

// RecordTrade appends an executed order to the trade log.
func (s *Storage) RecordTrade(result domain.OrderResult) error {
	record := domain.TradeRecord{
		OrderID:   result.OrderID,
		Symbol:    result.Symbol,
		Side:      result.Side,
		Amount:    result.Amount,
		Status:    "completed",
		Timestamp: result.Timestamp,
	}
	return s.db.Create(&record).Error
}

// RecordError appends a fault report to the error log.
func (s *Storage) RecordError(component, symbol, message string, at time.Time) error {
	record := domain.ErrorRecord{
		Component: component,
		Symbol:    symbol,
		Message:   message,
		Timestamp: at,
	}
	return s.db.Create(&record).Error
}

// UpsertStatus writes the single controller status row.
func (s *Storage) UpsertStatus(state domain.BotState, at time.Time) error {
	status := domain.BotStatus{
		ID:            1,
		Status:        state.String(),
		LastHeartbeat: at,
	}
	return s.db.Save(&status).Error
}

// GetStatus returns the current status row, nil when none was ever written.
func (s *Storage) GetStatus() (*domain.BotStatus, error) {
	var status domain.BotStatus
	err := s.db.First(&status, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &status, err
}

// SavePortfolio appends a portfolio valuation snapshot.
func (s *Storage) SavePortfolio(snapshot domain.PortfolioSnapshot) error {
	return s.db.Create(&snapshot).Error
}

// LatestPortfolio returns the most recent snapshot, nil when none exists.
func (s *Storage) LatestPortfolio() (*domain.PortfolioSnapshot, error) {
	var snapshot domain.PortfolioSnapshot
	err := s.db.Order("timestamp DESC").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &snapshot, err
}

// RecentTrades returns the latest trades, newest first.
func (s *Storage) RecentTrades(limit int) ([]domain.TradeRecord, error) {
	var trades []domain.TradeRecord
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&trades).Error
	return trades, err
}

// RecentErrors returns the latest error records, newest first.
func (s *Storage) RecentErrors(limit int) ([]domain.ErrorRecord, error) {
	var records []domain.ErrorRecord
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&records).Error
	return records, err
}

// ======================================================================================
// Trading Pair Operations
// ======================================================================================

// ReplaceTradingPairs overwrites the persisted pair set, keeping order.
func (s *Storage) ReplaceTradingPairs(pairs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.TradingPair{}).Error; err != nil {
			return err
		}
		for i, symbol := range pairs {
			pair := domain.TradingPair{Symbol: symbol, Position: i}
			if err := tx.Create(&pair).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TradingPairs returns the persisted pair set in stored order.
func (s *Storage) TradingPairs() ([]string, error) {
	var pairs []domain.TradingPair
	if err := s.db.Order("position ASC").Find(&pairs).Error; err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(pairs))
	for _, p := range pairs {
		symbols = append(symbols, p.Symbol)
	}
	return symbols, nil
}
