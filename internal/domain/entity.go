package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecord is an executed order as persisted by the ledger (append-only).
type TradeRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"index" json:"order_id"`
	Symbol    string          `gorm:"index" json:"symbol"`
	Side      string          `json:"side"`
	Amount    decimal.Decimal `gorm:"type:text" json:"amount"`
	Status    string          `json:"status"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
}

// ErrorRecord is a persisted fault report (append-only).
type ErrorRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Component string    `gorm:"index" json:"component"`
	Symbol    string    `json:"symbol"`
	Message   string    `json:"message"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// BotStatus is the single upserted status row reflecting the controller state.
type BotStatus struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Status        string    `json:"status"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PortfolioSnapshot is a point-in-time account valuation in the quote asset.
type PortfolioSnapshot struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TotalQuote decimal.Decimal `gorm:"type:text" json:"total_quote"`
	AssetsJSON string          `gorm:"column:assets" json:"-"`
	Timestamp  time.Time       `gorm:"index" json:"timestamp"`
}

// TradingPair is a persisted member of the monitored pair set, so the set
// survives restarts. Position in the set is kept for stable cycle ordering.
type TradingPair struct {
	Symbol    string    `gorm:"primaryKey" json:"symbol"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
