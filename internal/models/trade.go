package models

import "gorm.io/gorm"

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// TradeRecord is one executed fill in the append-only audit trail.
// Records are written once and never mutated.
type TradeRecord struct {
	gorm.Model
	Timestamp int64    `json:"timestamp"` // unix seconds, UTC
	Symbol    string   `gorm:"index" json:"symbol"`
	Side      string   `json:"side"` // "buy" or "sell"
	Qty       float64  `json:"qty"`
	Price     float64  `json:"price"`
	PnL       *float64 `gorm:"column:pnl" json:"pnl,omitempty"` // realized, nil until known
}
