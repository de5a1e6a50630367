package models

import "gorm.io/gorm"

// Position status values. A closed position keeps its row for audit history.
const (
	PositionOpen   = "open"
	PositionClosed = "closed"
)

// Position represents the holding for a single symbol. There is at most one
// row per symbol; buys merge into it and sells reduce it. A position is
// closed exactly when its quantity reaches zero.
type Position struct {
	gorm.Model
	Symbol       string  `gorm:"uniqueIndex" json:"symbol"`
	Qty          float64 `gorm:"not null" json:"qty"`
	EntryPrice   float64 `json:"entry_price"`   // volume-weighted average cost
	HighestPrice float64 `json:"highest_price"` // high-water mark since opening
	Status       string  `gorm:"default:open" json:"status"`
	PnLPct       float64 `gorm:"column:pnl_pct" json:"pnl_pct"` // unrealized, informational only
}
