package ledger

import (
	"errors"
	"fmt"
	"math"

	"alpaca-trade-bot-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// closeEpsilon is the residual quantity below which a position is considered
// fully exited.
const closeEpsilon = 1e-9

// Ledger is the durable table of positions, keyed by symbol. It is the
// exclusive owner of position state. Rows are never deleted; closed positions
// persist for history. The design assumes exactly one writer process against
// the database at a time.
type Ledger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates a position ledger over the given database.
func New(db *gorm.DB, logger *zap.Logger) *Ledger {
	return &Ledger{db: db, logger: logger.Named("ledger")}
}

// Add records a buy fill. An existing record for the symbol is merged: the
// entry price becomes the volume-weighted average, quantities sum, and the
// high-water mark ratchets to at least the fill price. Otherwise a new open
// record is created with the fill price as its high-water mark.
func (l *Ledger) Add(symbol string, qty, price float64) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var pos models.Position
		err := tx.Where("symbol = ?", symbol).First(&pos).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			pos = models.Position{
				Symbol:       symbol,
				Qty:          qty,
				EntryPrice:   price,
				HighestPrice: price,
				Status:       models.PositionOpen,
			}
			if err := tx.Create(&pos).Error; err != nil {
				return fmt.Errorf("failed to create position %s: %w", symbol, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load position %s: %w", symbol, err)
		}

		newQty := pos.Qty + qty
		pos.EntryPrice = (pos.EntryPrice*pos.Qty + price*qty) / math.Max(newQty, 1e-9)
		pos.Qty = newQty
		pos.HighestPrice = math.Max(pos.HighestPrice, price)
		pos.Status = models.PositionOpen

		if err := tx.Save(&pos).Error; err != nil {
			return fmt.Errorf("failed to merge position %s: %w", symbol, err)
		}
		return nil
	})
}

// Reduce records a sell fill. When the remaining quantity falls to (or below)
// the close epsilon the position is zeroed and closed; it stays open with the
// reduced quantity otherwise. Reducing an unknown symbol is a no-op.
func (l *Ledger) Reduce(symbol string, qty float64) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var pos models.Position
		err := tx.Where("symbol = ?", symbol).First(&pos).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.logger.Warn("Reduce on unknown symbol ignored", zap.String("symbol", symbol))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load position %s: %w", symbol, err)
		}

		remaining := pos.Qty - qty
		if remaining > closeEpsilon {
			pos.Qty = remaining
		} else {
			pos.Qty = 0
			pos.Status = models.PositionClosed
		}

		if err := tx.Save(&pos).Error; err != nil {
			return fmt.Errorf("failed to reduce position %s: %w", symbol, err)
		}
		return nil
	})
}

// SetHighestPrice ratchets the high-water mark of a position. Unknown symbols
// are ignored.
func (l *Ledger) SetHighestPrice(symbol string, price float64) error {
	res := l.db.Model(&models.Position{}).Where("symbol = ?", symbol).
		Update("highest_price", price)
	if res.Error != nil {
		return fmt.Errorf("failed to update high-water mark for %s: %w", symbol, res.Error)
	}
	return nil
}

// RefreshUnrealizedPnL stores the unrealized profit percentage for a position
// at the current price. The value is informational only and never read back
// for control flow.
func (l *Ledger) RefreshUnrealizedPnL(symbol string, price float64) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var pos models.Position
		err := tx.Where("symbol = ?", symbol).First(&pos).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load position %s: %w", symbol, err)
		}

		pct := (price - pos.EntryPrice) / math.Max(pos.EntryPrice, 1e-9) * 100
		pct = math.Round(pct*1000) / 1000

		if err := tx.Model(&pos).Update("pnl_pct", pct).Error; err != nil {
			return fmt.Errorf("failed to update pnl for %s: %w", symbol, err)
		}
		return nil
	})
}

// Get returns the position for a symbol, open or closed.
func (l *Ledger) Get(symbol string) (*models.Position, error) {
	var pos models.Position
	if err := l.db.Where("symbol = ?", symbol).First(&pos).Error; err != nil {
		return nil, fmt.Errorf("failed to load position %s: %w", symbol, err)
	}
	return &pos, nil
}

// Open returns every currently open position, ordered by symbol.
func (l *Ledger) Open() ([]models.Position, error) {
	var positions []models.Position
	err := l.db.Where("status = ?", models.PositionOpen).
		Order("symbol asc").Find(&positions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open positions: %w", err)
	}
	return positions, nil
}
