package audit

import (
	"fmt"
	"time"

	"alpaca-trade-bot-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Logger is the append-only execution record. Every executed fill becomes one
// immutable row. There is no deduplication: a write retried after a crash can
// leave a duplicate record, which is acceptable for an audit trail.
type Logger struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// New creates an audit logger over the given database.
func New(db *gorm.DB, logger *zap.Logger) *Logger {
	return &Logger{db: db, logger: logger.Named("audit"), now: time.Now}
}

// Record appends one fill. pnl is the realized profit for sells when known,
// nil otherwise.
func (a *Logger) Record(symbol, side string, qty, price float64, pnl *float64) error {
	rec := models.TradeRecord{
		Timestamp: a.now().UTC().Unix(),
		Symbol:    symbol,
		Side:      side,
		Qty:       qty,
		Price:     price,
		PnL:       pnl,
	}
	if err := a.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to append trade record: %w", err)
	}
	a.logger.Debug("Trade recorded",
		zap.String("symbol", symbol),
		zap.String("side", side),
		zap.Float64("qty", qty),
		zap.Float64("price", price),
	)
	return nil
}

// Records returns the full trail, most recent first.
func (a *Logger) Records() ([]models.TradeRecord, error) {
	var records []models.TradeRecord
	if err := a.db.Order("timestamp desc, id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list trade records: %w", err)
	}
	return records, nil
}
