package signal

import (
	"testing"

	"alpaca-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func openPosition(qty, entry, highest float64) models.Position {
	return models.Position{
		Symbol:       "AAPL",
		Qty:          qty,
		EntryPrice:   entry,
		HighestPrice: highest,
		Status:       models.PositionOpen,
	}
}

func TestEvaluateExit_TakeProfitThreshold(t *testing.T) {
	cfg := defaultTrading()
	pos := openPosition(10, 100, 100)

	a := EvaluateExit(pos, 105.01, cfg)
	assert.Equal(t, ExitPartial, a.Kind)
	assert.Equal(t, ReasonTakeProfit, a.Reason)
	assert.Equal(t, 5.0, a.Qty)

	a = EvaluateExit(pos, 104.99, cfg)
	assert.Equal(t, ExitNone, a.Kind)
}

func TestEvaluateExit_TakeProfitSellsAtLeastOneShare(t *testing.T) {
	cfg := defaultTrading()
	pos := openPosition(1, 100, 100)

	a := EvaluateExit(pos, 106, cfg)
	assert.Equal(t, ExitPartial, a.Kind)
	assert.Equal(t, 1.0, a.Qty)
}

func TestEvaluateExit_TrailingStopThreshold(t *testing.T) {
	cfg := defaultTrading()
	// Entry low enough that neither take-profit nor stop-loss interferes.
	pos := openPosition(10, 95, 100)

	a := EvaluateExit(pos, 96.99, cfg)
	assert.Equal(t, ExitFull, a.Kind)
	assert.Equal(t, ReasonTrailingStop, a.Reason)
	assert.Equal(t, 10.0, a.Qty)

	a = EvaluateExit(pos, 97.01, cfg)
	assert.Equal(t, ExitNone, a.Kind)
}

func TestEvaluateExit_StopLoss(t *testing.T) {
	cfg := defaultTrading()
	// High-water mark close to entry so the trailing stop stays quiet
	// until well past the stop-loss level.
	pos := openPosition(10, 100, 100.5)

	a := EvaluateExit(pos, 96.9, cfg)
	assert.Equal(t, ExitFull, a.Kind)
	assert.Equal(t, ReasonTrailingStop, a.Reason)

	// With a higher water mark, stop-loss is what fires.
	pos = openPosition(10, 100, 99)
	a = EvaluateExit(pos, 97.0, cfg)
	assert.Equal(t, ExitFull, a.Kind)
	assert.Equal(t, ReasonStopLoss, a.Reason)

	cfg.StopLossEnabled = false
	a = EvaluateExit(pos, 97.0, cfg)
	assert.Equal(t, ExitNone, a.Kind)
}

func TestEvaluateExit_TakeProfitBeatsTrailingStop(t *testing.T) {
	cfg := defaultTrading()
	// Up 6% from entry but down 4% from the high-water mark: both
	// conditions hold, take-profit must win.
	pos := openPosition(10, 100, 110.5)
	price := 106.0

	assert.GreaterOrEqual(t, (price-pos.EntryPrice)/pos.EntryPrice, cfg.TakeProfitRate)
	assert.LessOrEqual(t, (price-pos.HighestPrice)/pos.HighestPrice, -cfg.TrailingStopRate)

	a := EvaluateExit(pos, price, cfg)
	assert.Equal(t, ExitPartial, a.Kind)
	assert.Equal(t, ReasonTakeProfit, a.Reason)
}

func TestEvaluateExit_Ratchet(t *testing.T) {
	cfg := defaultTrading()

	t.Run("new high with no exit", func(t *testing.T) {
		pos := openPosition(10, 100, 101)
		a := EvaluateExit(pos, 102, cfg)
		assert.Equal(t, ExitNone, a.Kind)
		assert.Equal(t, 102.0, a.NewHighWater)
	})

	t.Run("no ratchet below the mark", func(t *testing.T) {
		pos := openPosition(10, 100, 101)
		a := EvaluateExit(pos, 100.5, cfg)
		assert.Equal(t, ExitNone, a.Kind)
		assert.Zero(t, a.NewHighWater)
	})

	t.Run("partial take-profit can carry a ratchet", func(t *testing.T) {
		pos := openPosition(10, 100, 104)
		a := EvaluateExit(pos, 106, cfg)
		assert.Equal(t, ExitPartial, a.Kind)
		assert.Equal(t, 106.0, a.NewHighWater)
	})

	t.Run("full exit never ratchets", func(t *testing.T) {
		pos := openPosition(10, 95, 100)
		a := EvaluateExit(pos, 96.5, cfg)
		assert.Equal(t, ExitFull, a.Kind)
		assert.Zero(t, a.NewHighWater)
	})
}
