package trader

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"alpaca-trade-bot-go/internal/audit"
	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/ledger"
	"alpaca-trade-bot-go/internal/models"
	"alpaca-trade-bot-go/internal/notify"
	"alpaca-trade-bot-go/internal/screener"
	"alpaca-trade-bot-go/internal/signal"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine sequences one full trading cycle: screen the universe, evaluate and
// submit buys for each candidate, then run the exit rules over every open
// position. Cycles are strictly sequential; the screener's chunk fetch is the
// only concurrent phase.
type Engine struct {
	UUID      string
	StartTime time.Time

	logger    *zap.Logger
	cfg       config.Config
	broker    alpaca.ClientInterface
	ledger    *ledger.Ledger
	audit     *audit.Logger
	screener  *screener.Screener
	evaluator *signal.Evaluator
	notifier  *notify.Notifier
	cycles    atomic.Int64
	now       func() time.Time
}

// NewEngine creates a trading engine and its ledger, audit, screener, and
// evaluator components over the shared database and broker client. sentiment
// may be nil when the sentiment filter is disabled.
func NewEngine(logger *zap.Logger, cfg config.Config, broker alpaca.ClientInterface,
	db *gorm.DB, sentiment signal.SentimentProvider, notifier *notify.Notifier) *Engine {

	return &Engine{
		UUID:      uuid.NewString(),
		StartTime: time.Now(),
		logger:    logger,
		cfg:       cfg,
		broker:    broker,
		ledger:    ledger.New(db, logger),
		audit:     audit.New(db, logger),
		screener:  screener.New(broker, cfg.Screener, logger),
		evaluator: signal.NewEvaluator(cfg.Trading, sentiment, logger),
		notifier:  notifier,
		now:       time.Now,
	}
}

// Run executes trading cycles until the context is cancelled. A zero tick
// interval runs exactly one cycle; the cadence is otherwise expected to come
// from an external scheduler.
func (e *Engine) Run(ctx context.Context) {
	if e.cfg.Trading.TickInterval <= 0 {
		if err := e.RunCycle(ctx); err != nil {
			e.logger.Error("Cycle failed", zap.Error(err))
		}
		return
	}

	interval := time.Duration(e.cfg.Trading.TickInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Starting cycle loop", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Stopping trading engine...")
			return
		case <-ticker.C:
			if err := e.RunCycle(ctx); err != nil {
				e.logger.Error("Cycle failed", zap.Error(err))
			}
		}
	}
}

// RunCycle performs one complete pass: screen, buy phase, then sell phase.
// The buy phase finishes in full before the sell phase begins. Per-symbol
// failures are logged and skipped; only a failed screen aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context) error {
	started := e.now()
	e.logger.Info("Starting trading cycle", zap.Int64("cycle", e.cycles.Load()+1))

	universe, err := e.broker.ListTradableSymbols(ctx)
	if err != nil {
		return fmt.Errorf("could not list tradable symbols: %w", err)
	}

	candidates, err := e.screener.SelectTopN(ctx, universe, e.cfg.Screener.TopN)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	for i, symbol := range candidates {
		e.processBuy(ctx, symbol, i+1, len(candidates))
	}

	positions, err := e.ledger.Open()
	if err != nil {
		return fmt.Errorf("could not load open positions: %w", err)
	}
	e.logger.Info("Exit check for open positions", zap.Int("count", len(positions)))

	for _, pos := range positions {
		e.processExit(ctx, pos)
	}

	e.cycles.Add(1)
	e.logger.Info("Cycle complete", zap.Duration("elapsed", e.now().Sub(started)))
	return nil
}

// processBuy evaluates one screened candidate and submits a limit buy when
// the signal accepts. An order rejected by the broker leaves the ledger
// untouched; there is no position to track until the broker accepts the
// intent.
func (e *Engine) processBuy(ctx context.Context, symbol string, idx, total int) {
	l := e.logger.With(zap.String("symbol", symbol), zap.Int("idx", idx), zap.Int("total", total))

	bars, err := e.broker.GetBars(ctx, symbol)
	if err != nil {
		l.Info("No price data, skipping", zap.Error(err))
		return
	}

	decision := e.evaluator.Evaluate(ctx, symbol, bars, e.now())
	if !decision.Buy {
		l.Debug("No buy signal", zap.String("reason", decision.Reason))
		return
	}

	price := bars[len(bars)-1].Close
	qty := e.cfg.Trading.OrderQty

	_, err = e.broker.SubmitLimitOrder(ctx, alpaca.OrderRequest{
		Symbol:        symbol,
		Qty:           qty,
		Side:          alpaca.OrderSideBuy,
		LimitPrice:    price,
		ExtendedHours: e.cfg.Trading.AllowExtendedHours,
	})
	if err != nil {
		l.Error("Buy order failed", zap.Error(err))
		return
	}

	if err := e.ledger.Add(symbol, qty, price); err != nil {
		l.Error("Failed to record position", zap.Error(err))
	}
	if err := e.audit.Record(symbol, models.SideBuy, qty, price, nil); err != nil {
		l.Error("Failed to record trade", zap.Error(err))
	}
	e.notifier.Send(ctx, fmt.Sprintf("[BUY] %s %g @ %.2f", symbol, qty, price))
	l.Info("Bought", zap.Float64("qty", qty), zap.Float64("price", price))
}

// processExit runs the exit state machine for one open position. A failed
// sell submission is logged but the ledger reduction and audit record still
// happen: local state tracks intent, and the next cycle is the retry path.
func (e *Engine) processExit(ctx context.Context, pos models.Position) {
	l := e.logger.With(zap.String("symbol", pos.Symbol))

	bars, err := e.broker.GetBars(ctx, pos.Symbol)
	if err != nil {
		l.Info("No price data for exit check, skipping", zap.Error(err))
		return
	}
	price := bars[len(bars)-1].Close

	if err := e.ledger.RefreshUnrealizedPnL(pos.Symbol, price); err != nil {
		l.Warn("Failed to refresh unrealized pnl", zap.Error(err))
	}

	action := signal.EvaluateExit(pos, price, e.cfg.Trading)

	if action.Kind != signal.ExitNone {
		e.executeSell(ctx, pos, price, action)
	}

	if action.NewHighWater > 0 {
		if err := e.ledger.SetHighestPrice(pos.Symbol, action.NewHighWater); err != nil {
			l.Warn("Failed to ratchet high-water mark", zap.Error(err))
		} else {
			l.Info("High-water mark raised", zap.Float64("highest_price", action.NewHighWater))
		}
	}
}

func (e *Engine) executeSell(ctx context.Context, pos models.Position, price float64, action signal.ExitAction) {
	l := e.logger.With(
		zap.String("symbol", pos.Symbol),
		zap.String("reason", action.Reason),
		zap.Float64("qty", action.Qty),
		zap.Float64("price", price),
	)

	_, err := e.broker.SubmitLimitOrder(ctx, alpaca.OrderRequest{
		Symbol:        pos.Symbol,
		Qty:           action.Qty,
		Side:          alpaca.OrderSideSell,
		LimitPrice:    price,
		ExtendedHours: e.cfg.Trading.AllowExtendedHours,
	})
	if err != nil {
		// Local state is still updated; see the reconciliation note in DESIGN.md.
		l.Error("Sell order failed", zap.Error(err))
	}

	if err := e.ledger.Reduce(pos.Symbol, action.Qty); err != nil {
		l.Error("Failed to reduce position", zap.Error(err))
	}

	realized := (price - pos.EntryPrice) * action.Qty
	if err := e.audit.Record(pos.Symbol, models.SideSell, action.Qty, price, &realized); err != nil {
		l.Error("Failed to record trade", zap.Error(err))
	}

	e.notifier.Send(ctx, fmt.Sprintf("[%s] %s %g @ %.2f", action.Reason, pos.Symbol, action.Qty, price))
	l.Info("Sold")
}

// Cycles returns the number of completed cycles.
func (e *Engine) Cycles() int64 {
	return e.cycles.Load()
}

// OpenPositionCount returns the number of currently open positions.
func (e *Engine) OpenPositionCount() (int, error) {
	positions, err := e.ledger.Open()
	if err != nil {
		return 0, err
	}
	return len(positions), nil
}
