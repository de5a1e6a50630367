package signal

import (
	"math"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/models"
)

// ExitKind classifies the outcome of an exit evaluation.
type ExitKind int

const (
	ExitNone ExitKind = iota
	ExitPartial
	ExitFull
)

// Exit reasons, recorded in logs and notifications.
const (
	ReasonTakeProfit   = "take_profit"
	ReasonTrailingStop = "trailing_stop"
	ReasonStopLoss     = "stop_loss"
)

// ExitAction is the decision for one open position in one cycle.
// NewHighWater is non-zero when the position's high-water mark should ratchet
// up to that price; it can accompany a partial take-profit but never a full
// exit.
type ExitAction struct {
	Kind         ExitKind
	Reason       string
	Qty          float64
	NewHighWater float64
}

// EvaluateExit runs the exit rules for an open position against the current
// price. Rules are checked in strict priority order: take-profit, then
// trailing-stop, then stop-loss (when enabled); the first match wins.
// A partial take-profit can still carry a high-water ratchet; a full exit
// never does.
func EvaluateExit(pos models.Position, price float64, cfg config.Trading) ExitAction {
	entry := math.Max(pos.EntryPrice, 1e-9)
	highest := pos.HighestPrice
	if highest <= 0 {
		highest = pos.EntryPrice
	}

	ratchet := func(a ExitAction) ExitAction {
		if price > highest {
			a.NewHighWater = price
		}
		return a
	}

	if (price-entry)/entry >= cfg.TakeProfitRate {
		qty := math.Max(1, math.Floor(pos.Qty/2))
		return ratchet(ExitAction{Kind: ExitPartial, Reason: ReasonTakeProfit, Qty: qty})
	}

	if (price-highest)/math.Max(highest, 1e-9) <= -cfg.TrailingStopRate {
		return ExitAction{Kind: ExitFull, Reason: ReasonTrailingStop, Qty: pos.Qty}
	}

	if cfg.StopLossEnabled && (price-entry)/entry <= -cfg.StopLossRate {
		return ExitAction{Kind: ExitFull, Reason: ReasonStopLoss, Qty: pos.Qty}
	}

	return ratchet(ExitAction{Kind: ExitNone})
}
