package signal

import (
	"context"
	"math"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/market"
	"go.uber.org/zap"
)

// minBars is the shortest history the evaluator will work with; MA20 and the
// Bollinger band need 20 closes.
const minBars = 20

const labelNegative = "negative"

// SentimentProvider supplies a sentiment label for a symbol. Implementations
// must degrade to a neutral label on failure rather than returning an error.
type SentimentProvider interface {
	Sentiment(ctx context.Context, symbol string) (label string, score float64)
}

// Decision is the outcome of a buy evaluation. A rejected decision carries
// the first condition that failed.
type Decision struct {
	Buy    bool
	Reason string
}

func reject(reason string) Decision { return Decision{Reason: reason} }

// Evaluator applies the conjunctive buy rule to a price series.
type Evaluator struct {
	cfg       config.Trading
	sentiment SentimentProvider
	logger    *zap.Logger
}

// NewEvaluator creates a buy evaluator. sentiment may be nil when the
// sentiment filter is disabled.
func NewEvaluator(cfg config.Trading, sentiment SentimentProvider, logger *zap.Logger) *Evaluator {
	return &Evaluator{cfg: cfg, sentiment: sentiment, logger: logger.Named("evaluator")}
}

// Evaluate decides whether to buy a symbol given its minute bar history.
// All conditions must hold; the first failing one becomes the reject reason.
// Indicator errors reject the symbol rather than propagating.
func (e *Evaluator) Evaluate(ctx context.Context, symbol string, bars []market.Bar, now time.Time) Decision {
	if !market.AllowsEntry(now, e.cfg.AllowExtendedHours) {
		return reject("outside session window")
	}
	if len(bars) < minBars {
		return reject("insufficient history")
	}

	if e.cfg.UseSentimentFilter && e.sentiment != nil {
		label, _ := e.sentiment.Sentiment(ctx, symbol)
		if label == labelNegative {
			return reject("negative sentiment")
		}
	}

	closes := market.Closes(bars)
	vols := market.Volumes(bars)

	ma5, err := SMA(closes, 5)
	if err != nil {
		return reject("indicator error")
	}
	ma20, err := SMA(closes, 20)
	if err != nil {
		return reject("indicator error")
	}
	bbUpper, err := BollingerUpper(closes, 20, 2.0)
	if err != nil {
		return reject("indicator error")
	}
	vol5, err := SMA(vols, 5)
	if err != nil {
		return reject("indicator error")
	}
	vol10, err := SMA(vols, 10)
	if err != nil {
		return reject("indicator error")
	}

	rsi := RSI(closes, 14)
	currPrice := closes[len(closes)-1]
	currVol := vols[len(vols)-1]

	rsiLimit := 65.0
	mul10 := 1.5
	mul5 := 2.0
	if e.cfg.UseDynamicThresholds {
		atrPct, err := ATRPct(bars, 14)
		if err != nil {
			return reject("indicator error")
		}
		rsiLimit = math.Max(40.0, 65.0-atrPct*100.0)
		mul10 += atrPct
		mul5 += atrPct
	}

	switch {
	case ma5 <= ma20:
		return reject("ma5 below ma20")
	case rsi >= rsiLimit:
		return reject("rsi above limit")
	case currVol <= vol10*mul10:
		return reject("volume below 10-bar threshold")
	case currPrice <= bbUpper:
		return reject("price inside bollinger band")
	case currVol <= vol5*mul5:
		return reject("volume below 5-bar threshold")
	}

	e.logger.Debug("buy signal accepted",
		zap.String("symbol", symbol),
		zap.Float64("ma5", ma5),
		zap.Float64("ma20", ma20),
		zap.Float64("rsi", rsi),
		zap.Float64("bb_upper", bbUpper),
		zap.Bool("gap_up", market.GapUp(bars, 0.02)),
		zap.Bool("high_break", market.HighBreak(bars, 3)),
		zap.Bool("volume_surge", market.VolumeSurge(bars, 3)),
	)

	return Decision{Buy: true}
}
