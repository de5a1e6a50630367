package signal

import (
	"context"
	"testing"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/market"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// 2024-03-05 19:00 UTC is 14:00 ET, inside the regular session.
var regularSession = time.Date(2024, 3, 5, 19, 0, 0, 0, time.UTC)

// 2024-03-05 12:00 UTC is 07:00 ET, pre-market.
var preMarket = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

// 2024-03-05 08:00 UTC is 03:00 ET, outside every session.
var overnight = time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)

// makeBars builds a minute bar series from parallel close and volume slices.
func makeBars(closes, vols []float64) []market.Bar {
	start := regularSession.Add(-time.Duration(len(closes)) * time.Minute)
	bars := make([]market.Bar, len(closes))
	for i := range closes {
		bars[i] = market.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      closes[i],
			High:      closes[i] + 1,
			Low:       closes[i] - 1,
			Close:     closes[i],
			Volume:    vols[i],
		}
	}
	return bars
}

// breakoutCloses is engineered so every buy condition holds on the last bar:
// MA5 100.8 > MA20 99.4, RSI14 61.1, close 108 above the upper Bollinger
// band 103.9, and the final volume beats both average-volume multipliers.
func breakoutCloses(finalJump float64) ([]float64, []float64) {
	closes := make([]float64, 0, 21)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, 100)
		} else {
			closes = append(closes, 98)
		}
	}
	closes = append(closes, closes[19]+finalJump)

	vols := make([]float64, 21)
	for i := range vols {
		vols[i] = 1000
	}
	vols[20] = 5000
	return closes, vols
}

func defaultTrading() config.Trading {
	return config.Trading{
		TakeProfitRate:     0.05,
		TrailingStopRate:   0.03,
		StopLossEnabled:    true,
		StopLossRate:       0.03,
		AllowExtendedHours: true,
	}
}

func TestEvaluate_AcceptsBreakout(t *testing.T) {
	e := NewEvaluator(defaultTrading(), nil, zap.NewNop())
	closes, vols := breakoutCloses(10)

	d := e.Evaluate(context.Background(), "AAPL", makeBars(closes, vols), regularSession)

	assert.True(t, d.Buy, "reason: %s", d.Reason)
}

func TestEvaluate_RejectsHighRSI(t *testing.T) {
	e := NewEvaluator(defaultTrading(), nil, zap.NewNop())
	// A +20 final bar pushes RSI14 to 69.6 while every other condition
	// still holds.
	closes, vols := breakoutCloses(20)

	d := e.Evaluate(context.Background(), "AAPL", makeBars(closes, vols), regularSession)

	assert.False(t, d.Buy)
	assert.Equal(t, "rsi above limit", d.Reason)
}

func TestEvaluate_RejectsShortHistory(t *testing.T) {
	e := NewEvaluator(defaultTrading(), nil, zap.NewNop())
	closes, vols := breakoutCloses(10)

	// 19 bars is below the minimum regardless of indicator values.
	d := e.Evaluate(context.Background(), "AAPL", makeBars(closes[:19], vols[:19]), regularSession)

	assert.False(t, d.Buy)
	assert.Equal(t, "insufficient history", d.Reason)
}

func TestEvaluate_SessionWindow(t *testing.T) {
	closes, vols := breakoutCloses(10)
	bars := makeBars(closes, vols)

	t.Run("overnight always rejects", func(t *testing.T) {
		e := NewEvaluator(defaultTrading(), nil, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, overnight)
		assert.False(t, d.Buy)
		assert.Equal(t, "outside session window", d.Reason)
	})

	t.Run("pre-market allowed with extended hours", func(t *testing.T) {
		e := NewEvaluator(defaultTrading(), nil, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, preMarket)
		assert.True(t, d.Buy)
	})

	t.Run("pre-market rejected without extended hours", func(t *testing.T) {
		cfg := defaultTrading()
		cfg.AllowExtendedHours = false
		e := NewEvaluator(cfg, nil, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, preMarket)
		assert.False(t, d.Buy)
		assert.Equal(t, "outside session window", d.Reason)
	})
}

// stubSentiment returns a fixed label.
type stubSentiment struct {
	label string
}

func (s stubSentiment) Sentiment(_ context.Context, _ string) (string, float64) {
	return s.label, 0.5
}

func TestEvaluate_SentimentVeto(t *testing.T) {
	closes, vols := breakoutCloses(10)
	bars := makeBars(closes, vols)

	cfg := defaultTrading()
	cfg.UseSentimentFilter = true

	t.Run("negative label vetoes technicals", func(t *testing.T) {
		e := NewEvaluator(cfg, stubSentiment{label: "negative"}, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, regularSession)
		assert.False(t, d.Buy)
		assert.Equal(t, "negative sentiment", d.Reason)
	})

	t.Run("neutral label does not", func(t *testing.T) {
		e := NewEvaluator(cfg, stubSentiment{label: "neutral"}, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, regularSession)
		assert.True(t, d.Buy)
	})

	t.Run("filter disabled ignores provider", func(t *testing.T) {
		off := defaultTrading()
		e := NewEvaluator(off, stubSentiment{label: "negative"}, zap.NewNop())
		d := e.Evaluate(context.Background(), "AAPL", bars, regularSession)
		assert.True(t, d.Buy)
	})
}

func TestEvaluate_DynamicThresholds(t *testing.T) {
	closes, vols := breakoutCloses(10)
	bars := makeBars(closes, vols)

	// The fixture's bars have a constant high-low range of 2 over a close
	// of 108, so atrPct is about 1.85% and the RSI ceiling drops from 65
	// to about 63.1 - still above the fixture's RSI of 61.1.
	cfg := defaultTrading()
	cfg.UseDynamicThresholds = true
	e := NewEvaluator(cfg, nil, zap.NewNop())
	d := e.Evaluate(context.Background(), "AAPL", bars, regularSession)
	assert.True(t, d.Buy, "reason: %s", d.Reason)
}
