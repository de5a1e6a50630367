package main

import (
	"testing"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/sentiment"
	tradesignal "alpaca-trade-bot-go/internal/signal"
	"go.uber.org/zap"
)

// The optional sentiment client is wired into the evaluator through the
// provider seam.
var _ tradesignal.SentimentProvider = (*sentiment.Client)(nil)

func TestEvaluatorAcceptsNilProvider(t *testing.T) {
	// With the sentiment filter disabled main passes a nil provider.
	e := tradesignal.NewEvaluator(config.Trading{}, nil, zap.NewNop())
	if e == nil {
		t.Fatal("expected an evaluator")
	}
}
