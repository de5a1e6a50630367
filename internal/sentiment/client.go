package sentiment

import (
	"context"
	"fmt"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Sentiment labels returned by the analysis service.
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// Client queries the external sentiment-scoring service. Any failure -
// network, timeout, bad status, malformed body - degrades to a neutral
// result; sentiment must never block a trading cycle.
type Client struct {
	client *resty.Client
	logger *zap.Logger
}

// NewClient creates a sentiment client.
func NewClient(cfg *config.Sentiment, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second)

	return &Client{client: client, logger: logger.Named("sentiment")}
}

type sentimentResponse struct {
	Signal string  `json:"signal"`
	Score  float64 `json:"score"`
}

// Sentiment returns the label and score for a symbol, or (neutral, 0.0) when
// the service is unavailable or answers with anything unexpected.
func (c *Client) Sentiment(ctx context.Context, symbol string) (string, float64) {
	var result sentimentResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/sentiment/%s", symbol))
	if err != nil || resp.IsError() {
		c.logger.Warn("Sentiment lookup failed, defaulting to neutral",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return LabelNeutral, 0.0
	}

	switch result.Signal {
	case LabelPositive, LabelNeutral, LabelNegative:
		return result.Signal, result.Score
	default:
		return LabelNeutral, 0.0
	}
}
