package notify

import (
	"context"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier posts fire-and-forget text messages to a Slack-style webhook.
// Delivery failures are logged at debug level and otherwise discarded.
// An empty webhook URL disables notifications entirely.
type Notifier struct {
	client     *resty.Client
	webhookURL string
	logger     *zap.Logger
}

// New creates a notifier.
func New(cfg *config.Notify, logger *zap.Logger) *Notifier {
	client := resty.New().SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second)
	return &Notifier{
		client:     client,
		webhookURL: cfg.SlackWebhookURL,
		logger:     logger.Named("notify"),
	}
}

// Send posts a text message. It never returns an error.
func (n *Notifier) Send(ctx context.Context, message string) {
	if n.webhookURL == "" {
		return
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": message}).
		Post(n.webhookURL)
	if err != nil || resp.IsError() {
		n.logger.Debug("Notification dropped", zap.Error(err))
	}
}
