package alpaca

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/market"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	liveBaseURL  = "https://api.alpaca.markets"
	paperBaseURL = "https://paper-api.alpaca.markets"
	dataBaseURL  = "https://data.alpaca.markets"

	OrderSideBuy   = "buy"
	OrderSideSell  = "sell"
	OrderTypeLimit = "limit"
	TimeInForceGTC = "gtc"

	// Bars lookback windows; the longer one is the fallback when the short
	// window comes back empty (thin pre-market data, long weekends).
	defaultLookback  = 3 * 24 * time.Hour
	fallbackLookback = 10 * 24 * time.Hour

	barsPageLimit = 10000
)

// ClientInterface defines the broker operations the engine depends on.
type ClientInterface interface {
	ListTradableSymbols(ctx context.Context) ([]string, error)
	GetBars(ctx context.Context, symbol string) ([]market.Bar, error)
	GetRecentBars(ctx context.Context, symbols []string, lookback time.Duration) (map[string]market.Bar, error)
	SubmitLimitOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
}

// Client is a client for the Alpaca trading and market data REST APIs.
// It implements ClientInterface.
type Client struct {
	trading *resty.Client
	data    *resty.Client
	feed    string
	logger  *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Alpaca REST API client.
func NewClient(cfg *config.Alpaca, logger *zap.Logger) *Client {
	baseURL := liveBaseURL
	if cfg.Paper {
		baseURL = paperBaseURL
		logger.Warn("Using Alpaca paper trading API")
	} else {
		logger.Info("Using Alpaca live trading API")
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	headers := map[string]string{
		"APCA-API-KEY-ID":     cfg.ApiKey,
		"APCA-API-SECRET-KEY": cfg.SecretKey,
	}

	trading := resty.New().SetBaseURL(baseURL).SetTimeout(timeout).SetHeaders(headers)
	data := resty.New().SetBaseURL(dataBaseURL).SetTimeout(timeout).SetHeaders(headers)

	return &Client{
		trading: trading,
		data:    data,
		feed:    cfg.Feed(),
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
		now:     time.Now,
	}
}

// doRequest executes one rate-limited request. There is no in-cycle retry:
// the next scheduled cycle is the retry path for transient failures.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", url))
	resp, err := req.SetContext(ctx).Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
	}
	return resp, nil
}

// Asset is one entry from the assets endpoint.
type Asset struct {
	Symbol     string `json:"symbol"`
	Exchange   string `json:"exchange"`
	Status     string `json:"status"`
	Tradable   bool   `json:"tradable"`
	Marginable bool   `json:"marginable"`
}

// ListTradableSymbols returns the active, marginable NYSE and NASDAQ symbols.
func (c *Client) ListTradableSymbols(ctx context.Context) ([]string, error) {
	var assets []Asset

	req := c.trading.R().
		SetResult(&assets).
		SetQueryParam("status", "active")

	if _, err := c.doRequest(ctx, "GET", "/v2/assets", req); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		if (a.Exchange == "NYSE" || a.Exchange == "NASDAQ") && a.Marginable {
			symbols = append(symbols, a.Symbol)
		}
	}
	return symbols, nil
}

// barsResponse is one page of the single-symbol bars endpoint.
type barsResponse struct {
	Bars          []market.Bar `json:"bars"`
	NextPageToken string       `json:"next_page_token"`
}

// GetBars fetches minute bars for one symbol over the default lookback,
// falling back to the longer window when the short one returns nothing.
// Zero-volume bars are dropped and the previous-close field is attached.
func (c *Client) GetBars(ctx context.Context, symbol string) ([]market.Bar, error) {
	bars, err := c.fetchBars(ctx, symbol, defaultLookback)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		bars, err = c.fetchBars(ctx, symbol, fallbackLookback)
		if err != nil {
			return nil, err
		}
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars returned for %s", symbol)
	}

	filtered := bars[:0]
	for _, b := range bars {
		if b.Volume > 0 {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no bars with volume for %s", symbol)
	}

	market.AttachPrevClose(filtered)
	return filtered, nil
}

func (c *Client) fetchBars(ctx context.Context, symbol string, lookback time.Duration) ([]market.Bar, error) {
	end := c.now().UTC()
	start := end.Add(-lookback)

	var all []market.Bar
	pageToken := ""
	for {
		var page barsResponse
		req := c.data.R().
			SetResult(&page).
			SetQueryParams(map[string]string{
				"timeframe":  "1Min",
				"start":      start.Format(time.RFC3339),
				"end":        end.Format(time.RFC3339),
				"feed":       c.feed,
				"adjustment": "raw",
				"limit":      strconv.Itoa(barsPageLimit),
			})
		if pageToken != "" {
			req.SetQueryParam("page_token", pageToken)
		}

		url := fmt.Sprintf("/v2/stocks/%s/bars", symbol)
		if _, err := c.doRequest(ctx, "GET", url, req); err != nil {
			return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
		}

		all = append(all, page.Bars...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return all, nil
}

// multiBarsResponse is the multi-symbol bars endpoint payload.
type multiBarsResponse struct {
	Bars map[string][]market.Bar `json:"bars"`
}

// GetRecentBars fetches the latest minute bar for each symbol in one request
// over a short lookback window. Symbols without a bar in the window are
// absent from the result.
func (c *Client) GetRecentBars(ctx context.Context, symbols []string, lookback time.Duration) (map[string]market.Bar, error) {
	if len(symbols) == 0 {
		return map[string]market.Bar{}, nil
	}

	end := c.now().UTC()
	start := end.Add(-lookback)

	var result multiBarsResponse
	req := c.data.R().
		SetResult(&result).
		SetQueryParams(map[string]string{
			"symbols":   strings.Join(symbols, ","),
			"timeframe": "1Min",
			"start":     start.Format(time.RFC3339),
			"end":       end.Format(time.RFC3339),
			"feed":      c.feed,
		})

	if _, err := c.doRequest(ctx, "GET", "/v2/stocks/bars", req); err != nil {
		return nil, fmt.Errorf("failed to get recent bars: %w", err)
	}

	latest := make(map[string]market.Bar, len(result.Bars))
	for sym, bars := range result.Bars {
		if len(bars) > 0 {
			latest[sym] = bars[len(bars)-1]
		}
	}
	return latest, nil
}

// OrderRequest describes a limit order submission.
type OrderRequest struct {
	Symbol        string
	Qty           float64
	Side          string
	LimitPrice    float64
	ExtendedHours bool
}

// OrderResponse is the accepted-order payload from the orders endpoint.
type OrderResponse struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"client_order_id"`
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	LimitPrice    string `json:"limit_price"`
	Status        string `json:"status"`
}

// SubmitLimitOrder places a GTC limit order. Callers are expected to log a
// failure and continue; order submission must never abort a trading cycle.
func (c *Client) SubmitLimitOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	body := map[string]interface{}{
		"symbol":         order.Symbol,
		"qty":            strconv.FormatFloat(order.Qty, 'f', -1, 64),
		"side":           order.Side,
		"type":           OrderTypeLimit,
		"time_in_force":  TimeInForceGTC,
		"limit_price":    strconv.FormatFloat(order.LimitPrice, 'f', -1, 64),
		"extended_hours": order.ExtendedHours,
	}

	req := c.trading.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&OrderResponse{})

	resp, err := c.doRequest(ctx, "POST", "/v2/orders", req)
	if err != nil {
		c.logger.Error("Failed to submit order",
			zap.Error(err),
			zap.String("symbol", order.Symbol),
			zap.String("side", order.Side),
		)
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	result := resp.Result().(*OrderResponse)
	c.logger.Info("Order submitted",
		zap.String("symbol", result.Symbol),
		zap.String("side", result.Side),
		zap.String("status", result.Status),
	)
	return result, nil
}
