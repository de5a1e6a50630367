package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application. It is constructed once
// at startup and passed into the components that need it.
type Config struct {
	Alpaca    Alpaca    `mapstructure:"alpaca"`
	Trading   Trading   `mapstructure:"trading"`
	Screener  Screener  `mapstructure:"screener"`
	Sentiment Sentiment `mapstructure:"sentiment"`
	Notify    Notify    `mapstructure:"notify"`
	Logger    Logger    `mapstructure:"logger"`
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
}

// Alpaca holds the configuration for the Alpaca trading and data APIs.
type Alpaca struct {
	ApiKey         string  `mapstructure:"apiKey"`
	SecretKey      string  `mapstructure:"secretKey"`
	Paper          bool    `mapstructure:"paper"`
	DataFeed       string  `mapstructure:"data_feed"` // empty: sip for live, iex for paper
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSec     int     `mapstructure:"timeout_sec"`
}

// Server holds the configuration for the status/dashboard HTTP servers.
type Server struct {
	Port   int `mapstructure:"port"`    // trader status server; 0 disables it
	UIPort int `mapstructure:"ui_port"` // dashboard server
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Trading holds the strategy thresholds and feature flags.
type Trading struct {
	OrderQty             float64 `mapstructure:"order_qty"`
	TakeProfitRate       float64 `mapstructure:"take_profit_rate"`
	TrailingStopRate     float64 `mapstructure:"trailing_stop_rate"`
	StopLossEnabled      bool    `mapstructure:"stop_loss_enabled"`
	StopLossRate         float64 `mapstructure:"stop_loss_rate"`
	UseSentimentFilter   bool    `mapstructure:"use_sentiment_filter"`
	UseDynamicThresholds bool    `mapstructure:"use_dynamic_thresholds"`
	AllowExtendedHours   bool    `mapstructure:"allow_extended_hours"`
	TickInterval         int     `mapstructure:"tick_interval"` // seconds; 0 runs a single cycle
}

// Screener holds the universe screening parameters.
type Screener struct {
	TopN            int `mapstructure:"top_n"`
	ChunkSize       int `mapstructure:"chunk_size"`
	Workers         int `mapstructure:"workers"`
	LookbackMinutes int `mapstructure:"lookback_minutes"`
}

// Sentiment holds the configuration for the sentiment analysis service.
type Sentiment struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// Notify holds the configuration for outbound notifications.
type Notify struct {
	SlackWebhookURL string `mapstructure:"slack_webhook_url"`
	TimeoutSec      int    `mapstructure:"timeout_sec"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("alpaca.rate_limit", 3) // requests per second
	viper.SetDefault("alpaca.rate_limit_burst", 5)
	viper.SetDefault("alpaca.timeout_sec", 10)
	viper.SetDefault("trading.order_qty", 2)
	viper.SetDefault("trading.take_profit_rate", 0.05)
	viper.SetDefault("trading.trailing_stop_rate", 0.03)
	viper.SetDefault("trading.stop_loss_enabled", true)
	viper.SetDefault("trading.stop_loss_rate", 0.03)
	viper.SetDefault("trading.allow_extended_hours", true)
	viper.SetDefault("screener.top_n", 100)
	viper.SetDefault("screener.chunk_size", 200)
	viper.SetDefault("screener.workers", 8)
	viper.SetDefault("screener.lookback_minutes", 5)
	viper.SetDefault("sentiment.timeout_sec", 2)
	viper.SetDefault("notify.timeout_sec", 3)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("server.ui_port", 8081)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// Feed returns the configured market data feed, defaulting to sip for live
// trading and iex for paper accounts.
func (a Alpaca) Feed() string {
	if a.DataFeed != "" {
		return a.DataFeed
	}
	if a.Paper {
		return "iex"
	}
	return "sip"
}
