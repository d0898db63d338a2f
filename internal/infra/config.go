package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SymbolLimits are optional per-symbol sizing overrides.
type SymbolLimits struct {
	MaxQuote    decimal.Decimal `yaml:"max_quote"`
	MinNotional decimal.Decimal `yaml:"min_notional"`
}

// Config holds all application settings. Secrets are overridden from
// environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			RestURL   string `yaml:"rest_url"`
			WSURL     string `yaml:"ws_url"`
			APIKey    string `yaml:"api_key"`
			APISecret string `yaml:"api_secret"`
		} `yaml:"binance"`
		Listen    string `yaml:"listen"`
		AuthToken string `yaml:"auth_token"`
	} `yaml:"api"`

	Trading struct {
		Pairs            []string                `yaml:"pairs"`
		QuoteAsset       string                  `yaml:"quote_asset"`
		CycleIntervalSec int                     `yaml:"cycle_interval_sec"`
		ErrorBackoffSec  int                     `yaml:"error_backoff_sec"`
		BalanceThreshold decimal.Decimal         `yaml:"balance_threshold"`
		PositionPct      decimal.Decimal         `yaml:"position_pct"`
		MaxQuote         decimal.Decimal         `yaml:"max_quote"`
		MinNotional      decimal.Decimal         `yaml:"min_notional"`
		CandleInterval   string                  `yaml:"candle_interval"`
		CandleLimit      int                     `yaml:"candle_limit"`
		ShortWindow      int                     `yaml:"short_window"`
		LongWindow       int                     `yaml:"long_window"`
		Limits           map[string]SymbolLimits `yaml:"limits"`
		AutoStart        bool                    `yaml:"auto_start"`
	} `yaml:"trading"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies defaults,
// environment overrides and validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields with the stock trading parameters.
func (c *Config) applyDefaults() {
	if len(c.Trading.Pairs) == 0 {
		c.Trading.Pairs = []string{"BTCUSDT", "ETHUSDT"}
	}
	if c.Trading.QuoteAsset == "" {
		c.Trading.QuoteAsset = "USDT"
	}
	if c.Trading.CycleIntervalSec <= 0 {
		c.Trading.CycleIntervalSec = 30
	}
	if c.Trading.ErrorBackoffSec <= 0 {
		c.Trading.ErrorBackoffSec = 60
	}
	if c.Trading.BalanceThreshold.IsZero() {
		c.Trading.BalanceThreshold = decimal.NewFromInt(10)
	}
	if c.Trading.PositionPct.IsZero() {
		c.Trading.PositionPct = decimal.NewFromFloat(0.05)
	}
	if c.Trading.MaxQuote.IsZero() {
		c.Trading.MaxQuote = decimal.NewFromInt(50)
	}
	if c.Trading.MinNotional.IsZero() {
		c.Trading.MinNotional = decimal.NewFromInt(10)
	}
	if c.Trading.CandleInterval == "" {
		c.Trading.CandleInterval = "15m"
	}
	if c.Trading.CandleLimit <= 0 {
		c.Trading.CandleLimit = 50
	}
	if c.Trading.ShortWindow <= 0 {
		c.Trading.ShortWindow = 10
	}
	if c.Trading.LongWindow <= 0 {
		c.Trading.LongWindow = 20
	}
	if c.API.Binance.RestURL == "" {
		c.API.Binance.RestURL = "https://api.binance.com"
	}
	if c.API.Binance.WSURL == "" {
		c.API.Binance.WSURL = "wss://stream.binance.com:9443/ws"
	}
	if c.API.Listen == "" {
		c.API.Listen = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/bot.db"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if len(c.Trading.Pairs) == 0 {
		return fmt.Errorf("at least one trading pair is required")
	}
	for _, p := range c.Trading.Pairs {
		if len(p) <= len(c.Trading.QuoteAsset) || !strings.HasSuffix(p, c.Trading.QuoteAsset) {
			return fmt.Errorf("pair %q does not settle in quote asset %q", p, c.Trading.QuoteAsset)
		}
	}
	if c.Trading.ShortWindow >= c.Trading.LongWindow {
		return fmt.Errorf("short window (%d) must be less than long window (%d)",
			c.Trading.ShortWindow, c.Trading.LongWindow)
	}
	if c.Trading.CandleLimit < c.Trading.LongWindow {
		return fmt.Errorf("candle limit (%d) must cover the long window (%d)",
			c.Trading.CandleLimit, c.Trading.LongWindow)
	}
	if c.Trading.PositionPct.IsNegative() || c.Trading.PositionPct.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("position pct must be within (0, 1]")
	}
	if !strings.HasPrefix(c.API.Binance.WSURL, "ws://") && !strings.HasPrefix(c.API.Binance.WSURL, "wss://") {
		return fmt.Errorf("invalid Binance WS URL: %s", c.API.Binance.WSURL)
	}
	return nil
}

// CycleInterval returns the delay between successful cycles.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Trading.CycleIntervalSec) * time.Second
}

// ErrorBackoff returns the delay after a cycle-level fault.
func (c *Config) ErrorBackoff() time.Duration {
	return time.Duration(c.Trading.ErrorBackoffSec) * time.Second
}

// overrideWithEnv overrides settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("BINANCE_API_KEY"); key != "" {
		cfg.API.Binance.APIKey = key
	}
	if secret := os.Getenv("BINANCE_API_SECRET"); secret != "" {
		cfg.API.Binance.APISecret = secret
	}
	if token := os.Getenv("API_AUTH_TOKEN"); token != "" {
		cfg.API.AuthToken = token
	}
	if pairs := os.Getenv("TRADING_PAIRS"); pairs != "" {
		cfg.Trading.Pairs = splitPairs(pairs)
	}
}

func splitPairs(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
