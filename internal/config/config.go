// Package config loads application configuration from a YAML file with
// environment-variable overrides for secrets and connection strings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tokenscout/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	// Scan loop
	ScanInterval  time.Duration    `yaml:"scan_interval"`
	NetworkPause  time.Duration    `yaml:"network_pause"`
	ScanNetworks  []domain.Network `yaml:"scan_networks"`
	Watchlist     []string         `yaml:"watchlist"` // token addresses bypassing the velocity floor

	// Re-alert policy
	ReAlert ReAlertConfig `yaml:"re_alert"`

	// Security oracle
	Security SecurityConfig `yaml:"security"`

	// External endpoints
	MarketDataURL  string        `yaml:"market_data_url"`
	PriceStreamURL string        `yaml:"price_stream_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RatePerMinute  int           `yaml:"rate_per_minute"`

	// Storage
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // optional; tick store disabled when empty

	// Notification
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID string `yaml:"telegram_chat_id"`

	// Observability
	MetricsAddr string `yaml:"metrics_addr"`

	// Per-network heuristics; merged over DefaultNetworks.
	Networks map[domain.Network]NetworkConfig `yaml:"networks"`
}

// ReAlertConfig tunes the anti-spam state machine.
type ReAlertConfig struct {
	TP1TolerancePct float64       `yaml:"tp1_tolerance_pct"` // e.g. 0.5
	MovePct         float64       `yaml:"move_pct"`          // e.g. 5
	MinInterval     time.Duration `yaml:"min_interval"`      // e.g. 4h
}

// SecurityConfig tunes the security-oracle veto.
type SecurityConfig struct {
	MinScore float64 `yaml:"min_score"` // candidates below this are dropped
	Enabled  bool    `yaml:"enabled"`
}

// Default returns a Config with production defaults applied.
func Default() *Config {
	return &Config{
		ScanInterval: 5 * time.Minute,
		NetworkPause: 2 * time.Second,
		ScanNetworks: []domain.Network{
			domain.NetworkEth, domain.NetworkSolana, domain.NetworkBsc,
			domain.NetworkBase, domain.NetworkAvax,
		},
		ReAlert: ReAlertConfig{
			TP1TolerancePct: 0.5,
			MovePct:         5,
			MinInterval:     4 * time.Hour,
		},
		Security: SecurityConfig{
			MinScore: 60,
			Enabled:  true,
		},
		MarketDataURL:  "https://api.geckoterminal.com/api/v2",
		RequestTimeout: 10 * time.Second,
		RatePerMinute:  30,
		MetricsAddr:    ":9090",
		Networks:       DefaultNetworks(),
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. An empty path skips the file and uses defaults + env only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and DSNs from the environment. The cmd layer is
// expected to have loaded .env via godotenv before calling Load.
func (c *Config) applyEnv() {
	if v := os.Getenv("TOKENSCOUT_POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("TOKENSCOUT_CLICKHOUSE_DSN"); v != "" {
		c.ClickhouseDSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.TelegramChatID = v
	}
	if v := os.Getenv("TOKENSCOUT_MARKET_DATA_URL"); v != "" {
		c.MarketDataURL = v
	}
}

func (c *Config) validate() error {
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan_interval must be positive")
	}
	if len(c.ScanNetworks) == 0 {
		return fmt.Errorf("scan_networks must not be empty")
	}
	for net, nc := range c.Networks {
		lv := nc.Levels
		if lv.StopLossPct >= 0 {
			return fmt.Errorf("network %s: stop_loss_pct must be negative", net)
		}
		if !(lv.TP1Pct > 0 && lv.TP1Pct < lv.TP2Pct && lv.TP2Pct < lv.TP3Pct) {
			return fmt.Errorf("network %s: tp percents must ascend", net)
		}
	}
	return nil
}

// NetworkTable returns the merged per-network table: file entries override
// defaults field-wise only when the file provided the network at all.
func (c *Config) NetworkTable() Networks {
	table := DefaultNetworks()
	for net, nc := range c.Networks {
		table[net] = nc
	}
	return table
}

// InWatchlist reports whether a token address is watched: it bypasses the
// velocity floor and its alerts carry the ULTRA_HIGH grade.
func (c *Config) InWatchlist(tokenAddress string) bool {
	for _, a := range c.Watchlist {
		if a == tokenAddress {
			return true
		}
	}
	return false
}
