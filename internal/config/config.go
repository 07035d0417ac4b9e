// Package config provides configuration management for the scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"ff-scanner/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Scanning  ScanningConfig  `mapstructure:"scanning"`
	Liquidity LiquidityConfig `mapstructure:"liquidity"`
	Signal    SignalConfig    `mapstructure:"forward_factor"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ScanningConfig holds scan-wide settings.
type ScanningConfig struct {
	MaxTickers int `mapstructure:"max_tickers"`
	Workers    int `mapstructure:"workers"`
}

// LiquidityConfig holds the liquidity filter thresholds. Passed by value into
// the filter so a running scan never observes a threshold change.
type LiquidityConfig struct {
	MinVolume        int64   `mapstructure:"min_volume"`
	MinOpenInterest  int64   `mapstructure:"min_open_interest"`
	MaxSpreadPct     float64 `mapstructure:"max_bid_ask_spread_pct"`
	MinBid           float64 `mapstructure:"min_bid"`
	MinAsk           float64 `mapstructure:"min_ask"`
	MaxSpreadAbs     float64 `mapstructure:"max_bid_ask_spread_abs"`
	MinMidPrice      float64 `mapstructure:"min_mid_price"`
	MinVolumeOIRatio float64 `mapstructure:"min_volume_oi_ratio"`
	MaxDTE           int     `mapstructure:"max_days_to_expiration"`
	MinDTE           int     `mapstructure:"min_days_to_expiration"`
}

// SignalConfig holds Forward Factor signal thresholds.
type SignalConfig struct {
	BullishThreshold float64 `mapstructure:"bullish_threshold"`
	BearishThreshold float64 `mapstructure:"bearish_threshold"`
	MinConfidence    float64 `mapstructure:"min_confidence"`
	MaxOpportunities int     `mapstructure:"max_opportunities"`
}

// OutputConfig holds result persistence settings.
type OutputConfig struct {
	SaveCSV        bool   `mapstructure:"save_csv"`
	SaveJSON       bool   `mapstructure:"save_json"`
	SaveDB         bool   `mapstructure:"save_db"`
	ResultsDir     string `mapstructure:"results_directory"`
	TimestampFiles bool   `mapstructure:"timestamp_files"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console_logging"`
	File    bool   `mapstructure:"file_logging"`
}

// DefaultLiquidityConfig returns the default liquidity thresholds.
func DefaultLiquidityConfig() LiquidityConfig {
	return LiquidityConfig{
		MinVolume:        50,
		MinOpenInterest:  100,
		MaxSpreadPct:     10.0,
		MinBid:           0.05,
		MinAsk:           0.10,
		MaxSpreadAbs:     2.0,
		MinMidPrice:      0.10,
		MinVolumeOIRatio: 0.1,
		MaxDTE:           90,
		MinDTE:           7,
	}
}

// DefaultSignalConfig returns the default Forward Factor signal thresholds.
func DefaultSignalConfig() SignalConfig {
	return SignalConfig{
		BullishThreshold: 5.0,
		BearishThreshold: -5.0,
		MinConfidence:    30.0,
		MaxOpportunities: 20,
	}
}

// Default returns the full default configuration.
func Default() *Config {
	return &Config{
		Scanning:  ScanningConfig{MaxTickers: 50, Workers: 4},
		Liquidity: DefaultLiquidityConfig(),
		Signal:    DefaultSignalConfig(),
		Output: OutputConfig{
			SaveCSV:        true,
			SaveJSON:       true,
			SaveDB:         true,
			ResultsDir:     "results",
			TimestampFiles: true,
		},
		Logging: LoggingConfig{Level: "info", Console: true, File: true},
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/ff-scanner"
	}
	return filepath.Join(home, ".config", "ff-scanner")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// First run: write a template so the user has something to edit,
			// and carry on with defaults.
			if werr := createTemplateConfig(configDir); werr != nil {
				return nil, fmt.Errorf("writing config template: %w", werr)
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scanning.max_tickers", cfg.Scanning.MaxTickers)
	v.SetDefault("scanning.workers", cfg.Scanning.Workers)

	v.SetDefault("liquidity.min_volume", cfg.Liquidity.MinVolume)
	v.SetDefault("liquidity.min_open_interest", cfg.Liquidity.MinOpenInterest)
	v.SetDefault("liquidity.max_bid_ask_spread_pct", cfg.Liquidity.MaxSpreadPct)
	v.SetDefault("liquidity.min_bid", cfg.Liquidity.MinBid)
	v.SetDefault("liquidity.min_ask", cfg.Liquidity.MinAsk)
	v.SetDefault("liquidity.max_bid_ask_spread_abs", cfg.Liquidity.MaxSpreadAbs)
	v.SetDefault("liquidity.min_mid_price", cfg.Liquidity.MinMidPrice)
	v.SetDefault("liquidity.min_volume_oi_ratio", cfg.Liquidity.MinVolumeOIRatio)
	v.SetDefault("liquidity.max_days_to_expiration", cfg.Liquidity.MaxDTE)
	v.SetDefault("liquidity.min_days_to_expiration", cfg.Liquidity.MinDTE)

	v.SetDefault("forward_factor.bullish_threshold", cfg.Signal.BullishThreshold)
	v.SetDefault("forward_factor.bearish_threshold", cfg.Signal.BearishThreshold)
	v.SetDefault("forward_factor.min_confidence", cfg.Signal.MinConfidence)
	v.SetDefault("forward_factor.max_opportunities", cfg.Signal.MaxOpportunities)

	v.SetDefault("output.save_csv", cfg.Output.SaveCSV)
	v.SetDefault("output.save_json", cfg.Output.SaveJSON)
	v.SetDefault("output.save_db", cfg.Output.SaveDB)
	v.SetDefault("output.results_directory", cfg.Output.ResultsDir)
	v.SetDefault("output.timestamp_files", cfg.Output.TimestampFiles)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console_logging", cfg.Logging.Console)
	v.SetDefault("logging.file_logging", cfg.Logging.File)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FF_SCANNER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FF_SCANNER_RESULTS_DIR"); v != "" {
		cfg.Output.ResultsDir = v
	}
	if v := os.Getenv("FF_SCANNER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scanning.Workers = n
		}
	}
}

// Validate validates the configuration. A malformed configuration is a
// programming/setup error and is fatal, unlike per-contract data problems.
func (c *Config) Validate() error {
	if c.Scanning.MaxTickers <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "scanning.max_tickers must be positive")
	}
	if c.Scanning.Workers <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "scanning.workers must be positive")
	}

	l := c.Liquidity
	if l.MinVolume < 0 || l.MinOpenInterest < 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "liquidity minimum volume/open interest must be non-negative")
	}
	if l.MaxSpreadPct <= 0 || l.MaxSpreadAbs <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "liquidity spread limits must be positive")
	}
	if l.MinBid < 0 || l.MinAsk < 0 || l.MinMidPrice < 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "liquidity price floors must be non-negative")
	}
	if l.MinVolumeOIRatio < 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "liquidity.min_volume_oi_ratio must be non-negative")
	}
	if l.MinDTE < 0 || l.MaxDTE < l.MinDTE {
		return errors.Wrapf(errors.ErrConfigInvalid, "liquidity DTE window invalid: [%d, %d]", l.MinDTE, l.MaxDTE)
	}

	if c.Signal.BullishThreshold <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "forward_factor.bullish_threshold must be positive")
	}
	if c.Signal.BearishThreshold >= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "forward_factor.bearish_threshold must be negative")
	}
	if c.Signal.MinConfidence < 0 || c.Signal.MinConfidence > 100 {
		return errors.Wrap(errors.ErrConfigInvalid, "forward_factor.min_confidence must be between 0 and 100")
	}

	return nil
}
