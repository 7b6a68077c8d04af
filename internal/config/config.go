// Package config provides configuration management for the valuation service.
package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Defaults applied by Load when the corresponding field is unset.
const (
	// defaultPortfolioValue is used when sizing.portfolio_value is unset
	defaultPortfolioValue = 100000.0
	// defaultQuantity is the contract count for tracked positions
	defaultQuantity = 1
	// defaultStoragePath is used when storage.path is unset
	defaultStoragePath = "positions.json"
	// defaultDashboardPort is used when dashboard.port is unset
	defaultDashboardPort = 9880
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Valuations  []ValuationConfig `yaml:"valuations"`
	Engine      EngineConfig      `yaml:"engine"`
	Sizing      SizingConfig      `yaml:"sizing"`
	Storage     StorageConfig     `yaml:"storage"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// ValuationConfig is one symbol/strategy pair to value each pass.
type ValuationConfig struct {
	Symbol   string `yaml:"symbol"`
	Strategy string `yaml:"strategy"`
	// Quantity is the contract count used when tracking the result
	Quantity int `yaml:"quantity"`
}

// EngineConfig defines the valuation engine thresholds.
type EngineConfig struct {
	Validator ValidatorConfig `yaml:"validator"`
	Strangle  StrangleConfig  `yaml:"strangle"`
	Condor    SpreadConfig    `yaml:"condor"`
	Butterfly SpreadConfig    `yaml:"butterfly"`
}

// ValidatorConfig defines market data sanity-check thresholds.
type ValidatorConfig struct {
	// MaxSpreadRatio flags contracts whose spread exceeds this fraction of
	// the midpoint
	MaxSpreadRatio float64 `yaml:"max_spread_ratio"`
	// MaxOTMPremiumRatio rejects OTM premiums above this fraction of spot
	MaxOTMPremiumRatio float64 `yaml:"max_otm_premium_ratio"`
	// IntrinsicTolerance is the dollar slack before an ITM premium below
	// intrinsic is rejected
	IntrinsicTolerance float64 `yaml:"intrinsic_tolerance"`
}

// StrangleConfig defines strangle strike-selection parameters.
type StrangleConfig struct {
	ShortWidthFactor float64 `yaml:"short_width_factor"`
}

// SpreadConfig defines wing parameters for defined-risk spreads.
type SpreadConfig struct {
	WingWidthRatio float64 `yaml:"wing_width_ratio"`
}

// SizingConfig defines position-sizing parameters.
type SizingConfig struct {
	PortfolioValue           float64 `yaml:"portfolio_value"`
	UnlimitedRiskCapPct      float64 `yaml:"unlimited_risk_cap_pct"`
	DefinedRiskAllocationPct float64 `yaml:"defined_risk_allocation_pct"`
}

// StorageConfig defines storage settings for tracked position data.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig defines the read-only dashboard server settings.
type DashboardConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Environment.LogLevel == "" {
		c.Environment.LogLevel = "info"
	}
	if c.Sizing.PortfolioValue == 0 {
		c.Sizing.PortfolioValue = defaultPortfolioValue
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultStoragePath
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = defaultDashboardPort
	}
	for i := range c.Valuations {
		if c.Valuations[i].Quantity == 0 {
			c.Valuations[i].Quantity = defaultQuantity
		}
	}
}

// Validate checks that all configuration values are valid and consistent.
// Engine threshold ranges are validated again by engine.New; this catches
// config-file mistakes with file-oriented messages.
func (c *Config) Validate() error {
	switch c.Environment.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be debug, info, warn or error")
	}

	if len(c.Valuations) == 0 {
		return fmt.Errorf("at least one valuation is required")
	}
	for i, v := range c.Valuations {
		if strings.TrimSpace(v.Symbol) == "" {
			return fmt.Errorf("valuations[%d].symbol is required", i)
		}
		if strings.TrimSpace(v.Strategy) == "" {
			return fmt.Errorf("valuations[%d].strategy is required", i)
		}
		if v.Quantity <= 0 {
			return fmt.Errorf("valuations[%d].quantity must be > 0", i)
		}
	}

	if c.Engine.Validator.MaxSpreadRatio < 0 {
		return fmt.Errorf("engine.validator.max_spread_ratio must be >= 0")
	}
	if c.Engine.Strangle.ShortWidthFactor != 0 && c.Engine.Strangle.ShortWidthFactor < 1 {
		return fmt.Errorf("engine.strangle.short_width_factor must be >= 1")
	}
	if c.Engine.Condor.WingWidthRatio < 0 || c.Engine.Butterfly.WingWidthRatio < 0 {
		return fmt.Errorf("engine wing_width_ratio values must be >= 0")
	}

	if c.Sizing.PortfolioValue <= 0 {
		return fmt.Errorf("sizing.portfolio_value must be > 0")
	}
	if c.Sizing.UnlimitedRiskCapPct < 0 || c.Sizing.UnlimitedRiskCapPct > 0.01 {
		return fmt.Errorf("sizing.unlimited_risk_cap_pct must be in [0, 0.01]")
	}
	if c.Sizing.DefinedRiskAllocationPct < 0 || c.Sizing.DefinedRiskAllocationPct > 1 {
		return fmt.Errorf("sizing.defined_risk_allocation_pct must be in [0, 1]")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be a valid port")
	}

	return nil
}
