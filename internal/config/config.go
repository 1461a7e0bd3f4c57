package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stock-backtest/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load portfolio parameters from a separate YAML (e.g. examples/portfolios/*.yaml).
	// If both PortfolioFile and Portfolio are provided, Portfolio overrides PortfolioFile.
	PortfolioFile string          `yaml:"portfolio_file"`
	Portfolio     PortfolioConfig `yaml:"portfolio"`
	Strategy      StrategyConfig  `yaml:"strategy"`
	Data          DataConfig      `yaml:"data"`

	// Optional run window, YYYY-MM-DD. Empty means the full dataset range.
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`

	// Annual risk-free rate for metric calculations (0 uses the default).
	RiskFreeRate float64 `yaml:"risk_free_rate"`
}

type PortfolioConfig struct {
	Name              string  `yaml:"name"`
	InitialCapital    float64 `yaml:"initial_capital"`
	SizingMethod      string  `yaml:"sizing_method"`
	SizingValue       float64 `yaml:"sizing_value"`
	MaxTradesPerWeek  int     `yaml:"max_trades_per_week"`
	MaxTradesPerMonth int     `yaml:"max_trades_per_month"`
	MaxPositions      int     `yaml:"max_positions"`
	BrokerageRate     float64 `yaml:"brokerage_rate"`
	TransactionRate   float64 `yaml:"transaction_rate"`
	STTRate           float64 `yaml:"stt_rate"`
	SlippageRate      float64 `yaml:"slippage_rate"`
	CashReservePct    float64 `yaml:"cash_reserve_pct"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

type DataConfig struct {
	Dir     string   `yaml:"dir"`
	Symbols []string `yaml:"symbols"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	// If portfolio_file is set, load it and merge in any explicit overrides from c.Portfolio.
	if c.PortfolioFile != "" {
		portfolioPath := c.PortfolioFile
		if !filepath.IsAbs(portfolioPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), portfolioPath)
			if _, err := os.Stat(cand); err == nil {
				portfolioPath = cand
			}
		}
		loaded, err := loadPortfolioFile(portfolioPath)
		if err != nil {
			return nil, err
		}
		c.Portfolio = MergePortfolio(loaded, c.Portfolio)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	for _, field := range []struct {
		name, value string
	}{
		{"start_date", c.StartDate},
		{"end_date", c.EndDate},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseInLocation("2006-01-02", field.value, time.UTC); err != nil {
			return fmt.Errorf("%s: invalid date %q, want YYYY-MM-DD", field.name, field.value)
		}
	}
	// Validate portfolio params by constructing a model.PortfolioConfig.
	if _, err := c.Portfolio.ToModelConfig(c.RiskFreeRate); err != nil {
		return fmt.Errorf("portfolio config invalid: %w", err)
	}
	return nil
}

// Window parses the optional start/end dates. Zero times mean open bounds.
// Call only after Validate.
func (c *Config) Window() (start, end time.Time) {
	if c.StartDate != "" {
		start, _ = time.ParseInLocation("2006-01-02", c.StartDate, time.UTC)
	}
	if c.EndDate != "" {
		end, _ = time.ParseInLocation("2006-01-02", c.EndDate, time.UTC)
	}
	return start, end
}

// ToModelConfig builds and validates the engine-level portfolio config.
func (p PortfolioConfig) ToModelConfig(riskFreeRate float64) (model.PortfolioConfig, error) {
	method, err := model.ParseSizingMethod(p.SizingMethod)
	if err != nil {
		return model.PortfolioConfig{}, err
	}
	cfg := model.PortfolioConfig{
		InitialCapital:    decimal.NewFromFloat(p.InitialCapital),
		SizingMethod:      method,
		SizingValue:       decimal.NewFromFloat(p.SizingValue),
		MaxTradesPerWeek:  p.MaxTradesPerWeek,
		MaxTradesPerMonth: p.MaxTradesPerMonth,
		MaxPositions:      p.MaxPositions,
		BrokerageRate:     decimal.NewFromFloat(p.BrokerageRate),
		TransactionRate:   decimal.NewFromFloat(p.TransactionRate),
		STTRate:           decimal.NewFromFloat(p.STTRate),
		SlippageRate:      decimal.NewFromFloat(p.SlippageRate),
		CashReservePct:    decimal.NewFromFloat(p.CashReservePct),
		RiskFreeRate:      riskFreeRate,
	}
	if err := cfg.Validate(); err != nil {
		return model.PortfolioConfig{}, err
	}
	return cfg, nil
}

type portfolioFileWrapper struct {
	Portfolio PortfolioConfig `yaml:"portfolio"`
}

func loadPortfolioFile(path string) (PortfolioConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PortfolioConfig{}, err
	}
	var w portfolioFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return PortfolioConfig{}, err
	}
	return w.Portfolio, nil
}

// MergePortfolio overlays non-zero fields from override onto base.
// This is used when loading a portfolio file and then applying overrides from the request.
func MergePortfolio(base, override PortfolioConfig) PortfolioConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.InitialCapital != 0 {
		out.InitialCapital = override.InitialCapital
	}
	if override.SizingMethod != "" {
		out.SizingMethod = override.SizingMethod
	}
	if override.SizingValue != 0 {
		out.SizingValue = override.SizingValue
	}
	if override.MaxTradesPerWeek != 0 {
		out.MaxTradesPerWeek = override.MaxTradesPerWeek
	}
	if override.MaxTradesPerMonth != 0 {
		out.MaxTradesPerMonth = override.MaxTradesPerMonth
	}
	if override.MaxPositions != 0 {
		out.MaxPositions = override.MaxPositions
	}
	if override.BrokerageRate != 0 {
		out.BrokerageRate = override.BrokerageRate
	}
	if override.TransactionRate != 0 {
		out.TransactionRate = override.TransactionRate
	}
	if override.STTRate != 0 {
		out.STTRate = override.STTRate
	}
	if override.SlippageRate != 0 {
		out.SlippageRate = override.SlippageRate
	}
	if override.CashReservePct != 0 {
		out.CashReservePct = override.CashReservePct
	}
	return out
}
