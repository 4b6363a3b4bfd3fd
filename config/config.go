package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port   string `env:"PORT" envDefault:"8000"`
	DBPath string `env:"DB_PATH" envDefault:"database/apartments.db"`

	// Scraping configuration
	Scraping struct {
		// Maximum time a listing may go unseen before it is deactivated
		FreshnessWindow time.Duration `env:"FRESHNESS_WINDOW" envDefault:"72h"`

		// Ordered list of source strategies to attempt
		StrategyOrder []string `env:"STRATEGY_ORDER" envSeparator:"," envDefault:"primary,secondary,synthetic"`

		// Extra attempts per strategy before falling back to the next one
		RetryBudget int `env:"RETRY_BUDGET" envDefault:"1"`

		// Delay range between neighborhood fetches
		PaceDelayMin time.Duration `env:"PACE_DELAY_MIN" envDefault:"2s"`
		PaceDelayMax time.Duration `env:"PACE_DELAY_MAX" envDefault:"6s"`

		// Seed for the synthetic generator; 0 means seed from the clock
		RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`

		// Fetch timeouts
		PageLoadTimeout    time.Duration `env:"PAGE_LOAD_TIMEOUT" envDefault:"60s"`
		ElementWaitTimeout time.Duration `env:"ELEMENT_WAIT_TIMEOUT" envDefault:"10s"`

		// Room count used when a fragment has no parseable room field
		DefaultRooms float64 `env:"DEFAULT_ROOMS" envDefault:"3.5"`

		// Market slice targeted by each run
		MaxPrice int     `env:"MAX_PRICE" envDefault:"10000"`
		MinRooms float64 `env:"MIN_ROOMS" envDefault:"3"`
		MaxRooms float64 `env:"MAX_ROOMS" envDefault:"4"`
	}

	Scheduler struct {
		Enabled  bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
		Interval time.Duration `env:"SCRAPE_INTERVAL" envDefault:"1h"`
	}
}

// Load reads the .env file if present, then parses configuration from the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scraping.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive, got %s", c.Scraping.FreshnessWindow)
	}
	if c.Scraping.RetryBudget < 0 {
		return fmt.Errorf("retry budget must not be negative, got %d", c.Scraping.RetryBudget)
	}
	if c.Scraping.PaceDelayMax < c.Scraping.PaceDelayMin {
		return fmt.Errorf("pace delay range is inverted: min %s > max %s",
			c.Scraping.PaceDelayMin, c.Scraping.PaceDelayMax)
	}
	if len(c.Scraping.StrategyOrder) == 0 {
		return fmt.Errorf("strategy order must name at least one strategy")
	}
	if c.Scraping.MaxRooms < c.Scraping.MinRooms {
		return fmt.Errorf("room range is inverted: min %.1f > max %.1f",
			c.Scraping.MinRooms, c.Scraping.MaxRooms)
	}
	return nil
}
