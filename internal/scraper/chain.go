package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/database"
	"github.com/avifenesh/finding-apartment-tlv/internal/extractor"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
	"github.com/avifenesh/finding-apartment-tlv/internal/session"
)

// ErrExhausted means every configured strategy failed. It cannot happen when
// the synthetic strategy is part of the order, since that one never fails.
var ErrExhausted = errors.New("all source strategies exhausted")

const baseBackoff = 2 * time.Second

// Chain tries source strategies strictly in priority order and stops at the
// first one producing a non-empty, trustworthy result set.
type Chain struct {
	strategies  []Strategy
	retryBudget int
	rng         *rand.Rand
	logger      *logrus.Logger
}

// NewChain builds a chain over the given strategies. retryBudget is the
// number of extra attempts per strategy before moving to the next one.
func NewChain(strategies []Strategy, retryBudget int, rng *rand.Rand, logger *logrus.Logger) *Chain {
	return &Chain{
		strategies:  strategies,
		retryBudget: retryBudget,
		rng:         rng,
		logger:      logger,
	}
}

// BuildChain assembles the strategy chain from configuration. Strategy names
// in the order list map to implementations; unknown names are an error.
func BuildChain(cfg *config.Config, db *database.Database, logger *logrus.Logger) (*Chain, error) {
	seed := cfg.Scraping.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ex := extractor.New(cfg.Scraping.DefaultRooms)
	pacer := NewPacer(cfg.Scraping.PaceDelayMin, cfg.Scraping.PaceDelayMax, rng)

	var strategies []Strategy
	for _, name := range cfg.Scraping.StrategyOrder {
		switch name {
		case "primary":
			est := session.NewEstablisher(db, logger, "primary")
			strategies = append(strategies, NewPrimary(cfg, est, ex, pacer, logger))
		case "secondary":
			est := session.NewEstablisher(db, logger, "secondary")
			strategies = append(strategies, NewSecondary(cfg, est, pacer, logger))
		case "synthetic":
			strategies = append(strategies, NewSynthetic(rng, logger))
		default:
			return nil, fmt.Errorf("unknown strategy %q in strategy order", name)
		}
	}

	return NewChain(strategies, cfg.Scraping.RetryBudget, rng, logger), nil
}

// Run attempts each strategy in order and returns the first non-empty result
// set along with the name of the strategy that produced it. A strategy has
// failed when it returns zero listings, reports a blocked session, or raises
// a transient fetch error. Blocked skips the remaining attempt budget;
// everything else retries with a jittered backoff first.
func (c *Chain) Run(ctx context.Context, filters Filters) ([]models.RawListing, string, error) {
	attempts := 1 + c.retryBudget

	for _, strategy := range c.strategies {
		log := c.logger.WithField("strategy", strategy.Name())

		for attempt := 1; attempt <= attempts; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, "", err
			}

			listings, err := strategy.Fetch(ctx, filters)
			if err == nil && len(listings) > 0 {
				log.WithField("listings", len(listings)).Info("Strategy produced listings")
				return listings, strategy.Name(), nil
			}

			if errors.Is(err, session.ErrBlocked) {
				log.Warn("Source blocked the session, falling back immediately")
				break
			}
			if err != nil {
				log.WithError(err).WithField("attempt", attempt).Warn("Strategy attempt failed")
			} else {
				log.WithField("attempt", attempt).Warn("Strategy returned zero listings")
			}

			if attempt < attempts {
				c.sleep(ctx, c.backoff(attempt))
			}
		}
	}

	return nil, "", ErrExhausted
}

// backoff doubles per attempt with jitter so repeated failures do not hammer
// the source on a fixed cadence.
func (c *Chain) backoff(attempt int) time.Duration {
	d := baseBackoff * time.Duration(1<<(attempt-1))
	jitter := time.Duration(c.rng.Int63n(int64(baseBackoff)))
	return d + jitter
}

func (c *Chain) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Pacer inserts randomized delays between target partitions so per-run
// request cadence does not look mechanical.
type Pacer struct {
	min time.Duration
	max time.Duration
	rng *rand.Rand
}

func NewPacer(min, max time.Duration, rng *rand.Rand) *Pacer {
	return &Pacer{min: min, max: max, rng: rng}
}

// Wait sleeps for a random duration in [min, max], returning early if the
// context is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	d := p.min
	if p.max > p.min {
		d += time.Duration(p.rng.Int63n(int64(p.max - p.min)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Max returns the upper bound of the pacing range.
func (p *Pacer) Max() time.Duration {
	return p.max
}
