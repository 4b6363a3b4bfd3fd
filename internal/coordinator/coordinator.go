package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/internal/models"
	"github.com/avifenesh/finding-apartment-tlv/internal/reconcile"
	"github.com/avifenesh/finding-apartment-tlv/internal/scraper"
)

// Coordinator gates ingestion runs so at most one is in flight. A trigger
// while a run is active is rejected with an advisory result, never queued or
// blocked. The running flag is released on every exit path.
type Coordinator struct {
	chain      *scraper.Chain
	reconciler *reconcile.Reconciler
	filters    scraper.Filters
	logger     *logrus.Logger

	mu      sync.Mutex
	running bool
}

func New(chain *scraper.Chain, reconciler *reconcile.Reconciler, filters scraper.Filters, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		chain:      chain,
		reconciler: reconciler,
		filters:    filters,
		logger:     logger,
	}
}

// Trigger runs a full ingestion pass synchronously. It never returns an
// error or panics out: every outcome, including total failure, resolves to a
// RunResult value.
func (c *Coordinator) Trigger(ctx context.Context) models.RunResult {
	if !c.acquire() {
		return models.RunResult{
			Success: false,
			Message: "scrape already in progress",
		}
	}
	defer c.release()
	return c.run(ctx)
}

// TriggerAsync starts an ingestion pass in the background and returns
// immediately. The result reports only whether the run was started.
func (c *Coordinator) TriggerAsync(ctx context.Context) models.RunResult {
	if !c.acquire() {
		return models.RunResult{
			Success: false,
			Message: "scrape already in progress",
		}
	}

	go func() {
		defer c.release()
		result := c.run(ctx)
		c.logger.WithFields(logrus.Fields{
			"success":  result.Success,
			"found":    result.Found,
			"new":      result.New,
			"strategy": result.StrategyUsed,
		}).Info("Background scrape finished")
	}()

	return models.RunResult{
		Success: true,
		Message: "scrape started in background",
	}
}

// Status reports whether a run is currently in flight.
func (c *Coordinator) Status() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// run executes one full pass with the gate already held.
func (c *Coordinator) run(ctx context.Context) (result models.RunResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("panic", r).Error("Scrape run panicked")
			result = models.RunResult{
				Success: false,
				Message: fmt.Sprintf("scrape failed: %v", r),
			}
		}
	}()

	asOf := time.Now()
	c.logger.Info("Starting scrape run")

	listings, strategyUsed, err := c.chain.Run(ctx, c.filters)
	if err != nil {
		c.logger.WithError(err).Error("All strategies failed")
		return models.RunResult{
			Success: false,
			Message: fmt.Sprintf("scrape failed: %v", err),
		}
	}

	stats, err := c.reconciler.Reconcile(listings, asOf)
	if err != nil {
		c.logger.WithError(err).Error("Reconciliation failed")
		return models.RunResult{
			Success:      false,
			Message:      fmt.Sprintf("reconciliation failed: %v", err),
			Found:        len(listings),
			StrategyUsed: strategyUsed,
		}
	}

	return models.RunResult{
		Success:      true,
		Message:      "scrape completed",
		Found:        stats.Found,
		New:          stats.New,
		Updated:      stats.Updated,
		StrategyUsed: strategyUsed,
	}
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}
