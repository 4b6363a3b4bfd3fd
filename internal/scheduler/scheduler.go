package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/internal/coordinator"
)

// Scheduler triggers ingestion runs on a fixed interval. Overlap with a
// manually triggered run is harmless: the coordinator rejects the extra
// trigger and the scheduler just waits for the next tick.
type Scheduler struct {
	coord    *coordinator.Coordinator
	interval time.Duration
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(coord *coordinator.Coordinator, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Scheduler{
		coord:    coord,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled runs, including one startup run.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	s.logger.Info("Running startup scrape")
	s.runOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	result := s.coord.Trigger(context.Background())
	if !result.Success {
		s.logger.WithField("message", result.Message).Warn("Scheduled scrape did not complete")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"found":    result.Found,
		"new":      result.New,
		"updated":  result.Updated,
		"strategy": result.StrategyUsed,
	}).Info("Scheduled scrape completed")
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
