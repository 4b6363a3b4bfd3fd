package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/api"
	"github.com/avifenesh/finding-apartment-tlv/internal/coordinator"
	"github.com/avifenesh/finding-apartment-tlv/internal/database"
	"github.com/avifenesh/finding-apartment-tlv/internal/reconcile"
	"github.com/avifenesh/finding-apartment-tlv/internal/scheduler"
	"github.com/avifenesh/finding-apartment-tlv/internal/scraper"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.DBPath)
	db, err := database.NewDatabase(cfg.DBPath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	chain, err := scraper.BuildChain(cfg, db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build strategy chain")
	}

	reconciler := reconcile.NewReconciler(db, cfg.Scraping.FreshnessWindow, logger)

	filters := scraper.Filters{
		Neighborhoods: config.SupportedNeighborhoods,
		MinRooms:      cfg.Scraping.MinRooms,
		MaxRooms:      cfg.Scraping.MaxRooms,
		MaxPrice:      cfg.Scraping.MaxPrice,
	}
	coord := coordinator.New(chain, reconciler, filters, logger)

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(coord, cfg.Scheduler.Interval, logger)
		sched.Start()
		defer sched.Stop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	handler := api.NewHandler(db, coord, cfg, logger)
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
