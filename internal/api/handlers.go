package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/coordinator"
	"github.com/avifenesh/finding-apartment-tlv/internal/database"
)

type Handler struct {
	db     *database.Database
	coord  *coordinator.Coordinator
	cfg    *config.Config
	logger *logrus.Logger
}

// ListingQuery binds the apartment listing filters from the query string.
type ListingQuery struct {
	Skip           int      `form:"skip"`
	Limit          int      `form:"limit,default=100"`
	MinPrice       *int     `form:"min_price"`
	MaxPrice       *int     `form:"max_price"`
	MinRooms       *float64 `form:"min_rooms"`
	MaxRooms       *float64 `form:"max_rooms"`
	NeighborhoodID string   `form:"neighborhood_id"`
}

func NewHandler(db *database.Database, coord *coordinator.Coordinator, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:     db,
		coord:  coord,
		cfg:    cfg,
		logger: logger,
	}
}

// GetApartments returns current listings: active, published within the
// freshness window, newest first.
func (h *Handler) GetApartments(c *gin.Context) {
	var query ListingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse listing query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	filter := database.ListingFilter{
		MinPrice:       query.MinPrice,
		MaxPrice:       query.MaxPrice,
		MinRooms:       query.MinRooms,
		MaxRooms:       query.MaxRooms,
		NeighborhoodID: query.NeighborhoodID,
		ActiveOnly:     true,
		PublishedAfter: time.Now().Add(-h.cfg.Scraping.FreshnessWindow),
		Skip:           query.Skip,
		Limit:          query.Limit,
	}

	listings, err := h.db.GetListings(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get apartments")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get apartments"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// GetApartment returns a single listing by store ID.
func (h *Handler) GetApartment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid apartment ID"})
		return
	}

	listing, err := h.db.GetListing(id)
	if errors.Is(err, database.ErrListingNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Apartment not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get apartment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get apartment"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// TriggerScrape starts an ingestion run in the background. A run already in
// flight yields an advisory rejection, not an error status. The run must not
// be tied to the request context, which dies with the response.
func (h *Handler) TriggerScrape(c *gin.Context) {
	result := h.coord.TriggerAsync(context.Background())
	c.JSON(http.StatusOK, result)
}

// GetScrapeStatus reports whether a run is in flight.
func (h *Handler) GetScrapeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"is_scraping": h.coord.Status()})
}

// GetStats summarizes the store.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.db.GetStats(h.cfg.Scraping.FreshnessWindow)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetNeighborhoods returns the configured neighborhood catalog.
func (h *Handler) GetNeighborhoods(c *gin.Context) {
	type neighborhood struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	hoods := make([]neighborhood, 0, len(config.SupportedNeighborhoods))
	for _, n := range config.SupportedNeighborhoods {
		hoods = append(hoods, neighborhood{ID: n.ID, Name: n.Name})
	}
	c.JSON(http.StatusOK, hoods)
}
