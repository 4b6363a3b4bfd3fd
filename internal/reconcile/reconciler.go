package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/avifenesh/finding-apartment-tlv/internal/database"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// Stats summarizes one reconciliation pass.
type Stats struct {
	Found       int
	New         int
	Updated     int
	Deactivated int
}

// Reconciler merges freshly fetched batches into the listing store and runs
// the freshness sweep. All writes for one run happen in a single transaction:
// either the full batch and the sweep land, or nothing does.
type Reconciler struct {
	db     *database.Database
	window time.Duration
	logger *logrus.Logger
}

func NewReconciler(db *database.Database, freshnessWindow time.Duration, logger *logrus.Logger) *Reconciler {
	return &Reconciler{db: db, window: freshnessWindow, logger: logger}
}

// Reconcile upserts the batch keyed by external ID, then deactivates every
// active listing not seen within the freshness window. The sweep runs
// strictly after all upserts so listings re-seen in this very batch cannot be
// deactivated by it.
func (r *Reconciler) Reconcile(rawListings []models.RawListing, asOf time.Time) (Stats, error) {
	stats := Stats{Found: len(rawListings)}

	err := r.db.DB().Transaction(func(tx *gorm.DB) error {
		for _, raw := range rawListings {
			isNew, err := r.upsert(tx, raw, asOf)
			if err != nil {
				return err
			}
			if isNew {
				stats.New++
			} else {
				stats.Updated++
			}
		}

		cutoff := asOf.Add(-r.window)
		result := tx.Model(&models.Listing{}).
			Where("is_active = ? AND last_seen_at < ?", true, cutoff).
			Update("is_active", false)
		if result.Error != nil {
			return fmt.Errorf("deactivation sweep failed: %w", result.Error)
		}
		stats.Deactivated = int(result.RowsAffected)
		return nil
	})
	if err != nil {
		return Stats{Found: len(rawListings)}, fmt.Errorf("reconciliation rolled back: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"found":       stats.Found,
		"new":         stats.New,
		"updated":     stats.Updated,
		"deactivated": stats.Deactivated,
	}).Info("Reconciliation complete")
	return stats, nil
}

// upsert inserts or refreshes one listing. An external-ID collision is always
// an update, never a duplicate insert; CreatedAt is immutable after insert.
func (r *Reconciler) upsert(tx *gorm.DB, raw models.RawListing, asOf time.Time) (bool, error) {
	var existing models.Listing
	err := tx.Where("external_id = ?", raw.ExternalID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		listing := models.Listing{
			ExternalID:     raw.ExternalID,
			Title:          raw.Title,
			Address:        raw.Address,
			Neighborhood:   raw.Neighborhood,
			NeighborhoodID: raw.NeighborhoodID,
			Price:          raw.Price,
			Rooms:          raw.Rooms,
			SquareMeters:   raw.SquareMeters,
			Floor:          raw.Floor,
			Description:    raw.Description,
			Images:         models.ImageList(raw.Images),
			Link:           raw.Link,
			PublishDate:    raw.PublishDate,
			LowConfidence:  raw.LowConfidence,
			CreatedAt:      asOf,
			LastSeenAt:     asOf,
			IsActive:       true,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return false, fmt.Errorf("failed to insert listing %s: %w", raw.ExternalID, err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up listing %s: %w", raw.ExternalID, err)
	}

	updates := map[string]interface{}{
		"title":           raw.Title,
		"address":         raw.Address,
		"neighborhood":    raw.Neighborhood,
		"neighborhood_id": raw.NeighborhoodID,
		"price":           raw.Price,
		"rooms":           raw.Rooms,
		"square_meters":   raw.SquareMeters,
		"floor":           raw.Floor,
		"description":     raw.Description,
		"images":          models.ImageList(raw.Images),
		"link":            raw.Link,
		"publish_date":    raw.PublishDate,
		"low_confidence":  raw.LowConfidence,
		"last_seen_at":    asOf,
		"is_active":       true,
	}
	if err := tx.Model(&existing).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("failed to update listing %s: %w", raw.ExternalID, err)
	}
	return false, nil
}
