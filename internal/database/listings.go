package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// ErrListingNotFound is returned when a listing lookup matches nothing.
var ErrListingNotFound = errors.New("listing not found")

// ListingFilter narrows the set of listings returned by GetListings. Nil
// bounds mean "no bound". ActiveOnly and PublishedAfter implement the default
// query surface: current listings only, within the freshness window.
type ListingFilter struct {
	MinPrice       *int
	MaxPrice       *int
	MinRooms       *float64
	MaxRooms       *float64
	NeighborhoodID string
	ActiveOnly     bool
	PublishedAfter time.Time
	Skip           int
	Limit          int
}

// GetListings returns listings matching the filter, newest publish date first.
func (d *Database) GetListings(filter ListingFilter) ([]models.Listing, error) {
	query := d.db.Model(&models.Listing{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if !filter.PublishedAfter.IsZero() {
		query = query.Where("publish_date >= ?", filter.PublishedAfter)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinRooms != nil {
		query = query.Where("rooms >= ?", *filter.MinRooms)
	}
	if filter.MaxRooms != nil {
		query = query.Where("rooms <= ?", *filter.MaxRooms)
	}
	if filter.NeighborhoodID != "" {
		query = query.Where("neighborhood_id = ?", filter.NeighborhoodID)
	}

	query = query.Order("publish_date DESC")
	if filter.Skip > 0 {
		query = query.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	return listings, nil
}

// GetListing returns a single listing by store ID.
func (d *Database) GetListing(id int64) (*models.Listing, error) {
	var listing models.Listing
	err := d.db.First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing %d: %w", id, err)
	}
	return &listing, nil
}

// GetStats summarizes the store for the stats endpoint. The recent count is
// active listings whose publish date falls within the freshness window.
func (d *Database) GetStats(window time.Duration) (models.Stats, error) {
	var stats models.Stats

	var total, active, recent int64
	if err := d.db.Model(&models.Listing{}).Count(&total).Error; err != nil {
		return stats, fmt.Errorf("failed to count listings: %w", err)
	}
	if err := d.db.Model(&models.Listing{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		return stats, fmt.Errorf("failed to count active listings: %w", err)
	}
	cutoff := time.Now().Add(-window)
	if err := d.db.Model(&models.Listing{}).
		Where("is_active = ? AND publish_date >= ?", true, cutoff).
		Count(&recent).Error; err != nil {
		return stats, fmt.Errorf("failed to count recent listings: %w", err)
	}

	stats.TotalApartments = int(total)
	stats.ActiveApartments = int(active)
	stats.RecentApartments = int(recent)

	var last models.Listing
	err := d.db.Order("created_at DESC").First(&last).Error
	if err == nil {
		stats.LastScrape = &last.CreatedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return stats, fmt.Errorf("failed to query last scrape time: %w", err)
	}

	return stats, nil
}
