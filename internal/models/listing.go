package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ImageList stores listing image URLs as a JSON column.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for ImageList: %T", value)
	}
}

// Listing is a rental listing as reconciled into the store. ExternalID is the
// stable identifier assigned by the source; it is unique regardless of which
// strategy produced the listing. Listings are never deleted, only deactivated.
type Listing struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ExternalID     string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Title          string    `json:"title"`
	Address        string    `json:"address"`
	Neighborhood   string    `json:"neighborhood"`
	NeighborhoodID string    `gorm:"index" json:"neighborhood_id"`
	Price          int       `json:"price"`
	Rooms          float64   `json:"rooms"`
	SquareMeters   *int      `json:"square_meters"`
	Floor          *string   `json:"floor"`
	Description    *string   `json:"description"`
	Images         ImageList `gorm:"type:text" json:"images"`
	Link           string    `json:"link"`
	PublishDate    time.Time `gorm:"index" json:"publish_date"`
	LowConfidence  bool      `json:"low_confidence"`
	CreatedAt      time.Time `json:"created_at"`
	LastSeenAt     time.Time `gorm:"index" json:"last_seen"`
	IsActive       bool      `gorm:"index" json:"is_active"`
}

// RawListing is a listing as it comes out of field extraction, before
// reconciliation. Optional fields stay nil when the source did not provide
// them; LowConfidence marks records where one or more fields fell back to a
// default instead of a real match.
type RawListing struct {
	ExternalID     string
	Title          string
	Address        string
	Neighborhood   string
	NeighborhoodID string
	Price          int
	Rooms          float64
	SquareMeters   *int
	Floor          *string
	Description    *string
	Images         []string
	Link           string
	PublishDate    time.Time
	LowConfidence  bool
}

// RunResult is the terminal outcome of one ingestion run. It is always
// returned to the caller as a value; a failed run is Success=false with a
// human-readable message, never an error.
type RunResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Found        int    `json:"apartments_found"`
	New          int    `json:"new_apartments"`
	Updated      int    `json:"updated_apartments"`
	StrategyUsed string `json:"strategy_used,omitempty"`
}

// SessionState is an opaque per-source session blob (cookies, tokens). The
// core only guarantees it round-trips; the format belongs to the strategy
// that wrote it.
type SessionState struct {
	ID        int64     `gorm:"primaryKey"`
	Source    string    `gorm:"uniqueIndex;not null"`
	State     []byte    `gorm:"type:blob"`
	UpdatedAt time.Time
}

// Stats summarizes the current store contents for the stats endpoint.
type Stats struct {
	TotalApartments  int        `json:"total_apartments"`
	ActiveApartments int        `json:"active_apartments"`
	RecentApartments int        `json:"recent_apartments"`
	LastScrape       *time.Time `json:"last_scrape"`
}
