package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// GetSessionState returns the persisted session blob for a source, or nil if
// none has been saved yet.
func (d *Database) GetSessionState(source string) ([]byte, error) {
	var state models.SessionState
	err := d.db.Where("source = ?", source).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session state for %s: %w", source, err)
	}
	return state.State, nil
}

// PutSessionState stores the session blob for a source, replacing any
// previous state.
func (d *Database) PutSessionState(source string, blob []byte) error {
	state := models.SessionState{
		Source:    source,
		State:     blob,
		UpdatedAt: time.Now(),
	}
	err := d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("failed to save session state for %s: %w", source, err)
	}
	return nil
}
