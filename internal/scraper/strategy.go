package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

// Filters describes the target slice of the market for one run.
type Filters struct {
	Neighborhoods []config.Neighborhood
	MinRooms      float64
	MaxRooms      float64
	MaxPrice      int
}

// Strategy is one complete method of obtaining listings: a source plus its
// extraction rules. A strategy fails by returning an error or an empty
// result; it must never panic the run.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, filters Filters) ([]models.RawListing, error)
}

// TransientError marks a network, timeout, or navigation failure that is
// worth retrying within the strategy's attempt budget.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a TransientError.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
