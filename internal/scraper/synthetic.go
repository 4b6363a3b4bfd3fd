package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avifenesh/finding-apartment-tlv/config"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

var roomOptions = []float64{3, 3.5, 4}

// Synthetic deterministically fabricates plausible listings from the
// neighborhood catalog. It is the terminal strategy: it never fails and
// always yields at least one listing per neighborhood, which keeps the rest
// of the pipeline live when every real source is unreachable. It is also the
// intended source for non-production environments.
type Synthetic struct {
	rng    *rand.Rand
	logger *logrus.Logger
}

func NewSynthetic(rng *rand.Rand, logger *logrus.Logger) *Synthetic {
	return &Synthetic{rng: rng, logger: logger}
}

func (s *Synthetic) Name() string {
	return "synthetic"
}

func (s *Synthetic) Fetch(ctx context.Context, filters Filters) ([]models.RawListing, error) {
	hoods := filters.Neighborhoods
	if len(hoods) == 0 {
		hoods = config.SupportedNeighborhoods
	}

	now := time.Now()
	var all []models.RawListing
	for _, hood := range hoods {
		count := 3 + s.rng.Intn(3)
		for i := 0; i < count; i++ {
			all = append(all, s.generate(hood, filters, now))
		}
	}

	s.logger.WithField("listings", len(all)).Info("Generated synthetic listings")
	return all, nil
}

func (s *Synthetic) generate(hood config.Neighborhood, filters Filters, now time.Time) models.RawListing {
	rooms := roomOptions[s.rng.Intn(len(roomOptions))]

	price := hood.MinPrice
	if hood.MaxPrice > hood.MinPrice {
		price += s.rng.Intn(hood.MaxPrice - hood.MinPrice + 1)
	}
	switch rooms {
	case 4:
		price += 500 + s.rng.Intn(1001)
	case 3:
		price -= s.rng.Intn(501)
	}
	if filters.MaxPrice > 0 && price > filters.MaxPrice {
		price = filters.MaxPrice
	}
	if price < 0 {
		price = 0
	}

	var sqm int
	switch rooms {
	case 3:
		sqm = 55 + s.rng.Intn(16)
	case 3.5:
		sqm = 65 + s.rng.Intn(16)
	default:
		sqm = 75 + s.rng.Intn(21)
	}

	maxFloors := []int{3, 4, 5, 6, 8}
	floor := s.rng.Intn(maxFloors[s.rng.Intn(len(maxFloors))] + 1)
	floorStr := strconv.Itoa(floor)

	features := s.pickFeatures(floor)

	street := hood.Streets[s.rng.Intn(len(hood.Streets))]
	title := fmt.Sprintf("דירת %s חדרים ברחוב %s", formatRooms(rooms), street)
	if len(features) > 0 {
		n := len(features)
		if n > 2 {
			n = 2
		}
		title += " - " + strings.Join(features[:n], ", ")
	}

	externalID := fmt.Sprintf("gen_%s_%06d", hood.ID, 100000+s.rng.Intn(900000))
	description := "דירה להשכרה ב" + hood.Name

	publishDate := now.
		AddDate(0, 0, -s.rng.Intn(3)).
		Add(-time.Duration(s.rng.Intn(24)) * time.Hour)

	images := make([]string, 0, 3)
	for i := 1; i <= 3; i++ {
		images = append(images, fmt.Sprintf("https://picsum.photos/800/600?random=%s_%d", externalID, i))
	}

	return models.RawListing{
		ExternalID:     externalID,
		Title:          title,
		Address:        fmt.Sprintf("%s %d, %s", street, 1+s.rng.Intn(150), hood.Name),
		Neighborhood:   hood.Name,
		NeighborhoodID: hood.ID,
		Price:          price,
		Rooms:          rooms,
		SquareMeters:   &sqm,
		Floor:          &floorStr,
		Description:    &description,
		Images:         images,
		Link:           fmt.Sprintf("https://example.com/listing/%s", externalID),
		PublishDate:    publishDate,
	}
}

func (s *Synthetic) pickFeatures(floor int) []string {
	var features []string
	if s.rng.Float64() > 0.3 {
		features = append(features, "מרפסת")
	}
	if s.rng.Float64() > 0.5 {
		features = append(features, "ממוזג")
	}
	if s.rng.Float64() > 0.7 {
		features = append(features, "חניה")
	}
	if floor == 0 && s.rng.Float64() > 0.5 {
		features = append(features, "גינה")
	}
	if s.rng.Float64() > 0.6 {
		features = append(features, "מעלית")
	}
	return features
}

func formatRooms(rooms float64) string {
	return strconv.FormatFloat(rooms, 'f', -1, 64)
}
