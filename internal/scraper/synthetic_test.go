package scraper

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avifenesh/finding-apartment-tlv/config"
)

func newSyntheticForTest(seed int64) *Synthetic {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSynthetic(rand.New(rand.NewSource(seed)), logger)
}

func TestSynthetic_NeverFailsAndCoversAllNeighborhoods(t *testing.T) {
	s := newSyntheticForTest(7)
	filters := Filters{Neighborhoods: config.SupportedNeighborhoods, MaxPrice: 10000}

	listings, err := s.Fetch(context.Background(), filters)
	require.NoError(t, err)
	require.NotEmpty(t, listings)

	perHood := make(map[string]int)
	for _, l := range listings {
		perHood[l.NeighborhoodID]++
	}
	for _, hood := range config.SupportedNeighborhoods {
		count := perHood[hood.ID]
		assert.GreaterOrEqual(t, count, 3, "neighborhood %s", hood.Name)
		assert.LessOrEqual(t, count, 5, "neighborhood %s", hood.Name)
	}
}

func TestSynthetic_ListingsAreComplete(t *testing.T) {
	s := newSyntheticForTest(7)
	filters := Filters{Neighborhoods: config.SupportedNeighborhoods[:1], MaxPrice: 10000}

	listings, err := s.Fetch(context.Background(), filters)
	require.NoError(t, err)

	for _, l := range listings {
		assert.True(t, strings.HasPrefix(l.ExternalID, "gen_"), "external id %q", l.ExternalID)
		assert.NotEmpty(t, l.Title)
		assert.NotEmpty(t, l.Address)
		assert.Contains(t, []float64{3, 3.5, 4}, l.Rooms)
		assert.Greater(t, l.Price, 0)
		assert.LessOrEqual(t, l.Price, 10000)
		require.NotNil(t, l.SquareMeters)
		assert.Greater(t, *l.SquareMeters, 0)
		require.NotNil(t, l.Floor)
		assert.Len(t, l.Images, 3)
		assert.False(t, l.PublishDate.IsZero())
		assert.False(t, l.LowConfidence)
	}
}

func TestSynthetic_DeterministicForFixedSeed(t *testing.T) {
	filters := Filters{Neighborhoods: config.SupportedNeighborhoods, MaxPrice: 10000}

	a, err := newSyntheticForTest(99).Fetch(context.Background(), filters)
	require.NoError(t, err)
	b, err := newSyntheticForTest(99).Fetch(context.Background(), filters)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		// PublishDate is anchored at the wall clock, so compare the rest.
		a[i].PublishDate = b[i].PublishDate
	}
	assert.True(t, reflect.DeepEqual(a, b))
}

func TestSynthetic_DefaultsToFullCatalog(t *testing.T) {
	s := newSyntheticForTest(3)

	listings, err := s.Fetch(context.Background(), Filters{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(listings), 3*len(config.SupportedNeighborhoods))
}
