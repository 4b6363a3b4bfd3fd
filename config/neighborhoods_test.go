package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNeighborhoodByID(t *testing.T) {
	hood := GetNeighborhoodByID("204")
	require.NotNil(t, hood)
	assert.Equal(t, "פלורנטין", hood.Name)
	assert.NotEmpty(t, hood.Streets)

	assert.Nil(t, GetNeighborhoodByID("9999"))
}

func TestGetNeighborhoodByName(t *testing.T) {
	hood := GetNeighborhoodByName("נווה צדק")
	require.NotNil(t, hood)
	assert.Equal(t, "1483", hood.ID)

	assert.Nil(t, GetNeighborhoodByName("רמת גן"))
}

func TestGetNeighborhoodIDs(t *testing.T) {
	ids := GetNeighborhoodIDs()
	assert.Len(t, ids, len(SupportedNeighborhoods))
	assert.Contains(t, ids, "1483")
	assert.Contains(t, ids, "204")
}

func TestCatalogPriceBands(t *testing.T) {
	for _, hood := range SupportedNeighborhoods {
		assert.Greater(t, hood.MinPrice, 0, "neighborhood %s", hood.Name)
		assert.GreaterOrEqual(t, hood.MaxPrice, hood.MinPrice, "neighborhood %s", hood.Name)
		assert.NotEmpty(t, hood.Streets, "neighborhood %s", hood.Name)
	}
}

func TestLoadNeighborhoodCatalog(t *testing.T) {
	original := SupportedNeighborhoods
	t.Cleanup(func() { SupportedNeighborhoods = original })

	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `{"neighborhoods": [{"id": "42", "name": "מתחם בדיקה", "min_price": 4000, "max_price": 6000, "streets": ["הרצל"]}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	require.NoError(t, LoadNeighborhoodCatalog(path))
	require.Len(t, SupportedNeighborhoods, 1)
	assert.Equal(t, "42", SupportedNeighborhoods[0].ID)
}

func TestLoadNeighborhoodCatalog_Invalid(t *testing.T) {
	original := SupportedNeighborhoods
	t.Cleanup(func() { SupportedNeighborhoods = original })

	tests := []struct {
		name string
		data string
	}{
		{"missing file", ""},
		{"bad json", `{"neighborhoods": [`},
		{"empty catalog", `{"neighborhoods": []}`},
		{"missing id", `{"neighborhoods": [{"name": "x", "min_price": 1, "max_price": 2}]}`},
		{"inverted price band", `{"neighborhoods": [{"id": "1", "name": "x", "min_price": 9000, "max_price": 5000}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			if tt.data != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))
			}
			assert.Error(t, LoadNeighborhoodCatalog(path))
		})
	}
}

func TestSaveNeighborhoodCatalog_RoundTrip(t *testing.T) {
	original := SupportedNeighborhoods
	t.Cleanup(func() { SupportedNeighborhoods = original })

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, SaveNeighborhoodCatalog(path))

	SupportedNeighborhoods = nil
	require.NoError(t, LoadNeighborhoodCatalog(path))
	assert.Equal(t, original, SupportedNeighborhoods)
}
