package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func seedListings(t *testing.T, db *Database) {
	now := time.Now()
	listings := []models.Listing{
		{ExternalID: "a1", Title: "דירה בנווה צדק", NeighborhoodID: "1483", Price: 9500, Rooms: 4, PublishDate: now.Add(-time.Hour), CreatedAt: now, LastSeenAt: now, IsActive: true},
		{ExternalID: "a2", Title: "דירה בפלורנטין", NeighborhoodID: "204", Price: 6500, Rooms: 3, PublishDate: now.Add(-2 * time.Hour), CreatedAt: now, LastSeenAt: now, IsActive: true},
		{ExternalID: "a3", Title: "דירה ישנה", NeighborhoodID: "204", Price: 7200, Rooms: 3.5, PublishDate: now.Add(-10 * 24 * time.Hour), CreatedAt: now, LastSeenAt: now, IsActive: false},
	}
	for i := range listings {
		require.NoError(t, db.DB().Create(&listings[i]).Error)
	}
}

func newSeededDB(t *testing.T) *Database {
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	seedListings(t, db)
	return db
}

func TestGetListings_ActiveOnly(t *testing.T) {
	db := newSeededDB(t)

	listings, err := db.GetListings(ListingFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, listings, 2)
	for _, l := range listings {
		assert.True(t, l.IsActive)
	}
}

func TestGetListings_OrderedByPublishDate(t *testing.T) {
	db := newSeededDB(t)

	listings, err := db.GetListings(ListingFilter{})
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "a1", listings[0].ExternalID)
	assert.Equal(t, "a2", listings[1].ExternalID)
	assert.Equal(t, "a3", listings[2].ExternalID)
}

func TestGetListings_PriceAndRoomBounds(t *testing.T) {
	db := newSeededDB(t)

	listings, err := db.GetListings(ListingFilter{
		MinPrice: intPtr(6000),
		MaxPrice: intPtr(7000),
		MinRooms: floatPtr(3),
		MaxRooms: floatPtr(3),
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "a2", listings[0].ExternalID)
}

func TestGetListings_ByNeighborhood(t *testing.T) {
	db := newSeededDB(t)

	listings, err := db.GetListings(ListingFilter{NeighborhoodID: "204"})
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestGetListings_Pagination(t *testing.T) {
	db := newSeededDB(t)

	page, err := db.GetListings(ListingFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a2", page[0].ExternalID)
}

func TestGetListings_PublishedAfter(t *testing.T) {
	db := newSeededDB(t)

	listings, err := db.GetListings(ListingFilter{PublishedAfter: time.Now().Add(-72 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestGetListing_NotFound(t *testing.T) {
	db := newSeededDB(t)

	_, err := db.GetListing(9999)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetStats(t *testing.T) {
	db := newSeededDB(t)

	stats, err := db.GetStats(72 * time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalApartments)
	assert.Equal(t, 2, stats.ActiveApartments)
	assert.Equal(t, 2, stats.RecentApartments)
	require.NotNil(t, stats.LastScrape)
}

func TestSessionState_Upsert(t *testing.T) {
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	state, err := db.GetSessionState("primary")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, db.PutSessionState("primary", []byte("a=1")))
	require.NoError(t, db.PutSessionState("primary", []byte("a=2")))

	state, err = db.GetSessionState("primary")
	require.NoError(t, err)
	assert.Equal(t, []byte("a=2"), state)

	var count int64
	require.NoError(t, db.DB().Model(&models.SessionState{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
