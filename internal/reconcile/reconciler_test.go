package reconcile

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avifenesh/finding-apartment-tlv/internal/database"
	"github.com/avifenesh/finding-apartment-tlv/internal/models"
)

func newTestReconciler(t *testing.T, window time.Duration) (*Reconciler, *database.Database) {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewReconciler(db, window, logger), db
}

func rawListing(externalID string, price int) models.RawListing {
	return models.RawListing{
		ExternalID:     externalID,
		Title:          "דירת 3.5 חדרים ברחוב שבזי",
		Address:        "שבזי 10",
		Neighborhood:   "נווה צדק",
		NeighborhoodID: "1483",
		Price:          price,
		Rooms:          3.5,
		Link:           "https://www.yad2.co.il/item/" + externalID,
		PublishDate:    time.Now().Add(-time.Hour),
	}
}

func getByExternalID(t *testing.T, db *database.Database, externalID string) models.Listing {
	var listing models.Listing
	require.NoError(t, db.DB().Where("external_id = ?", externalID).First(&listing).Error)
	return listing
}

func TestReconcile_NewListings(t *testing.T) {
	r, db := newTestReconciler(t, 72*time.Hour)
	asOf := time.Now()

	stats, err := r.Reconcile([]models.RawListing{rawListing("a1", 8500), rawListing("a2", 7200)}, asOf)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Found)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 0, stats.Deactivated)

	listing := getByExternalID(t, db, "a1")
	assert.True(t, listing.IsActive)
	assert.Equal(t, 8500, listing.Price)
	assert.WithinDuration(t, asOf, listing.LastSeenAt, time.Second)
}

func TestReconcile_Idempotent(t *testing.T) {
	// Re-ingesting the same batch must not duplicate rows.
	r, db := newTestReconciler(t, 72*time.Hour)
	batch := []models.RawListing{rawListing("a1", 8500)}

	first := time.Now().Add(-time.Hour)
	_, err := r.Reconcile(batch, first)
	require.NoError(t, err)

	second := time.Now()
	stats, err := r.Reconcile(batch, second)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.New)
	assert.Equal(t, 1, stats.Updated)

	var count int64
	require.NoError(t, db.DB().Model(&models.Listing{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	listing := getByExternalID(t, db, "a1")
	assert.WithinDuration(t, second, listing.LastSeenAt, time.Second)
	// CreatedAt is immutable after the first insert.
	assert.WithinDuration(t, first, listing.CreatedAt, time.Second)
}

func TestReconcile_CollisionUpdatesFields(t *testing.T) {
	r, db := newTestReconciler(t, 72*time.Hour)

	_, err := r.Reconcile([]models.RawListing{rawListing("a1", 8500)}, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	changed := rawListing("a1", 7900)
	changed.Title = "דירה משופצת"
	stats, err := r.Reconcile([]models.RawListing{changed}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	listing := getByExternalID(t, db, "a1")
	assert.Equal(t, 7900, listing.Price)
	assert.Equal(t, "דירה משופצת", listing.Title)
}

func TestReconcile_DeactivationSweep(t *testing.T) {
	r, db := newTestReconciler(t, 72*time.Hour)

	// Seen four days ago, never since: older than the freshness window.
	stale := time.Now().Add(-96 * time.Hour)
	_, err := r.Reconcile([]models.RawListing{rawListing("old", 6000)}, stale)
	require.NoError(t, err)

	stats, err := r.Reconcile([]models.RawListing{rawListing("fresh", 8000)}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 1, stats.Deactivated)

	old := getByExternalID(t, db, "old")
	assert.False(t, old.IsActive, "stale listing should be deactivated, not deleted")

	fresh := getByExternalID(t, db, "fresh")
	assert.True(t, fresh.IsActive)
}

func TestReconcile_BatchMemberSurvivesSweep(t *testing.T) {
	// A listing last seen long ago but present in the current batch is
	// refreshed before the sweep runs, so the sweep must not touch it.
	r, db := newTestReconciler(t, 72*time.Hour)

	stale := time.Now().Add(-96 * time.Hour)
	_, err := r.Reconcile([]models.RawListing{rawListing("a1", 6000)}, stale)
	require.NoError(t, err)

	stats, err := r.Reconcile([]models.RawListing{rawListing("a1", 6000)}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Deactivated)
	assert.True(t, getByExternalID(t, db, "a1").IsActive)
}

func TestReconcile_ReappearanceReactivates(t *testing.T) {
	r, db := newTestReconciler(t, 72*time.Hour)

	stale := time.Now().Add(-96 * time.Hour)
	_, err := r.Reconcile([]models.RawListing{rawListing("a1", 6000)}, stale)
	require.NoError(t, err)

	// Sweep deactivates it.
	_, err = r.Reconcile(nil, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.False(t, getByExternalID(t, db, "a1").IsActive)

	// It shows up again in a later batch.
	stats, err := r.Reconcile([]models.RawListing{rawListing("a1", 6100)}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Updated)
	listing := getByExternalID(t, db, "a1")
	assert.True(t, listing.IsActive)
	assert.WithinDuration(t, stale, listing.CreatedAt, time.Second)
}

func TestReconcile_EmptyBatchOnlySweeps(t *testing.T) {
	r, _ := newTestReconciler(t, 72*time.Hour)

	stats, err := r.Reconcile(nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}
