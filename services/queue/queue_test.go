package queue

import (
	"path/filepath"
	"testing"

	"pinghunt/database"
	"pinghunt/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "queue.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func addPing(t *testing.T, db *gorm.DB, name string) *models.Ping {
	t.Helper()
	pos, err := NextPosition(db)
	require.NoError(t, err)
	p := &models.Ping{
		Name:        name,
		ClaimType:   models.ClaimTypeNFC,
		ClaimStatus: models.ClaimStatusUnclaimed,
		Active:      true,
		FundStatus:  models.FundStatusPending,
	}
	p.QueuePosition = pos
	require.NoError(t, db.Create(p).Error)
	return p
}

func unclaimedPositions(t *testing.T, db *gorm.DB) []int {
	t.Helper()
	var pings []models.Ping
	require.NoError(t, db.Where("claim_status = ?", models.ClaimStatusUnclaimed).
		Order("queue_position asc").Find(&pings).Error)
	positions := make([]int, len(pings))
	for i, p := range pings {
		positions[i] = p.QueuePosition
	}
	return positions
}

func TestNextPositionAppends(t *testing.T) {
	db := testDB(t)

	a := addPing(t, db, "a")
	b := addPing(t, db, "b")
	c := addPing(t, db, "c")

	assert.Equal(t, 1, a.QueuePosition)
	assert.Equal(t, 2, b.QueuePosition)
	assert.Equal(t, 3, c.QueuePosition)
}

func TestResequenceAfterDelete(t *testing.T) {
	db := testDB(t)

	addPing(t, db, "a")
	b := addPing(t, db, "b")
	addPing(t, db, "c")
	addPing(t, db, "d")

	require.NoError(t, db.Delete(&models.Ping{}, b.ID).Error)
	require.NoError(t, Resequence(db))

	assert.Equal(t, []int{1, 2, 3}, unclaimedPositions(t, db))
}

func TestResequenceAfterClaim(t *testing.T) {
	db := testDB(t)

	a := addPing(t, db, "a")
	b := addPing(t, db, "b")
	addPing(t, db, "c")

	require.NoError(t, db.Model(a).Update("claim_status", models.ClaimStatusClaimed).Error)
	require.NoError(t, Resequence(db))

	assert.Equal(t, []int{1, 2}, unclaimedPositions(t, db))

	// the former second ping is promoted to the head
	var promoted models.Ping
	require.NoError(t, db.First(&promoted, b.ID).Error)
	assert.Equal(t, 1, promoted.QueuePosition)
}

func TestGapFreeAcrossMixedOperations(t *testing.T) {
	db := testDB(t)

	pings := make([]*models.Ping, 0, 6)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		pings = append(pings, addPing(t, db, name))
	}

	require.NoError(t, db.Delete(&models.Ping{}, pings[0].ID).Error)
	require.NoError(t, Resequence(db))
	require.NoError(t, db.Model(pings[3]).Update("claim_status", models.ClaimStatusClaimed).Error)
	require.NoError(t, Resequence(db))
	require.NoError(t, db.Delete(&models.Ping{}, pings[5].ID).Error)
	require.NoError(t, Resequence(db))

	g := addPing(t, db, "g")

	assert.Equal(t, []int{1, 2, 3, 4}, unclaimedPositions(t, db))
	assert.Equal(t, 4, g.QueuePosition)
}
