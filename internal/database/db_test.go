package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteenopt/internal/models"
)

func openTestDB(t *testing.T) *AuditDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func record(item string, qty int) models.DecisionRecord {
	return models.DecisionRecord{
		Date:              time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
		ItemID:            item,
		RawEstimate:       101.5,
		PolicyAdjustment:  20,
		CombinedQuantity:  121.5,
		RulesFired:        []string{"rain_comfort_boost", "clamp"},
		PredictedQuantity: qty,
		ModelVersion:      "v2",
	}
}

func TestSaveAndQueryDecisions(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveDecision(record("maggi", 122)))

	rows, err := db.RecentDecisions(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "maggi", row.ItemID)
	assert.Equal(t, 122, row.PredictedQuantity)
	assert.InDelta(t, 101.5, row.RawEstimate, 1e-9)
	assert.Equal(t, "rain_comfort_boost,clamp", row.RulesFired)
	assert.Equal(t, "v2", row.ModelVersion)
}

func TestRecentDecisionsLimit(t *testing.T) {
	db := openTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.SaveDecision(record("maggi", 100+i)))
	}

	rows, err := db.RecentDecisions(3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRecentDecisionsEmpty(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.RecentDecisions(10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
