package decision

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteenopt/internal/agent"
	"canteenopt/internal/bundle"
	"canteenopt/internal/dataset"
	"canteenopt/internal/estimator"
	"canteenopt/internal/features"
	"canteenopt/internal/models"
	"canteenopt/internal/sim"
)

func testStore() *dataset.Store {
	return dataset.NewStore(models.DefaultCatalogue(), nil, nil, nil, nil)
}

// testBundle carries a constant estimator and an empty Q-table
func testBundle(estimate float64) *bundle.Bundle {
	scale := make([]float64, features.NumColumns)
	for i := range scale {
		scale[i] = 1
	}
	return &bundle.Bundle{
		SchemaVersion:  features.SchemaVersion,
		FeatureColumns: features.ColumnNames(),
		Estimator: estimator.Linear{
			Weights:   make([]float64, features.NumColumns),
			Intercept: estimate,
			Scaler:    estimator.Scaler{Mean: make([]float64, features.NumColumns), Scale: scale},
		},
		Agent: agent.Snapshot{
			QTable:     map[string][]float64{},
			ActionSize: len(sim.DefaultActionLevels),
			StateSize:  features.NumReducedColumns,
		},
		ActionLevels:  sim.DefaultActionLevels,
		ReducedRanges: features.ReducedRanges,
	}
}

// A Wednesday outside monsoon, exams and vacation
var quietDay = time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)

func TestDecideUnknownItem(t *testing.T) {
	f, err := New(testStore(), testBundle(100))
	require.NoError(t, err)

	_, err = f.Decide(Request{Date: quietDay, ItemID: "pizza"})
	require.Error(t, err)

	var unknown *features.UnknownItemError
	assert.True(t, errors.As(err, &unknown))
}

func TestDecideQuietDayPassesEstimateThrough(t *testing.T) {
	f, err := New(testStore(), testBundle(100))
	require.NoError(t, err)

	rec, err := f.Decide(Request{Date: quietDay, ItemID: "veg_biryani"})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, rec.RawEstimate, 1e-9)
	assert.Equal(t, 0.0, rec.PolicyAdjustment) // empty table
	assert.Equal(t, 100, rec.PredictedQuantity)
	assert.Equal(t, []string{"clamp"}, rec.RulesFired)
	assert.Equal(t, features.SchemaVersion, rec.ModelVersion)
	assert.Equal(t, quietDay, rec.Date)
}

func TestDecideZeroStockAlwaysZero(t *testing.T) {
	f, err := New(testStore(), testBundle(250))
	require.NoError(t, err)

	stock := 0
	rec, err := f.Decide(Request{Date: quietDay, ItemID: "maggi", CurrentStock: &stock})
	require.NoError(t, err)

	assert.Equal(t, 0, rec.PredictedQuantity)
	assert.Equal(t, []string{"zero_stock"}, rec.RulesFired)
	// The audit trail still shows what would have been prepared
	assert.InDelta(t, 250.0, rec.RawEstimate, 1e-9)
}

func TestDecideRainfallOverrideBoostsComfortFood(t *testing.T) {
	f, err := New(testStore(), testBundle(100))
	require.NoError(t, err)

	dry, err := f.Decide(Request{Date: quietDay, ItemID: "maggi"})
	require.NoError(t, err)

	rain := 25.0
	wet, err := f.Decide(Request{Date: quietDay, ItemID: "maggi", Rainfall: &rain})
	require.NoError(t, err)

	assert.Equal(t, 100, dry.PredictedQuantity)
	assert.Equal(t, 115, wet.PredictedQuantity)
	assert.Contains(t, wet.RulesFired, "rain_comfort_boost")
}

func TestDecideAppliesLearnedAdjustment(t *testing.T) {
	store := testStore()
	bnd := testBundle(100)

	// Compute the key the pipeline will look up and plant a row whose
	// argmax points at level 150 (index 7).
	vec, err := features.NewBuilder(store).Build(quietDay, "maggi", features.Overrides{})
	require.NoError(t, err)
	key := bnd.Quantizer().Quantize(features.Reduced(100, vec))

	row := make([]float64, len(sim.DefaultActionLevels))
	row[7] = 5.0
	bnd.Agent.QTable[string(key)] = row

	f, err := New(store, bnd)
	require.NoError(t, err)

	rec, err := f.Decide(Request{Date: quietDay, ItemID: "maggi"})
	require.NoError(t, err)

	// levels[7]=150 minus midpoint levels[5]=100
	assert.Equal(t, 50.0, rec.PolicyAdjustment)
	assert.InDelta(t, 150.0, rec.CombinedQuantity, 1e-9)
	assert.Equal(t, 150, rec.PredictedQuantity)
}

func TestDecideNeverNegative(t *testing.T) {
	f, err := New(testStore(), testBundle(-80))
	require.NoError(t, err)

	rec, err := f.Decide(Request{Date: quietDay, ItemID: "ghugni"})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.PredictedQuantity)
}

func TestDecideClampsAtMaximum(t *testing.T) {
	f, err := New(testStore(), testBundle(2000))
	require.NoError(t, err)

	rec, err := f.Decide(Request{Date: quietDay, ItemID: "veg_biryani"})
	require.NoError(t, err)
	assert.Equal(t, int(MaxQuantity), rec.PredictedQuantity)
	assert.Contains(t, rec.RulesFired, "clamp")
}

func TestModelVersion(t *testing.T) {
	f, err := New(testStore(), testBundle(100))
	require.NoError(t, err)
	assert.Equal(t, features.SchemaVersion, f.ModelVersion())
}
