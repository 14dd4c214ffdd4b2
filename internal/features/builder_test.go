package features

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteenopt/internal/dataset"
	"canteenopt/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func emptyStore() *dataset.Store {
	return dataset.NewStore(models.DefaultCatalogue(), nil, nil, nil, nil)
}

func TestBuildUnknownItem(t *testing.T) {
	b := NewBuilder(emptyStore())

	_, err := b.Build(day(2024, time.March, 4), "pizza", Overrides{})
	require.Error(t, err)

	var unknown *UnknownItemError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "pizza", unknown.ItemID)
}

func TestBuildDefaultsOnEmptyHistory(t *testing.T) {
	b := NewBuilder(emptyStore())

	// Monday, March 4th 2024
	v, err := b.Build(day(2024, time.March, 4), "maggi", Overrides{})
	require.NoError(t, err)
	require.Len(t, v, NumColumns)

	assert.Equal(t, 0.0, v[ColDayOfWeek]) // Monday = 0
	assert.Equal(t, 3.0, v[ColMonth])
	assert.Equal(t, 64.0, v[ColDayOfYear]) // leap year
	assert.Equal(t, 0.0, v[ColIsWeekend])

	assert.Equal(t, models.DefaultTemperature, v[ColTemperature])
	assert.Equal(t, models.DefaultHumidity, v[ColHumidity])
	assert.Equal(t, models.DefaultRainfall, v[ColRainfall])
	assert.Equal(t, models.DefaultStudentCount, v[ColStudentCount])
	assert.Equal(t, models.DefaultCanteenCapacity, v[ColCanteenCapacity])
	assert.Equal(t, 1.0, v[ColHostelOpen])

	// No history: lags and averages zero-fill
	assert.Equal(t, 0.0, v[ColSalesLag1])
	assert.Equal(t, 0.0, v[ColWasteLag1])
	assert.Equal(t, 0.0, v[ColSales3DayAvg])
	assert.Equal(t, 0.0, v[ColSalesSameDayPrevWeek])

	// March is summer, not monsoon, not winter
	assert.Equal(t, 1.0, v[ColIsSummer])
	assert.Equal(t, 0.0, v[ColIsMonsoon])
	assert.Equal(t, 0.0, v[ColIsWinter])

	assert.InDelta(t, 25*70/100.0, v[ColTempHumidityInteraction], 1e-9)
	assert.Equal(t, 0.0, v[ColRainTempInteraction])
	assert.Equal(t, 0.0, v[ColStudentWeekendInteraction])
}

func TestBuildWeekendFlag(t *testing.T) {
	b := NewBuilder(emptyStore())

	// Saturday, March 9th 2024
	v, err := b.Build(day(2024, time.March, 9), "maggi", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, v[ColDayOfWeek])
	assert.Equal(t, 1.0, v[ColIsWeekend])
	assert.Equal(t, models.DefaultStudentCount, v[ColStudentWeekendInteraction])
}

func TestBuildItemColumns(t *testing.T) {
	b := NewBuilder(emptyStore())

	v, err := b.Build(day(2024, time.March, 4), "maggi", Overrides{})
	require.NoError(t, err)

	// Catalogue sorts by id; maggi is 7th alphabetically
	assert.Equal(t, 6.0, v[ColItemIDEncoded])
	// maggi carries the highest popularity coefficient
	assert.Equal(t, 1.0, v[ColItemPopularityRank])
}

func TestBuildHistoricalAggregates(t *testing.T) {
	d := day(2024, time.March, 10)
	sales := []models.SalesRecord{
		{Date: d.AddDate(0, 0, -1), ItemID: "maggi", QuantitySold: 40},
		{Date: d.AddDate(0, 0, -2), ItemID: "maggi", QuantitySold: 20},
		{Date: d.AddDate(0, 0, -7), ItemID: "maggi", QuantitySold: 70},
	}
	store := dataset.NewStore(models.DefaultCatalogue(), sales, nil, nil, nil)
	b := NewBuilder(store)

	v, err := b.Build(d, "maggi", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 40.0, v[ColSalesLag1])
	assert.InDelta(t, 40*WasteFraction, v[ColWasteLag1], 1e-9)
	assert.InDelta(t, (40+20)/3.0, v[ColSales3DayAvg], 1e-9)
	assert.Equal(t, 70.0, v[ColSalesSameDayPrevWeek])
}

func TestBuildOverridesReplaceContextBeforeDerivation(t *testing.T) {
	b := NewBuilder(emptyStore())

	rain := 30.0
	students := 400.0
	event := 1
	v, err := b.Build(day(2024, time.March, 9), "maggi", Overrides{
		Rainfall:     &rain,
		StudentCount: &students,
		EventToday:   &event,
	})
	require.NoError(t, err)

	assert.Equal(t, 30.0, v[ColRainfall])
	assert.Equal(t, 400.0, v[ColStudentCount])
	assert.Equal(t, 1.0, v[ColEventToday])

	// Derived features see the overridden values
	assert.InDelta(t, 30*(40-models.DefaultTemperature), v[ColRainTempInteraction], 1e-9)
	assert.Equal(t, 400.0, v[ColStudentWeekendInteraction])
}

func TestBuildStrictModeRequiresCoverage(t *testing.T) {
	b := NewBuilder(emptyStore())
	b.Strict = true

	_, err := b.Build(day(2024, time.March, 4), "maggi", Overrides{})
	require.Error(t, err)

	var noCov *NoCoverageError
	assert.True(t, errors.As(err, &noCov))
}

func TestBuildStrictModeWithCoverage(t *testing.T) {
	d := day(2024, time.March, 4)
	weather := []models.WeatherRecord{{Date: d, Temperature: 30, Humidity: 80, Rainfall: 5, FeelsLikeTemp: 32}}
	operational := []models.OperationalRecord{{Date: d, StudentCount: 300, StaffAvailable: 6, CanteenCapacity: 350, HostelOpen: 1}}
	store := dataset.NewStore(models.DefaultCatalogue(), nil, operational, weather, nil)

	b := NewBuilder(store)
	b.Strict = true

	v, err := b.Build(d, "maggi", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, v[ColTemperature])
	assert.Equal(t, 300.0, v[ColStudentCount])
}

func TestMondayWeekday(t *testing.T) {
	assert.Equal(t, 0, mondayWeekday(day(2024, time.March, 4))) // Monday
	assert.Equal(t, 5, mondayWeekday(day(2024, time.March, 9))) // Saturday
	assert.Equal(t, 6, mondayWeekday(day(2024, time.March, 10)))
}

func TestSchemaColumnsMatchIndices(t *testing.T) {
	names := ColumnNames()
	require.Len(t, names, NumColumns)
	assert.Equal(t, "day_of_week", names[ColDayOfWeek])
	assert.Equal(t, "rainfall", names[ColRainfall])
	assert.Equal(t, "sales_3day_avg", names[ColSales3DayAvg])
	assert.Equal(t, "student_weekend_interaction", names[ColStudentWeekendInteraction])
}

func TestReducedProjection(t *testing.T) {
	full := make([]float64, NumColumns)
	full[ColDayOfWeek] = 2
	full[ColMonth] = 7
	full[ColIsWeekend] = 1
	full[ColIsExamPeriod] = 1
	full[ColRainfall] = 12.5

	r := Reduced(180, full)
	require.Len(t, r, NumReducedColumns)
	assert.Equal(t, []float64{180, 2, 7, 1, 1, 12.5}, r)
}

func TestReducedRangesCoverEveryColumn(t *testing.T) {
	require.Len(t, ReducedRanges, NumReducedColumns)
	for i, r := range ReducedRanges {
		assert.Greater(t, r.Max, r.Min, "range %d", i)
	}
}
