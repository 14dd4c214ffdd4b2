package synth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteenopt/internal/dataset"
	"canteenopt/internal/models"
)

func span() (time.Time, time.Time) {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
}

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	start, end := span()

	a := New(7).Weather(start, end)
	b := New(7).Weather(start, end)
	require.Equal(t, len(a), len(b))
	assert.Equal(t, a, b)

	c := New(8).Weather(start, end)
	assert.NotEqual(t, a, c)
}

func TestWeatherBounds(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	for _, w := range New(1).Weather(start, end) {
		assert.GreaterOrEqual(t, w.Temperature, 15.0)
		assert.LessOrEqual(t, w.Temperature, 45.0)
		assert.GreaterOrEqual(t, w.Humidity, 40.0)
		assert.LessOrEqual(t, w.Humidity, 100.0)
		assert.GreaterOrEqual(t, w.Rainfall, 0.0)
	}
}

func TestOperationalFlags(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	records := New(1).Operational(start, end)
	byDate := make(map[time.Time]models.OperationalRecord, len(records))
	for _, r := range records {
		byDate[r.Date] = r
		assert.GreaterOrEqual(t, r.StudentCount, 10.0)
		assert.GreaterOrEqual(t, r.StaffAvailable, 1.0)
	}

	// Republic Day is always a holiday; hostels close over summer break
	assert.Equal(t, 1, byDate[time.Date(2024, time.January, 26, 0, 0, 0, 0, time.UTC)].IsHoliday)
	assert.Equal(t, 0, byDate[time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)].HostelOpen)
	assert.Equal(t, 1, byDate[time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)].HostelOpen)

	// May sits inside the exam window
	assert.Equal(t, 1, byDate[time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)].IsExamPeriod)
	assert.Equal(t, 0, byDate[time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)].IsExamPeriod)
}

func TestSalesCoverCatalogue(t *testing.T) {
	start, end := span()
	g := New(3)
	sales := g.Sales(start, end, g.Weather(start, end))

	days := 31
	assert.Len(t, sales, days*len(models.DefaultCatalogue()))
	for _, s := range sales {
		assert.GreaterOrEqual(t, s.QuantitySold, 0.0)
		assert.NotEmpty(t, s.ItemID)
	}
}

func TestWriteAllProducesLoadableDatasets(t *testing.T) {
	dir := t.TempDir()
	start, end := span()

	require.NoError(t, New(42).WriteAll(dir, start, end))

	store, err := dataset.Load(dataset.Paths{
		Sales:       filepath.Join(dir, "historical_sales.csv"),
		Operational: filepath.Join(dir, "operational_data.csv"),
		Weather:     filepath.Join(dir, "weather_data.csv"),
		Academic:    filepath.Join(dir, "academic_calendar.csv"),
	})
	require.NoError(t, err)

	assert.Len(t, store.OrderedDates(), 31)

	_, found := store.WeatherOn(start)
	assert.True(t, found)
	_, found = store.OperationalOn(end)
	assert.True(t, found)
	_, found = store.AcademicOn(start)
	assert.True(t, found)
}
