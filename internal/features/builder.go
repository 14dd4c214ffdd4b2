package features

import (
	"fmt"
	"time"

	"canteenopt/internal/dataset"
)

// UnknownItemError reports a request for an item id that is not in the
// catalogue. Surfaced to callers as user error.
type UnknownItemError struct {
	ItemID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown menu item %q", e.ItemID)
}

// NoCoverageError reports a date outside the loaded calendar range when
// the builder runs in strict mode. In the default mode the builder
// substitutes the documented context defaults instead.
type NoCoverageError struct {
	Date time.Time
}

func (e *NoCoverageError) Error() string {
	return fmt.Sprintf("no calendar coverage for %s", e.Date.Format("2006-01-02"))
}

// Overrides carries caller-supplied real-time values that replace the
// corresponding context fields before any derived feature is computed.
// Nil fields leave the historical/default value untouched.
type Overrides struct {
	Rainfall     *float64
	StudentCount *float64
	EventToday   *int
}

// WasteFraction is the deterministic estimate of previous-day waste as a
// share of previous-day sales.
const WasteFraction = 0.10

// Builder turns (date, item, context) into the fixed-order feature
// vector. It is a pure read-and-transform over the dataset store: no
// internal state, safe for concurrent use.
type Builder struct {
	store *dataset.Store

	// Strict makes missing context rows an error instead of falling
	// back to the documented defaults.
	Strict bool
}

// NewBuilder creates a feature vector builder over a dataset store
func NewBuilder(store *dataset.Store) *Builder {
	return &Builder{store: store}
}

// Build produces the full feature vector for one (date, item) pair.
// The computation order is fixed: temporal, weather, operational,
// academic, historical, item, derived.
func (b *Builder) Build(date time.Time, itemID string, ov Overrides) ([]float64, error) {
	idx, ok := b.store.ItemIndex(itemID)
	if !ok {
		return nil, &UnknownItemError{ItemID: itemID}
	}

	day := dataset.Midnight(date)
	v := make([]float64, NumColumns)

	// Temporal
	v[ColDayOfWeek] = float64(mondayWeekday(day))
	v[ColMonth] = float64(day.Month())
	v[ColDayOfYear] = float64(day.YearDay())
	_, isoWeek := day.ISOWeek()
	v[ColWeekOfYear] = float64(isoWeek)
	if mondayWeekday(day) >= 5 {
		v[ColIsWeekend] = 1
	}

	// Weather
	weather, found := b.store.WeatherOn(day)
	if !found && b.Strict {
		return nil, &NoCoverageError{Date: day}
	}
	v[ColTemperature] = weather.Temperature
	v[ColHumidity] = weather.Humidity
	v[ColRainfall] = weather.Rainfall
	v[ColFeelsLikeTemp] = weather.FeelsLikeTemp

	// Operational
	op, found := b.store.OperationalOn(day)
	if !found && b.Strict {
		return nil, &NoCoverageError{Date: day}
	}
	v[ColStudentCount] = op.StudentCount
	v[ColStaffAvailable] = op.StaffAvailable
	v[ColCanteenCapacity] = op.CanteenCapacity
	v[ColEventToday] = float64(op.EventToday)
	v[ColHostelOpen] = float64(op.HostelOpen)
	v[ColIsHoliday] = float64(op.IsHoliday)
	v[ColIsExamPeriod] = float64(op.IsExamPeriod)

	// Academic
	ac, _ := b.store.AcademicOn(day)
	v[ColIsExamWeek] = float64(ac.IsExamWeek)
	v[ColIsFestival] = float64(ac.IsFestival)

	// Real-time overrides replace context before anything derives from it
	if ov.Rainfall != nil {
		v[ColRainfall] = *ov.Rainfall
	}
	if ov.StudentCount != nil {
		v[ColStudentCount] = *ov.StudentCount
	}
	if ov.EventToday != nil {
		v[ColEventToday] = float64(*ov.EventToday)
	}

	// Historical sales aggregates, zero-filled on short history
	lag1 := b.store.SoldOn(day.AddDate(0, 0, -1), itemID)
	v[ColSalesLag1] = lag1
	v[ColWasteLag1] = lag1 * WasteFraction
	v[ColSales3DayAvg] = b.store.TrailingAverage(day, itemID, 3)
	v[ColSalesSameDayPrevWeek] = b.store.SoldOn(day.AddDate(0, 0, -7), itemID)

	// Item
	v[ColItemIDEncoded] = float64(idx)
	v[ColItemPopularityRank] = b.store.PopularityRank(itemID)

	// Derived seasonal flags and interactions
	month := day.Month()
	if month >= time.June && month <= time.September {
		v[ColIsMonsoon] = 1
	}
	if month == time.December || month <= time.February {
		v[ColIsWinter] = 1
	}
	if month >= time.March && month <= time.May {
		v[ColIsSummer] = 1
	}
	v[ColTempHumidityInteraction] = v[ColTemperature] * v[ColHumidity] / 100
	v[ColRainTempInteraction] = v[ColRainfall] * (40 - v[ColTemperature])
	v[ColStudentWeekendInteraction] = v[ColStudentCount] * v[ColIsWeekend]

	return v, nil
}

// mondayWeekday maps Go's Sunday-first weekday to the Monday=0 numbering
// the historical datasets were generated with.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
