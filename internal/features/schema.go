package features

// SchemaVersion identifies the feature column layout. The estimator's
// scaler and weights, and the Q-table bundle, are only valid against the
// schema version they were fitted with.
const SchemaVersion = "v2"

// Column indices into the full feature vector. The order is load-bearing:
// downstream components index positionally and the estimator artifact is
// fitted against exactly this layout. Never reorder, only append.
const (
	ColDayOfWeek = iota
	ColMonth
	ColDayOfYear
	ColWeekOfYear
	ColIsWeekend

	ColTemperature
	ColHumidity
	ColRainfall
	ColFeelsLikeTemp

	ColStudentCount
	ColStaffAvailable
	ColCanteenCapacity
	ColEventToday
	ColHostelOpen
	ColIsHoliday
	ColIsExamPeriod

	ColIsExamWeek
	ColIsFestival

	ColSalesLag1
	ColWasteLag1
	ColSales3DayAvg
	ColSalesSameDayPrevWeek

	ColItemIDEncoded
	ColItemPopularityRank

	ColIsMonsoon
	ColIsWinter
	ColIsSummer
	ColTempHumidityInteraction
	ColRainTempInteraction
	ColStudentWeekendInteraction

	NumColumns
)

// Columns lists the schema's column names in vector order
var Columns = [NumColumns]string{
	"day_of_week", "month", "day_of_year", "week_of_year", "is_weekend",
	"temperature", "humidity", "rainfall", "feels_like_temp",
	"student_count", "staff_available", "canteen_capacity", "event_today",
	"hostel_open", "is_holiday", "is_exam_period",
	"is_exam_week", "is_festival",
	"sales_lag_1", "waste_lag_1", "sales_3day_avg", "sales_same_day_prev_week",
	"item_id_encoded", "item_popularity_rank",
	"is_monsoon", "is_winter", "is_summer",
	"temp_humidity_interaction", "rain_temp_interaction", "student_weekend_interaction",
}

// ColumnNames returns the schema column names as a fresh slice
func ColumnNames() []string {
	out := make([]string, NumColumns)
	copy(out, Columns[:])
	return out
}
