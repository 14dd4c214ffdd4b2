package features

import "canteenopt/internal/quantize"

// The reduced state is what the policy actually learns over: the demand
// estimate plus a handful of temporal/context features. Both the training
// environment and the decision fusion derive their states through
// Reduced, and both quantize with ReducedRanges, so the keys written
// during training are the keys found at inference.

// Reduced column indices
const (
	RColDemandEstimate = iota
	RColDayOfWeek
	RColMonth
	RColIsWeekend
	RColIsExamPeriod
	RColRainfall

	NumReducedColumns
)

// ReducedColumns lists the reduced state's column names in order
var ReducedColumns = [NumReducedColumns]string{
	"demand_estimate", "day_of_week", "month", "is_weekend",
	"is_exam_period", "rainfall",
}

// ReducedRanges is the fixed, shared per-dimension range table for the
// reduced state. Declared once here and injected everywhere a quantizer
// is built; never derived from observed data.
var ReducedRanges = []quantize.Range{
	{Min: 0, Max: 500}, // demand_estimate, units of one item
	{Min: 0, Max: 7},   // day_of_week, Monday=0
	{Min: 1, Max: 13},  // month
	{Min: 0, Max: 2},   // is_weekend
	{Min: 0, Max: 2},   // is_exam_period
	{Min: 0, Max: 100}, // rainfall, mm
}

// Reduced projects a full feature vector plus a demand estimate down to
// the policy's state representation.
func Reduced(estimate float64, full []float64) []float64 {
	return []float64{
		estimate,
		full[ColDayOfWeek],
		full[ColMonth],
		full[ColIsWeekend],
		full[ColIsExamPeriod],
		full[ColRainfall],
	}
}
