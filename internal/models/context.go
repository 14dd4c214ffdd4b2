package models

import "time"

// WeatherRecord holds the weather observation for one calendar date
type WeatherRecord struct {
	Date          time.Time
	Temperature   float64
	Humidity      float64
	Rainfall      float64
	FeelsLikeTemp float64
}

// OperationalRecord holds the canteen's operational facts for one date.
// Student count drives base demand; staff and capacity bound production;
// the flags capture events, hostel closures, holidays and exam periods.
type OperationalRecord struct {
	Date            time.Time
	StudentCount    float64
	StaffAvailable  float64
	CanteenCapacity float64
	EventToday      int
	HostelOpen      int
	IsHoliday       int
	IsExamPeriod    int
}

// AcademicRecord holds the academic-calendar flags for one date
type AcademicRecord struct {
	Date       time.Time
	IsHoliday  int
	IsExamWeek int
	IsFestival int
}

// SalesRecord holds one day's sales for one menu item
type SalesRecord struct {
	Date         time.Time
	ItemID       string
	ItemName     string
	QuantitySold float64
	Price        float64
	Cost         float64
}

// Default context values substituted when a date has no matching row.
// These are part of the feature schema contract: the training environment
// and the inference path must agree on them exactly.
const (
	DefaultTemperature   = 25.0
	DefaultHumidity      = 70.0
	DefaultRainfall      = 0.0
	DefaultFeelsLikeTemp = 25.0

	DefaultStudentCount    = 250.0
	DefaultStaffAvailable  = 5.0
	DefaultCanteenCapacity = 300.0
	DefaultHostelOpen      = 1
)

// DefaultWeather returns the documented fallback weather row for a date
func DefaultWeather(date time.Time) WeatherRecord {
	return WeatherRecord{
		Date:          date,
		Temperature:   DefaultTemperature,
		Humidity:      DefaultHumidity,
		Rainfall:      DefaultRainfall,
		FeelsLikeTemp: DefaultFeelsLikeTemp,
	}
}

// DefaultOperational returns the documented fallback operational row for a date
func DefaultOperational(date time.Time) OperationalRecord {
	return OperationalRecord{
		Date:            date,
		StudentCount:    DefaultStudentCount,
		StaffAvailable:  DefaultStaffAvailable,
		CanteenCapacity: DefaultCanteenCapacity,
		EventToday:      0,
		HostelOpen:      DefaultHostelOpen,
		IsHoliday:       0,
		IsExamPeriod:    0,
	}
}

// DefaultAcademic returns the documented fallback academic row for a date
func DefaultAcademic(date time.Time) AcademicRecord {
	return AcademicRecord{Date: date}
}
