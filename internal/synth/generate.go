package synth

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"canteenopt/internal/models"
)

// Generator produces synthetic historical datasets with the seasonality
// the real canteen sees: monsoon rain, winter and summer temperature
// bands, holiday and exam calendars, and popularity-weighted item sales.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator with a fixed seed for reproducible datasets
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// holidays observed by the institution (month/day pairs, every year)
var holidays = map[[2]int]bool{
	{1, 26}:  true, // Republic Day
	{3, 8}:   true,
	{4, 14}:  true,
	{8, 15}:  true, // Independence Day
	{10, 2}:  true, // Gandhi Jayanti
	{12, 25}: true,
}

// festivalDays in October (Durga Puja window)
var festivalDays = map[int]bool{12: true, 13: true, 14: true, 15: true}

func isExamPeriod(d time.Time) bool {
	m := d.Month()
	return m == time.May || (m == time.November && d.Day() >= 15) || (m == time.December && d.Day() <= 15)
}

func isHoliday(d time.Time) bool {
	return holidays[[2]int{int(d.Month()), d.Day()}]
}

// Weather generates one weather row per day in [start, end]
func (g *Generator) Weather(start, end time.Time) []models.WeatherRecord {
	var out []models.WeatherRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		var temp, humidity float64
		switch {
		case d.Month() == time.December || d.Month() <= time.February:
			temp = g.normal(20, 5)
			humidity = g.normal(65, 15)
		case d.Month() >= time.March && d.Month() <= time.May:
			temp = g.normal(35, 8)
			humidity = g.normal(60, 15)
		case d.Month() >= time.June && d.Month() <= time.September:
			temp = g.normal(28, 4)
			humidity = g.normal(85, 10)
		default:
			temp = g.normal(25, 6)
			humidity = g.normal(65, 15)
		}
		temp = clamp(temp, 15, 45)
		humidity = clamp(humidity, 40, 100)

		var rainfall float64
		switch {
		case d.Month() >= time.June && d.Month() <= time.September:
			if g.rng.Float64() < 0.6 {
				rainfall = g.rng.ExpFloat64() * 15
			}
		case d.Month() >= time.March && d.Month() <= time.May:
			if g.rng.Float64() < 0.2 {
				rainfall = g.rng.ExpFloat64() * 8
			}
		default:
			if g.rng.Float64() < 0.1 {
				rainfall = g.rng.ExpFloat64() * 5
			}
		}

		feelsLike := temp + (humidity-60)*0.1
		if rainfall > 10 {
			feelsLike -= 2
		}

		out = append(out, models.WeatherRecord{
			Date:          d,
			Temperature:   round1(temp),
			Humidity:      round1(humidity),
			Rainfall:      round1(rainfall),
			FeelsLikeTemp: round1(feelsLike),
		})
	}
	return out
}

// Operational generates one operational row per day
func (g *Generator) Operational(start, end time.Time) []models.OperationalRecord {
	var out []models.OperationalRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday

		students := 280.0
		if weekend {
			students = 120
		}
		switch d.Month() {
		case time.June, time.July:
			students *= 0.3
		case time.December, time.January:
			students *= 0.5
		}

		holiday := isHoliday(d)
		if holiday {
			students *= 0.1
		}
		exam := isExamPeriod(d)
		if exam {
			students *= 1.4
		}

		event := 0
		if d.Month() == time.October && festivalDays[d.Day()] {
			event = 1
			students *= 0.2
		} else if g.rng.Float64() < 0.05 {
			event = 1
			students *= 1.6
		}

		studentCount := math.Max(10, students+g.normal(0, 20))

		staff := 6.0
		if weekend {
			staff = 3
		}
		if holiday {
			staff = 2
		}
		staff = math.Max(1, staff+float64(g.rng.Intn(3)-1))

		capacity := 320.0
		if event == 1 {
			capacity = 450
		}

		hostelOpen := 1
		if d.Month() == time.June || d.Month() == time.July || holiday {
			hostelOpen = 0
		}

		out = append(out, models.OperationalRecord{
			Date:            d,
			StudentCount:    math.Round(studentCount),
			StaffAvailable:  staff,
			CanteenCapacity: capacity,
			EventToday:      event,
			HostelOpen:      hostelOpen,
			IsHoliday:       boolInt(holiday),
			IsExamPeriod:    boolInt(exam),
		})
	}
	return out
}

// Academic generates one academic-calendar row per day
func (g *Generator) Academic(start, end time.Time) []models.AcademicRecord {
	var out []models.AcademicRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		festival := d.Month() == time.October && festivalDays[d.Day()]
		out = append(out, models.AcademicRecord{
			Date:       d,
			IsHoliday:  boolInt(isHoliday(d)),
			IsExamWeek: boolInt(isExamPeriod(d)),
			IsFestival: boolInt(festival),
		})
	}
	return out
}

// Sales generates per-item daily sales consistent with the weather rows
func (g *Generator) Sales(start, end time.Time, weather []models.WeatherRecord) []models.SalesRecord {
	rainByDate := make(map[time.Time]float64, len(weather))
	for _, w := range weather {
		rainByDate[w.Date] = w.Rainfall
	}

	var out []models.SalesRecord
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		for _, item := range models.DefaultCatalogue() {
			base := 50 + g.rng.Float64()*150
			if weekend {
				base = 20 + g.rng.Float64()*80
			}
			base *= item.Popularity

			if item.HasTrait(models.TraitComfortFood) && rainByDate[d] > 10 {
				base *= 1.3
			}

			qty := math.Max(0, math.Round(base+g.normal(0, 20)))
			out = append(out, models.SalesRecord{
				Date:         d,
				ItemID:       item.ID,
				ItemName:     item.Name,
				QuantitySold: qty,
				Price:        item.Price,
				Cost:         item.Cost,
			})
		}
	}
	return out
}

// WriteAll generates every dataset over the date range and writes the
// four CSV files into dir.
func (g *Generator) WriteAll(dir string, start, end time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	weather := g.Weather(start, end)
	operational := g.Operational(start, end)
	academic := g.Academic(start, end)
	sales := g.Sales(start, end, weather)

	if err := writeCSV(filepath.Join(dir, "weather_data.csv"),
		[]string{"date", "temperature", "humidity", "rainfall", "feels_like_temp"},
		len(weather), func(i int) []string {
			w := weather[i]
			return []string{day(w.Date), f1(w.Temperature), f1(w.Humidity), f1(w.Rainfall), f1(w.FeelsLikeTemp)}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "operational_data.csv"),
		[]string{"date", "student_count", "staff_available", "canteen_capacity",
			"event_today", "hostel_open", "is_holiday", "is_exam_period"},
		len(operational), func(i int) []string {
			o := operational[i]
			return []string{day(o.Date), f0(o.StudentCount), f0(o.StaffAvailable), f0(o.CanteenCapacity),
				strconv.Itoa(o.EventToday), strconv.Itoa(o.HostelOpen),
				strconv.Itoa(o.IsHoliday), strconv.Itoa(o.IsExamPeriod)}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, "academic_calendar.csv"),
		[]string{"date", "is_holiday", "is_exam_week", "is_festival"},
		len(academic), func(i int) []string {
			a := academic[i]
			return []string{day(a.Date), strconv.Itoa(a.IsHoliday),
				strconv.Itoa(a.IsExamWeek), strconv.Itoa(a.IsFestival)}
		}); err != nil {
		return err
	}

	return writeCSV(filepath.Join(dir, "historical_sales.csv"),
		[]string{"date", "item_id", "item_name", "quantity_sold", "price", "cost"},
		len(sales), func(i int) []string {
			s := sales[i]
			return []string{day(s.Date), s.ItemID, s.ItemName, f0(s.QuantitySold), f0(s.Price), f0(s.Cost)}
		})
}

func writeCSV(path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func (g *Generator) normal(mean, stddev float64) float64 {
	return mean + g.rng.NormFloat64()*stddev
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func f0(x float64) string {
	return strconv.FormatFloat(x, 'f', 0, 64)
}

func f1(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}
