package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"canteenopt/internal/models"
)

// Paths names the four CSV datasets consumed by the pipeline. The column
// layouts match the files written by the synthetic generator.
type Paths struct {
	Sales       string `yaml:"sales"`
	Operational string `yaml:"operational"`
	Weather     string `yaml:"weather"`
	Academic    string `yaml:"academic"`
}

const dateLayout = "2006-01-02"

// Load reads all four datasets and assembles a store over the default
// catalogue. Missing context files are tolerated (lookups fall back to
// defaults); the sales file is required because it defines the episode
// date range.
func Load(paths Paths) (*Store, error) {
	sales, err := LoadSales(paths.Sales)
	if err != nil {
		return nil, fmt.Errorf("loading sales data: %w", err)
	}

	operational, err := LoadOperational(paths.Operational)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading operational data: %w", err)
	}
	weather, err := LoadWeather(paths.Weather)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading weather data: %w", err)
	}
	academic, err := LoadAcademic(paths.Academic)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading academic calendar: %w", err)
	}

	return NewStore(models.DefaultCatalogue(), sales, operational, weather, academic), nil
}

// LoadSales reads historical_sales.csv
// (date,item_id,item_name,quantity_sold,price,cost).
func LoadSales(path string) ([]models.SalesRecord, error) {
	var out []models.SalesRecord
	err := readCSV(path, 6, func(row []string) error {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("bad date %q: %w", row[0], err)
		}
		qty, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q: %w", row[3], err)
		}
		price, _ := strconv.ParseFloat(row[4], 64)
		cost, _ := strconv.ParseFloat(row[5], 64)
		out = append(out, models.SalesRecord{
			Date:         date,
			ItemID:       row[1],
			ItemName:     row[2],
			QuantitySold: qty,
			Price:        price,
			Cost:         cost,
		})
		return nil
	})
	return out, err
}

// LoadOperational reads operational_data.csv
// (date,student_count,staff_available,canteen_capacity,event_today,
// hostel_open,is_holiday,is_exam_period).
func LoadOperational(path string) ([]models.OperationalRecord, error) {
	var out []models.OperationalRecord
	err := readCSV(path, 8, func(row []string) error {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("bad date %q: %w", row[0], err)
		}
		fields, err := parseFloats(row[1:])
		if err != nil {
			return err
		}
		out = append(out, models.OperationalRecord{
			Date:            date,
			StudentCount:    fields[0],
			StaffAvailable:  fields[1],
			CanteenCapacity: fields[2],
			EventToday:      int(fields[3]),
			HostelOpen:      int(fields[4]),
			IsHoliday:       int(fields[5]),
			IsExamPeriod:    int(fields[6]),
		})
		return nil
	})
	return out, err
}

// LoadWeather reads weather_data.csv
// (date,temperature,humidity,rainfall,feels_like_temp).
func LoadWeather(path string) ([]models.WeatherRecord, error) {
	var out []models.WeatherRecord
	err := readCSV(path, 5, func(row []string) error {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("bad date %q: %w", row[0], err)
		}
		fields, err := parseFloats(row[1:])
		if err != nil {
			return err
		}
		out = append(out, models.WeatherRecord{
			Date:          date,
			Temperature:   fields[0],
			Humidity:      fields[1],
			Rainfall:      fields[2],
			FeelsLikeTemp: fields[3],
		})
		return nil
	})
	return out, err
}

// LoadAcademic reads academic_calendar.csv
// (date,is_holiday,is_exam_week,is_festival).
func LoadAcademic(path string) ([]models.AcademicRecord, error) {
	var out []models.AcademicRecord
	err := readCSV(path, 4, func(row []string) error {
		date, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return fmt.Errorf("bad date %q: %w", row[0], err)
		}
		fields, err := parseFloats(row[1:])
		if err != nil {
			return err
		}
		out = append(out, models.AcademicRecord{
			Date:       date,
			IsHoliday:  int(fields[0]),
			IsExamWeek: int(fields[1]),
			IsFestival: int(fields[2]),
		})
		return nil
	})
	return out, err
}

// readCSV opens a CSV file, skips the header row, and calls fn for every
// record with the expected column count.
func readCSV(path string, columns int, fn func(row []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columns

	if _, err := r.Read(); err != nil { // header
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%s: reading header: %w", path, err)
	}

	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: line %d: %w", path, line+1, err)
		}
		line++
		if err := fn(row); err != nil {
			return fmt.Errorf("%s: line %d: %w", path, line, err)
		}
	}
}

func parseFloats(row []string) ([]float64, error) {
	out := make([]float64, len(row))
	for i, s := range row {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad numeric field %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
