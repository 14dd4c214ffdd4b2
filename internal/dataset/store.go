package dataset

import (
	"sort"
	"time"

	"canteenopt/internal/models"
)

// Store holds the four context datasets and the item catalogue, all
// loaded once per process and read-only afterwards. Every lookup is keyed
// by calendar date normalized to midnight UTC so rows loaded from
// different sources line up.
type Store struct {
	weather     map[time.Time]models.WeatherRecord
	operational map[time.Time]models.OperationalRecord
	academic    map[time.Time]models.AcademicRecord
	sales       map[time.Time]map[string]float64

	dates []time.Time
	items []models.Item
	index map[string]int
}

// NewStore builds a store from already-parsed records. The catalogue is
// sorted by item id so encoded indices stay stable across processes.
func NewStore(items []models.Item, sales []models.SalesRecord,
	operational []models.OperationalRecord, weather []models.WeatherRecord,
	academic []models.AcademicRecord) *Store {

	s := &Store{
		weather:     make(map[time.Time]models.WeatherRecord),
		operational: make(map[time.Time]models.OperationalRecord),
		academic:    make(map[time.Time]models.AcademicRecord),
		sales:       make(map[time.Time]map[string]float64),
		index:       make(map[string]int),
	}

	s.items = make([]models.Item, len(items))
	copy(s.items, items)
	sort.Slice(s.items, func(i, j int) bool { return s.items[i].ID < s.items[j].ID })
	for i, item := range s.items {
		s.index[item.ID] = i
	}

	for _, w := range weather {
		s.weather[Midnight(w.Date)] = w
	}
	for _, o := range operational {
		s.operational[Midnight(o.Date)] = o
	}
	for _, a := range academic {
		s.academic[Midnight(a.Date)] = a
	}

	seen := make(map[time.Time]bool)
	for _, r := range sales {
		d := Midnight(r.Date)
		if s.sales[d] == nil {
			s.sales[d] = make(map[string]float64)
		}
		s.sales[d][r.ItemID] += r.QuantitySold
		if !seen[d] {
			seen[d] = true
			s.dates = append(s.dates, d)
		}
	}
	sort.Slice(s.dates, func(i, j int) bool { return s.dates[i].Before(s.dates[j]) })

	return s
}

// Midnight normalizes a timestamp to its calendar date in UTC
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Items returns the catalogue in encoded order
func (s *Store) Items() []models.Item {
	return s.items
}

// Item looks up a catalogue entry by id
func (s *Store) Item(id string) (models.Item, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Item{}, false
	}
	return s.items[i], true
}

// ItemIndex returns the stable encoded index of an item id
func (s *Store) ItemIndex(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// OrderedDates returns the sorted, deduplicated dates covered by the
// sales series. The slice is shared; callers must not mutate it.
func (s *Store) OrderedDates() []time.Time {
	return s.dates
}

// Covers reports whether the sales series has a row for the date
func (s *Store) Covers(date time.Time) bool {
	_, ok := s.sales[Midnight(date)]
	return ok
}

// WeatherOn returns the weather row for a date, or the documented
// defaults when the date has no coverage.
func (s *Store) WeatherOn(date time.Time) (models.WeatherRecord, bool) {
	w, ok := s.weather[Midnight(date)]
	if !ok {
		return models.DefaultWeather(date), false
	}
	return w, true
}

// OperationalOn returns the operational row for a date, or defaults
func (s *Store) OperationalOn(date time.Time) (models.OperationalRecord, bool) {
	o, ok := s.operational[Midnight(date)]
	if !ok {
		return models.DefaultOperational(date), false
	}
	return o, true
}

// AcademicOn returns the academic-calendar row for a date, or defaults
func (s *Store) AcademicOn(date time.Time) (models.AcademicRecord, bool) {
	a, ok := s.academic[Midnight(date)]
	if !ok {
		return models.DefaultAcademic(date), false
	}
	return a, true
}

// SalesOn returns quantity sold per item id on a date; zero for items
// with no row that day.
func (s *Store) SalesOn(date time.Time) map[string]float64 {
	return s.sales[Midnight(date)]
}

// SoldOn returns the quantity of one item sold on a date, zero-filled
func (s *Store) SoldOn(date time.Time, itemID string) float64 {
	return s.sales[Midnight(date)][itemID]
}

// TrailingAverage returns the mean daily sales of an item over the `days`
// calendar days strictly before the date, counting missing days as zero.
func (s *Store) TrailingAverage(date time.Time, itemID string, days int) float64 {
	if days <= 0 {
		return 0
	}
	d := Midnight(date)
	var sum float64
	for i := 1; i <= days; i++ {
		sum += s.SoldOn(d.AddDate(0, 0, -i), itemID)
	}
	return sum / float64(days)
}

// PopularityRank returns the 1-based rank of an item by its popularity
// coefficient, 1 being the most popular. Unknown items rank last.
func (s *Store) PopularityRank(itemID string) float64 {
	item, ok := s.Item(itemID)
	if !ok {
		return float64(len(s.items) + 1)
	}
	rank := 1
	for _, other := range s.items {
		if other.Popularity > item.Popularity {
			rank++
		}
	}
	return float64(rank)
}
