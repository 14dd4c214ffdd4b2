package models

import "fmt"

// Item represents a dish on the canteen menu catalogue.
// Catalogue entries are loaded once at startup and treated as read-only
// reference data; unit economics and popularity feed the demand pipeline.
type Item struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	Popularity float64 `json:"popularity"`
}

// ItemTrait marks an item for one of the demand rule categories
type ItemTrait string

const (
	TraitComfortFood     ItemTrait = "comfort_food"
	TraitWeekendFavorite ItemTrait = "weekend_favorite"
	TraitStudySnack      ItemTrait = "study_snack"
)

// defaultTraits maps catalogue items to the rule categories they trigger.
// Comfort food sells on rainy days, weekend favorites resist the weekend
// slump, study snacks spike during exam periods.
var defaultTraits = map[string][]ItemTrait{
	"maggi":       {TraitComfortFood, TraitStudySnack},
	"tea_biscuit": {TraitComfortFood, TraitStudySnack},
	"ice_cream":   {TraitWeekendFavorite},
	"veg_momo":    {TraitWeekendFavorite},
}

// HasTrait reports whether the item belongs to a rule category
func (i *Item) HasTrait(trait ItemTrait) bool {
	for _, t := range defaultTraits[i.ID] {
		if t == trait {
			return true
		}
	}
	return false
}

// DefaultCatalogue returns the standard ten-item canteen menu with unit
// economics and popularity coefficients.
func DefaultCatalogue() []Item {
	return []Item{
		{ID: "veg_biryani", Name: "Vegetable Biryani", Price: 50, Cost: 30, Popularity: 1.2},
		{ID: "fish_curry_rice", Name: "Fish Curry Rice", Price: 80, Cost: 50, Popularity: 1.1},
		{ID: "luchi_aloo", Name: "Luchi Aloo", Price: 30, Cost: 15, Popularity: 0.9},
		{ID: "ghugni", Name: "Ghugni", Price: 25, Cost: 10, Popularity: 0.8},
		{ID: "maggi", Name: "Maggi Noodles", Price: 20, Cost: 8, Popularity: 1.5},
		{ID: "tea_biscuit", Name: "Tea & Biscuit", Price: 15, Cost: 5, Popularity: 1.3},
		{ID: "chicken_roll", Name: "Chicken Roll", Price: 40, Cost: 25, Popularity: 1.2},
		{ID: "egg_roll", Name: "Egg Roll", Price: 35, Cost: 20, Popularity: 1.0},
		{ID: "veg_momo", Name: "Vegetable Momo", Price: 45, Cost: 25, Popularity: 0.9},
		{ID: "ice_cream", Name: "Ice Cream", Price: 30, Cost: 15, Popularity: 0.7},
	}
}

// ValidateItem validates a catalogue entry
func ValidateItem(item *Item) error {
	if item.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if item.Price <= 0 {
		return fmt.Errorf("item price must be greater than 0")
	}
	if item.Cost < 0 {
		return fmt.Errorf("item cost must not be negative")
	}
	if item.Popularity <= 0 {
		return fmt.Errorf("item popularity must be greater than 0")
	}
	return nil
}
