package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"canteenopt/internal/models"
)

func item(id string) models.Item {
	for _, it := range models.DefaultCatalogue() {
		if it.ID == id {
			return it
		}
	}
	return models.Item{ID: id}
}

func intPtr(v int) *int { return &v }

func TestZeroStockHaltsChain(t *testing.T) {
	ctx := RuleContext{
		Item:         item("maggi"),
		Date:         time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		IsWeekend:    true,
		Rainfall:     50,
		CurrentStock: intPtr(0),
	}

	qty, fired := ApplyRules(120, ctx, DefaultRules())
	assert.Equal(t, 0.0, qty)
	// Halt: nothing after zero_stock runs, even the clamp
	assert.Equal(t, []string{"zero_stock"}, fired)
}

func TestNonZeroStockDoesNotHalt(t *testing.T) {
	ctx := RuleContext{
		Item:         item("veg_biryani"),
		Date:         time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
		CurrentStock: intPtr(5),
	}

	qty, fired := ApplyRules(100, ctx, DefaultRules())
	assert.Equal(t, 100.0, qty)
	assert.Equal(t, []string{"clamp"}, fired)
}

func TestRainComfortBoost(t *testing.T) {
	ctx := RuleContext{
		Item:     item("maggi"), // comfort food
		Date:     time.Date(2024, time.August, 7, 0, 0, 0, 0, time.UTC),
		Rainfall: 25,
	}

	qty, fired := ApplyRules(100, ctx, DefaultRules())
	assert.InDelta(t, 115.0, qty, 1e-9)
	assert.Contains(t, fired, "rain_comfort_boost")
}

func TestRainBoostRequiresComfortTrait(t *testing.T) {
	ctx := RuleContext{
		Item:     item("veg_biryani"),
		Date:     time.Date(2024, time.August, 7, 0, 0, 0, 0, time.UTC),
		Rainfall: 25,
	}

	qty, fired := ApplyRules(100, ctx, DefaultRules())
	assert.InDelta(t, 100.0, qty, 1e-9)
	assert.NotContains(t, fired, "rain_comfort_boost")
}

func TestRainBoostThresholdIsExclusive(t *testing.T) {
	ctx := RuleContext{
		Item:     item("maggi"),
		Date:     time.Date(2024, time.August, 7, 0, 0, 0, 0, time.UTC),
		Rainfall: HeavyRainfallMM,
	}

	qty, _ := ApplyRules(100, ctx, DefaultRules())
	assert.InDelta(t, 100.0, qty, 1e-9)
}

func TestWeekendSplitsByTrait(t *testing.T) {
	base := RuleContext{
		Date:      time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
		IsWeekend: true,
	}

	favorite := base
	favorite.Item = item("ice_cream")
	qty, _ := ApplyRules(100, favorite, DefaultRules())
	assert.InDelta(t, 110.0, qty, 1e-9)

	regular := base
	regular.Item = item("veg_biryani")
	qty, _ = ApplyRules(100, regular, DefaultRules())
	assert.InDelta(t, 70.0, qty, 1e-9)
}

func TestExamPeriodSplitsByTrait(t *testing.T) {
	base := RuleContext{
		Date:         time.Date(2024, time.May, 8, 0, 0, 0, 0, time.UTC),
		IsExamPeriod: true,
	}

	snack := base
	snack.Item = item("tea_biscuit")
	qty, _ := ApplyRules(100, snack, DefaultRules())
	assert.InDelta(t, 130.0, qty, 1e-9)

	meal := base
	meal.Item = item("fish_curry_rice")
	qty, _ = ApplyRules(100, meal, DefaultRules())
	assert.InDelta(t, 90.0, qty, 1e-9)
}

func TestEventDayBoost(t *testing.T) {
	ctx := RuleContext{
		Item:       item("chicken_roll"),
		Date:       time.Date(2024, time.October, 14, 0, 0, 0, 0, time.UTC),
		EventToday: true,
	}

	qty, fired := ApplyRules(100, ctx, DefaultRules())
	assert.InDelta(t, 140.0, qty, 1e-9)
	assert.Contains(t, fired, "event_day")
}

func TestVacationSlump(t *testing.T) {
	for _, month := range []time.Month{time.June, time.July} {
		ctx := RuleContext{
			Item: item("veg_biryani"),
			Date: time.Date(2024, month, 10, 0, 0, 0, 0, time.UTC),
		}
		qty, fired := ApplyRules(100, ctx, DefaultRules())
		assert.InDelta(t, 40.0, qty, 1e-9)
		assert.Contains(t, fired, "vacation_slump")
	}

	ctx := RuleContext{
		Item: item("veg_biryani"),
		Date: time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC),
	}
	_, fired := ApplyRules(100, ctx, DefaultRules())
	assert.NotContains(t, fired, "vacation_slump")
}

func TestClampBounds(t *testing.T) {
	ctx := RuleContext{
		Item: item("maggi"),
		Date: time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC),
	}

	qty, _ := ApplyRules(9999, ctx, DefaultRules())
	assert.Equal(t, MaxQuantity, qty)

	qty, _ = ApplyRules(-50, ctx, DefaultRules())
	assert.Equal(t, 0.0, qty)
}

func TestChainOrderCompounds(t *testing.T) {
	// Rainy exam-period weekend for a comfort+study item:
	// 100 * 1.15 (rain) * 1.1? maggi is not a weekend favorite -> *0.7,
	// then *1.3 (study snack) = 104.65
	ctx := RuleContext{
		Item:         item("maggi"),
		Date:         time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
		IsWeekend:    true,
		IsExamPeriod: true,
		Rainfall:     30,
	}

	qty, fired := ApplyRules(100, ctx, DefaultRules())
	assert.InDelta(t, 100*1.15*0.7*1.3, qty, 1e-9)
	assert.Equal(t, []string{"rain_comfort_boost", "weekend", "exam_period", "clamp"}, fired)
}
