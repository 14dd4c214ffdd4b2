package decision

import (
	"time"

	"canteenopt/internal/models"
)

// Rule thresholds and bounds shared by the chain
const (
	// HeavyRainfallMM is the rainfall above which comfort food gets boosted
	HeavyRainfallMM = 20.0
	// MaxQuantity is the hard upper bound on any recommendation
	MaxQuantity = 500.0
)

// RuleContext carries the facts a rule predicate may consult. It is
// assembled once per decision from the feature vector and the request.
type RuleContext struct {
	Item         models.Item
	Date         time.Time
	IsWeekend    bool
	IsExamPeriod bool
	EventToday   bool
	Rainfall     float64
	CurrentStock *int
}

// Rule is one pure predicate/transform pair in the override chain. Rules
// never fail; they either apply or they don't. A halting rule stops the
// chain so nothing downstream can undo its decision.
type Rule struct {
	Name    string
	Applies func(RuleContext) bool
	Apply   func(quantity float64, ctx RuleContext) float64
	Halt    bool
}

// DefaultRules returns the override chain in its fixed precedence order.
// Order matters: zero stock halts everything, the clamp runs last.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "zero_stock",
			Applies: func(ctx RuleContext) bool {
				return ctx.CurrentStock != nil && *ctx.CurrentStock == 0
			},
			Apply: func(float64, RuleContext) float64 { return 0 },
			Halt:  true,
		},
		{
			Name: "rain_comfort_boost",
			Applies: func(ctx RuleContext) bool {
				return ctx.Rainfall > HeavyRainfallMM && ctx.Item.HasTrait(models.TraitComfortFood)
			},
			Apply: func(q float64, _ RuleContext) float64 { return q * 1.15 },
		},
		{
			Name: "weekend",
			Applies: func(ctx RuleContext) bool {
				return ctx.IsWeekend
			},
			Apply: func(q float64, ctx RuleContext) float64 {
				if ctx.Item.HasTrait(models.TraitWeekendFavorite) {
					return q * 1.1
				}
				return q * 0.7
			},
		},
		{
			Name: "exam_period",
			Applies: func(ctx RuleContext) bool {
				return ctx.IsExamPeriod
			},
			Apply: func(q float64, ctx RuleContext) float64 {
				if ctx.Item.HasTrait(models.TraitStudySnack) {
					return q * 1.3
				}
				return q * 0.9
			},
		},
		{
			Name: "event_day",
			Applies: func(ctx RuleContext) bool {
				return ctx.EventToday
			},
			Apply: func(q float64, _ RuleContext) float64 { return q * 1.4 },
		},
		{
			Name: "vacation_slump",
			Applies: func(ctx RuleContext) bool {
				m := ctx.Date.Month()
				return m == time.June || m == time.July
			},
			Apply: func(q float64, _ RuleContext) float64 { return q * 0.4 },
		},
		{
			Name: "clamp",
			Applies: func(RuleContext) bool { return true },
			Apply: func(q float64, _ RuleContext) float64 {
				if q < 0 {
					return 0
				}
				if q > MaxQuantity {
					return MaxQuantity
				}
				return q
			},
		},
	}
}

// ApplyRules runs the chain in order and reports which rules fired
func ApplyRules(quantity float64, ctx RuleContext, rules []Rule) (float64, []string) {
	var fired []string
	for _, rule := range rules {
		if !rule.Applies(ctx) {
			continue
		}
		quantity = rule.Apply(quantity, ctx)
		fired = append(fired, rule.Name)
		if rule.Halt {
			break
		}
	}
	return quantity, fired
}
