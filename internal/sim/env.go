package sim

import (
	"errors"
	"fmt"
	"time"

	"canteenopt/internal/dataset"
	"canteenopt/internal/estimator"
	"canteenopt/internal/features"
)

// ErrEpisodeDone reports a Step call on a finished episode. This is a
// programming error in the training loop, not a recoverable condition.
var ErrEpisodeDone = errors.New("step called on finished episode")

// DefaultActionLevels is the standard catalogue of candidate preparation
// quantities. Index 5 (level 100) is the midpoint the learned adjustment
// is centered on.
var DefaultActionLevels = []int{0, 20, 40, 60, 80, 100, 120, 150, 200, 250, 300}

// Spread selects how a scalar action level maps onto the per-item
// prepared quantity when the reward sums over the whole catalogue.
type Spread string

const (
	// SpreadDivide splits the level evenly across items (integer division)
	SpreadDivide Spread = "divide"
	// SpreadBroadcast prepares the full level for every item
	SpreadBroadcast Spread = "broadcast"
)

// Economics holds the unit reward model constants, in abstract currency
type Economics struct {
	RevenuePerUnit      float64 `yaml:"revenue_per_unit" json:"revenue_per_unit"`
	CostPerUnit         float64 `yaml:"cost_per_unit" json:"cost_per_unit"`
	WastePenaltyPerUnit float64 `yaml:"waste_penalty_per_unit" json:"waste_penalty_per_unit"`
	UnderPenaltyPerUnit float64 `yaml:"under_penalty_per_unit" json:"under_penalty_per_unit"`
}

// DefaultEconomics returns the standard unit economics
func DefaultEconomics() Economics {
	return Economics{
		RevenuePerUnit:      35,
		CostPerUnit:         15,
		WastePenaltyPerUnit: 8,
		UnderPenaltyPerUnit: 20,
	}
}

// Config tunes an environment. Zero values fall back to the defaults.
type Config struct {
	ActionLevels []int
	Economics    Economics
	Spread       Spread
}

// Env is the Markov-like decision process the policy trains against. One
// episode walks the ordered, deduplicated calendar dates of the sales
// series; the state at each step is the reduced feature vector for that
// date, the reward is the day's profit-and-penalty total over the whole
// catalogue for the chosen preparation level.
type Env struct {
	store   *dataset.Store
	builder *features.Builder
	est     estimator.Estimator

	dates  []time.Time
	levels []int
	econ   Economics
	spread Spread

	cursor int
	done   bool
}

// NewEnv creates an environment over a dataset store. The estimator is
// the same artifact the inference path uses; its predictions are part of
// the state representation, so training and serving stay aligned.
func NewEnv(store *dataset.Store, est estimator.Estimator, cfg Config) (*Env, error) {
	dates := store.OrderedDates()
	if len(dates) == 0 {
		return nil, fmt.Errorf("sales series is empty, no episode dates")
	}
	levels := cfg.ActionLevels
	if len(levels) == 0 {
		levels = DefaultActionLevels
	}
	econ := cfg.Economics
	if econ == (Economics{}) {
		econ = DefaultEconomics()
	}
	spread := cfg.Spread
	if spread == "" {
		spread = SpreadDivide
	}
	return &Env{
		store:   store,
		builder: features.NewBuilder(store),
		est:     est,
		dates:   dates,
		levels:  levels,
		econ:    econ,
		spread:  spread,
		done:    true,
	}, nil
}

// ActionLevels returns the action catalogue. Callers must not mutate it.
func (e *Env) ActionLevels() []int {
	return e.levels
}

// ActionCount returns the size of the action space
func (e *Env) ActionCount() int {
	return len(e.levels)
}

// MaxSteps returns the episode length in days
func (e *Env) MaxSteps() int {
	return len(e.dates)
}

// Reset rewinds the episode to the first date and returns its state
func (e *Env) Reset() ([]float64, error) {
	e.cursor = 0
	e.done = false
	return e.state(e.dates[0])
}

// Step applies one action, returns the next state, the day's reward and
// whether the episode finished. The next state is nil exactly when done
// is true. Stepping a finished episode returns ErrEpisodeDone.
func (e *Env) Step(actionIndex int) ([]float64, float64, bool, error) {
	if e.done {
		return nil, 0, true, ErrEpisodeDone
	}
	if actionIndex < 0 || actionIndex >= len(e.levels) {
		return nil, 0, false, fmt.Errorf("action index %d out of range [0,%d)", actionIndex, len(e.levels))
	}

	reward := e.reward(e.dates[e.cursor], e.levels[actionIndex])

	e.cursor++
	if e.cursor >= len(e.dates) {
		e.done = true
		return nil, reward, true, nil
	}
	next, err := e.state(e.dates[e.cursor])
	if err != nil {
		return nil, 0, false, err
	}
	return next, reward, false, nil
}

// reward sums the day's outcome over every catalogue item
func (e *Env) reward(date time.Time, level int) float64 {
	items := e.store.Items()
	prepared := float64(level)
	if e.spread == SpreadDivide && len(items) > 0 {
		prepared = float64(level / len(items))
	}

	var total float64
	for _, item := range items {
		demand := e.store.SoldOn(date, item.ID)

		sold := prepared
		if demand < sold {
			sold = demand
		}
		waste := prepared - demand
		if waste < 0 {
			waste = 0
		}
		unmet := demand - prepared
		if unmet < 0 {
			unmet = 0
		}

		total += sold*e.econ.RevenuePerUnit -
			prepared*e.econ.CostPerUnit -
			waste*e.econ.WastePenaltyPerUnit -
			unmet*e.econ.UnderPenaltyPerUnit
	}
	return total
}

// state builds the reduced training state for a date: the catalogue-mean
// demand estimate plus the shared temporal/context features.
func (e *Env) state(date time.Time) ([]float64, error) {
	items := e.store.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("empty item catalogue")
	}

	var sum float64
	var full []float64
	for _, item := range items {
		vec, err := e.builder.Build(date, item.ID, features.Overrides{})
		if err != nil {
			return nil, fmt.Errorf("building features for %s: %w", item.ID, err)
		}
		est, err := e.est.Predict(vec)
		if err != nil {
			return nil, fmt.Errorf("estimating demand for %s: %w", item.ID, err)
		}
		sum += est
		full = vec
	}

	return features.Reduced(sum/float64(len(items)), full), nil
}
