package agent

import (
	"math/rand"
	"time"

	"canteenopt/internal/quantize"
)

// DecayMode selects how epsilon shrinks after each episode
type DecayMode string

const (
	// DecayMultiplicative multiplies epsilon by the decay factor
	DecayMultiplicative DecayMode = "multiplicative"
	// DecayAdditive subtracts the decay amount from epsilon
	DecayAdditive DecayMode = "additive"
)

// Config holds the agent's hyperparameters. They are configuration
// constants, not learned quantities.
type Config struct {
	LearningRate   float64   `yaml:"learning_rate" json:"learning_rate"`
	DiscountFactor float64   `yaml:"discount_factor" json:"discount_factor"`
	Epsilon        float64   `yaml:"epsilon" json:"epsilon"`
	EpsilonDecay   float64   `yaml:"epsilon_decay" json:"epsilon_decay"`
	MinEpsilon     float64   `yaml:"min_epsilon" json:"min_epsilon"`
	DecayMode      DecayMode `yaml:"decay_mode" json:"decay_mode"`
}

// DefaultConfig returns the standard hyperparameters
func DefaultConfig() Config {
	return Config{
		LearningRate:   0.1,
		DiscountFactor: 0.99,
		Epsilon:        1.0,
		EpsilonDecay:   0.995,
		MinEpsilon:     0.01,
		DecayMode:      DecayMultiplicative,
	}
}

// Agent learns a tabular policy over quantized states with epsilon-greedy
// exploration and the TD(0) Q-learning update. The quantizer it carries
// must be configured identically to the one used at inference time.
type Agent struct {
	table *QTable
	quant *quantize.Quantizer
	cfg   Config
	rng   *rand.Rand

	epsilon float64
}

// New creates an agent over a quantizer and action-space size
func New(quant *quantize.Quantizer, actionSize int, cfg Config) *Agent {
	return &Agent{
		table:   NewQTable(actionSize),
		quant:   quant,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		epsilon: cfg.Epsilon,
	}
}

// Seed fixes the exploration source, for reproducible training runs
func (a *Agent) Seed(seed int64) {
	a.rng = rand.New(rand.NewSource(seed))
}

// Table exposes the learned Q-table
func (a *Agent) Table() *QTable {
	return a.table
}

// Epsilon returns the current exploration rate
func (a *Agent) Epsilon() float64 {
	return a.epsilon
}

// Quantize maps a state vector to its table key
func (a *Agent) Quantize(state []float64) quantize.Key {
	return a.quant.Quantize(state)
}

// ChooseAction picks an action for a state: uniform over all actions with
// probability epsilon, otherwise the greedy argmax (lowest index wins
// ties).
func (a *Agent) ChooseAction(state []float64) int {
	if a.rng.Float64() < a.epsilon {
		return a.rng.Intn(a.table.ActionSize())
	}
	return a.table.Argmax(a.quant.Quantize(state))
}

// Learn applies the Q-learning update for one transition:
// Q(s,a) += alpha * (r + gamma*max_a' Q(s',a') - Q(s,a)).
// The bootstrap term is zero when the episode terminated.
func (a *Agent) Learn(state []float64, action int, reward float64, next []float64, done bool) {
	key := a.quant.Quantize(state)

	target := reward
	if !done && next != nil {
		target += a.cfg.DiscountFactor * a.table.Max(a.quant.Quantize(next))
	}

	current := a.table.Get(key, action)
	a.table.Update(key, action, current+a.cfg.LearningRate*(target-current))
}

// DecayEpsilon shrinks the exploration rate once per completed episode,
// floored at the configured minimum so the policy never stops exploring.
func (a *Agent) DecayEpsilon() {
	switch a.cfg.DecayMode {
	case DecayAdditive:
		a.epsilon -= a.cfg.EpsilonDecay
	default:
		a.epsilon *= a.cfg.EpsilonDecay
	}
	if a.epsilon < a.cfg.MinEpsilon {
		a.epsilon = a.cfg.MinEpsilon
	}
}

// Snapshot captures the learned artifact for persistence
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{
		QTable:     a.table.Snapshot(),
		ActionSize: a.table.ActionSize(),
		StateSize:  a.quant.Dimensions(),
		Epsilon:    a.epsilon,
	}
}

// Restore replaces the agent's learned state from a snapshot
func (a *Agent) Restore(s Snapshot) {
	a.table = NewQTable(s.ActionSize)
	a.table.Restore(s.QTable)
	if s.Epsilon > 0 {
		a.epsilon = s.Epsilon
	}
}

// Snapshot is the persisted form of an agent: the whole learned artifact
// plus the scalar metadata needed to validate it on load.
type Snapshot struct {
	QTable     map[string][]float64 `json:"q_table"`
	ActionSize int                  `json:"action_size"`
	StateSize  int                  `json:"state_size"`
	Epsilon    float64              `json:"epsilon"`
}
