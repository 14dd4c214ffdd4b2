package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"canteenopt/internal/agent"
	"canteenopt/internal/estimator"
	"canteenopt/internal/quantize"
)

// LoadError reports a missing or corrupt model artifact. Fatal at
// startup; the service must not run against a partial bundle.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading model bundle %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Bundle is the single versioned artifact holding everything the
// decision pipeline learns offline: the feature column order, the fitted
// estimator with its scaler, the Q-table snapshot, the action catalogue
// and the quantizer range table. Keeping these in one file loaded
// atomically rules out the version skew that arises when the regressor
// and the policy table ship separately.
type Bundle struct {
	SchemaVersion  string           `json:"schema_version"`
	FeatureColumns []string         `json:"feature_columns"`
	Estimator      estimator.Linear `json:"estimator"`
	Agent          agent.Snapshot   `json:"agent"`
	ActionLevels   []int            `json:"action_levels"`
	ReducedRanges  []quantize.Range `json:"reduced_ranges"`

	Episodes       int       `json:"episodes"`
	EpisodeRewards []float64 `json:"episode_rewards,omitempty"`
	EpsilonHistory []float64 `json:"epsilon_history,omitempty"`
	TrainedAt      time.Time `json:"trained_at"`
}

// Validate runs the startup consistency check across the bundled
// artifacts. Any disagreement is version skew and fatal.
func (b *Bundle) Validate() error {
	if b.SchemaVersion == "" {
		return fmt.Errorf("missing schema version")
	}
	if len(b.FeatureColumns) == 0 {
		return fmt.Errorf("missing feature column order")
	}
	if len(b.Estimator.Weights) != len(b.FeatureColumns) {
		return &estimator.SchemaMismatchError{
			Want: len(b.FeatureColumns),
			Got:  len(b.Estimator.Weights),
		}
	}
	if len(b.Estimator.Scaler.Mean) != len(b.FeatureColumns) ||
		len(b.Estimator.Scaler.Scale) != len(b.FeatureColumns) {
		return &estimator.SchemaMismatchError{
			Want: len(b.FeatureColumns),
			Got:  len(b.Estimator.Scaler.Mean),
		}
	}
	if len(b.ActionLevels) == 0 {
		return fmt.Errorf("missing action levels")
	}
	if b.Agent.ActionSize != len(b.ActionLevels) {
		return fmt.Errorf("agent action size %d does not match %d action levels",
			b.Agent.ActionSize, len(b.ActionLevels))
	}
	if len(b.ReducedRanges) == 0 {
		return fmt.Errorf("missing quantizer range table")
	}
	if b.Agent.StateSize != len(b.ReducedRanges) {
		return fmt.Errorf("agent state size %d does not match %d quantizer ranges",
			b.Agent.StateSize, len(b.ReducedRanges))
	}
	for key, row := range b.Agent.QTable {
		if len(row) != b.Agent.ActionSize {
			return fmt.Errorf("q-table row %q has %d values, want %d", key, len(row), b.Agent.ActionSize)
		}
	}
	return nil
}

// Quantizer rebuilds the quantizer this bundle was trained with
func (b *Bundle) Quantizer() *quantize.Quantizer {
	return quantize.New(b.ReducedRanges)
}

// Save writes the bundle atomically (temp file then rename), so a crash
// mid-write never leaves a truncated artifact behind.
func Save(path string, b *Bundle) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent bundle: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating bundle directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bundle-*.json")
	if err != nil {
		return fmt.Errorf("creating temp bundle: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing bundle: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming bundle into place: %w", err)
	}
	return nil
}

// Load reads and validates a bundle. Every failure mode, missing file
// included, surfaces as a LoadError.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if err := b.Validate(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &b, nil
}
