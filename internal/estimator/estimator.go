package estimator

import "fmt"

// Estimator is the external demand-forecast collaborator. It consumes a
// feature vector in the fixed, versioned column order and returns a point
// estimate of quantity sold. The fitting procedure is out of scope; this
// package only honors the artifact's input contract.
type Estimator interface {
	Predict(features []float64) (float64, error)
}

// SchemaMismatchError reports a vector whose length disagrees with the
// schema the estimator artifact was fitted against. Version skew between
// artifacts would otherwise silently produce wrong predictions, so the
// vector is never truncated or padded.
type SchemaMismatchError struct {
	Want int
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: estimator expects %d columns, got %d", e.Want, e.Got)
}

// Scaler holds per-column standardization parameters fitted offline
// together with the estimator weights.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes a vector in place into a new slice
func (s *Scaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) || len(v) != len(s.Scale) {
		return nil, &SchemaMismatchError{Want: len(s.Mean), Got: len(v)}
	}
	out := make([]float64, len(v))
	for i, x := range v {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}

// Linear is a regression artifact of the form intercept + w·scale(x).
// Weights, intercept and scaler are loaded from the model bundle and are
// immutable afterwards, so Predict is safe for concurrent callers.
type Linear struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Scaler    Scaler    `json:"scaler"`
}

// NewLinear builds a linear estimator and checks its internal consistency
func NewLinear(weights []float64, intercept float64, scaler Scaler) (*Linear, error) {
	if len(weights) != len(scaler.Mean) {
		return nil, fmt.Errorf("estimator weights length %d does not match scaler length %d",
			len(weights), len(scaler.Mean))
	}
	return &Linear{Weights: weights, Intercept: intercept, Scaler: scaler}, nil
}

// Predict returns the demand estimate for one feature vector
func (l *Linear) Predict(features []float64) (float64, error) {
	if len(features) != len(l.Weights) {
		return 0, &SchemaMismatchError{Want: len(l.Weights), Got: len(features)}
	}
	scaled, err := l.Scaler.Transform(features)
	if err != nil {
		return 0, err
	}
	sum := l.Intercept
	for i, x := range scaled {
		sum += l.Weights[i] * x
	}
	return sum, nil
}
