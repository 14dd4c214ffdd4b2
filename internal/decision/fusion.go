package decision

import (
	"fmt"
	"math"
	"time"

	"canteenopt/internal/bundle"
	"canteenopt/internal/dataset"
	"canteenopt/internal/estimator"
	"canteenopt/internal/features"
	"canteenopt/internal/models"
	"canteenopt/internal/quantize"
)

// Request is one decision query: a (date, item) pair plus optional
// real-time overrides. Nil pointers mean "not observed".
type Request struct {
	Date         time.Time
	ItemID       string
	CurrentStock *int
	Rainfall     *float64
	StudentCount *int
	EventToday   *int
}

// Fusion orchestrates the full decision pipeline: feature vector,
// demand estimate, learned policy adjustment, rule overrides, in that
// fixed order. It holds only read-only artifacts and is safe for
// concurrent callers.
type Fusion struct {
	store   *dataset.Store
	builder *features.Builder
	est     estimator.Estimator

	quant  *quantize.Quantizer
	qtable map[string][]float64
	levels []int

	rules   []Rule
	version string
}

// New assembles a fusion stage from a dataset store and a loaded model
// bundle. The quantizer is rebuilt from the bundle's range table so the
// inference keys match the training keys exactly.
func New(store *dataset.Store, bnd *bundle.Bundle) (*Fusion, error) {
	est, err := estimator.NewLinear(bnd.Estimator.Weights, bnd.Estimator.Intercept, bnd.Estimator.Scaler)
	if err != nil {
		return nil, fmt.Errorf("rebuilding estimator: %w", err)
	}
	return &Fusion{
		store:   store,
		builder: features.NewBuilder(store),
		est:     est,
		quant:   bnd.Quantizer(),
		qtable:  bnd.Agent.QTable,
		levels:  bnd.ActionLevels,
		rules:   DefaultRules(),
		version: bnd.SchemaVersion,
	}, nil
}

// ModelVersion returns the schema version of the loaded artifacts
func (f *Fusion) ModelVersion() string {
	return f.version
}

// Decide produces the final recommended quantity for one request, with
// every intermediate value retained for audit.
func (f *Fusion) Decide(req Request) (models.DecisionRecord, error) {
	item, ok := f.store.Item(req.ItemID)
	if !ok {
		return models.DecisionRecord{}, &features.UnknownItemError{ItemID: req.ItemID}
	}

	var sc *float64
	if req.StudentCount != nil {
		v := float64(*req.StudentCount)
		sc = &v
	}
	vec, err := f.builder.Build(req.Date, req.ItemID, features.Overrides{
		Rainfall:     req.Rainfall,
		StudentCount: sc,
		EventToday:   req.EventToday,
	})
	if err != nil {
		return models.DecisionRecord{}, err
	}

	estimate, err := f.est.Predict(vec)
	if err != nil {
		return models.DecisionRecord{}, fmt.Errorf("demand estimate: %w", err)
	}

	adjustment := f.adjustment(estimate, vec)
	combined := estimate + adjustment

	ctx := RuleContext{
		Item:         item,
		Date:         dataset.Midnight(req.Date),
		IsWeekend:    vec[features.ColIsWeekend] > 0,
		IsExamPeriod: vec[features.ColIsExamPeriod] > 0,
		EventToday:   vec[features.ColEventToday] > 0,
		Rainfall:     vec[features.ColRainfall],
		CurrentStock: req.CurrentStock,
	}
	final, fired := ApplyRules(combined, ctx, f.rules)

	qty := int(math.Round(final))
	if qty < 0 {
		qty = 0
	}

	return models.DecisionRecord{
		Date:              dataset.Midnight(req.Date),
		ItemID:            req.ItemID,
		RawEstimate:       estimate,
		PolicyAdjustment:  adjustment,
		CombinedQuantity:  combined,
		RulesFired:        fired,
		PredictedQuantity: qty,
		ModelVersion:      f.version,
	}, nil
}

// adjustment looks up the learned correction for the reduced state. The
// greedy action's level is centered on the catalogue midpoint, so the
// policy expresses "prepare more/less than baseline" rather than an
// absolute quantity. Unseen states contribute exactly zero: the policy
// degrades gracefully to the raw estimate, never a synthesized value.
func (f *Fusion) adjustment(estimate float64, vec []float64) float64 {
	key := f.quant.Quantize(features.Reduced(estimate, vec))
	row, ok := f.qtable[string(key)]
	if !ok {
		return 0
	}
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	mid := len(f.levels) / 2
	return float64(f.levels[best] - f.levels[mid])
}
