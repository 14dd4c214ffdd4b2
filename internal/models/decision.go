package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// DecisionRecord is the pipeline output for one (date, item) request.
// Besides the final quantity it retains every intermediate value so an
// operator can audit why the recommendation came out the way it did.
type DecisionRecord struct {
	Date              time.Time `json:"date"`
	ItemID            string    `json:"item_id"`
	RawEstimate       float64   `json:"raw_estimate"`
	PolicyAdjustment  float64   `json:"policy_adjustment"`
	CombinedQuantity  float64   `json:"combined_quantity"`
	RulesFired        []string  `json:"rules_fired"`
	PredictedQuantity int       `json:"predicted_quantity"`
	ModelVersion      string    `json:"model_version"`
}

// DecisionLog is the persisted form of a decision record in the audit
// database. RulesFired is flattened to a comma-joined string so the row
// stays queryable from plain SQL.
type DecisionLog struct {
	gorm.Model
	Date              time.Time
	ItemID            string
	RawEstimate       float64
	PolicyAdjustment  float64
	CombinedQuantity  float64
	RulesFired        string
	PredictedQuantity int
	ModelVersion      string
}
