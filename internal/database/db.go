package database

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"canteenopt/internal/models"
)

// AuditDB persists every decision record so operators can review what
// the pipeline recommended and why. It is an explicit handle passed to
// the server, not a package global.
type AuditDB struct {
	db *gorm.DB
}

// Open connects to the SQLite audit database and migrates its schema
func Open(path string) (*AuditDB, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening audit db %s: %w", path, err)
	}
	if err := db.AutoMigrate(&models.DecisionLog{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating audit db: %w", err)
	}
	return &AuditDB{db: db}, nil
}

// Close closes the underlying connection
func (a *AuditDB) Close() error {
	return a.db.Close()
}

// SaveDecision appends one decision record to the audit log
func (a *AuditDB) SaveDecision(rec models.DecisionRecord) error {
	row := models.DecisionLog{
		Date:              rec.Date,
		ItemID:            rec.ItemID,
		RawEstimate:       rec.RawEstimate,
		PolicyAdjustment:  rec.PolicyAdjustment,
		CombinedQuantity:  rec.CombinedQuantity,
		RulesFired:        strings.Join(rec.RulesFired, ","),
		PredictedQuantity: rec.PredictedQuantity,
		ModelVersion:      rec.ModelVersion,
	}
	if err := a.db.Create(&row).Error; err != nil {
		return fmt.Errorf("saving decision: %w", err)
	}
	return nil
}

// RecentDecisions returns the latest entries, newest first
func (a *AuditDB) RecentDecisions(limit int) ([]models.DecisionLog, error) {
	var rows []models.DecisionLog
	if err := a.db.Order("created_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	return rows, nil
}
