package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"canteenopt/internal/advisor"
	"canteenopt/internal/bundle"
	"canteenopt/internal/database"
	"canteenopt/internal/dataset"
	"canteenopt/internal/decision"
	"canteenopt/internal/estimator"
	"canteenopt/internal/features"
	"canteenopt/internal/monitoring"
)

// Server is the HTTP surface over the decision pipeline. All mutable
// side effects (audit log, metrics, stream) sit behind the handler; the
// pipeline itself is read-only and safe for concurrent requests.
type Server struct {
	Router *gin.Engine

	store   *dataset.Store
	fusion  *decision.Fusion
	bnd     *bundle.Bundle
	audit   *database.AuditDB
	metrics *monitoring.Collector
	advisor *advisor.Advisor
	hub     *Hub
}

// Options wires the optional collaborators
type Options struct {
	Audit      *database.AuditDB
	Metrics    *monitoring.Collector
	Advisor    *advisor.Advisor
	AuthSecret string
}

// NewServer assembles the router and its handlers
func NewServer(store *dataset.Store, fusion *decision.Fusion, bnd *bundle.Bundle, opts Options) *Server {
	s := &Server{
		Router:  gin.Default(),
		store:   store,
		fusion:  fusion,
		bnd:     bnd,
		audit:   opts.Audit,
		metrics: opts.Metrics,
		advisor: opts.Advisor,
		hub:     NewHub(),
	}
	s.setupRoutes(opts.AuthSecret)
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes(authSecret string) {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "model_version": s.fusion.ModelVersion()})
	})

	v1 := s.Router.Group("/api/v1")
	if authSecret != "" {
		v1.Use(AuthMiddleware(authSecret))
	}
	{
		v1.POST("/predict", s.Predict)
		v1.GET("/menu-items", s.MenuItems)
		v1.GET("/model-info", s.ModelInfo)
		v1.GET("/decisions", s.RecentDecisions)
		v1.GET("/decisions/stream", s.handleStream)
		v1.POST("/explain", s.Explain)
	}
}

// PredictionRequest is the request surface for one decision
type PredictionRequest struct {
	Date         string   `json:"date" binding:"required"`
	ItemID       string   `json:"item_id" binding:"required"`
	CurrentStock *int     `json:"current_stock"`
	Rainfall     *float64 `json:"rainfall_today"`
	StudentCount *int     `json:"student_count"`
	EventToday   *int     `json:"event_today"`
}

// PredictionResponse carries the final quantity plus the audit trail
type PredictionResponse struct {
	ItemID            string   `json:"item_id"`
	PredictedQuantity int      `json:"predicted_quantity"`
	RawEstimate       float64  `json:"raw_estimate"`
	PolicyAdjustment  float64  `json:"policy_adjustment"`
	RulesFired        []string `json:"rules_fired"`
	ModelVersion      string   `json:"model_version"`
}

// Predict runs the decision pipeline for one (date, item) pair
func (s *Server) Predict(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	start := time.Now()
	rec, err := s.fusion.Decide(decision.Request{
		Date:         date,
		ItemID:       req.ItemID,
		CurrentStock: req.CurrentStock,
		Rainfall:     req.Rainfall,
		StudentCount: req.StudentCount,
		EventToday:   req.EventToday,
	})
	if err != nil {
		status, kind := classifyError(err)
		if s.metrics != nil {
			s.metrics.RecordDecisionError(kind)
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(rec.ItemID, rec.PredictedQuantity, rec.RulesFired, time.Since(start))
	}
	if s.audit != nil {
		if err := s.audit.SaveDecision(rec); err != nil {
			log.Printf("Failed to persist decision: %v", err)
		}
	}
	s.hub.Broadcast(rec)

	c.JSON(http.StatusOK, PredictionResponse{
		ItemID:            rec.ItemID,
		PredictedQuantity: rec.PredictedQuantity,
		RawEstimate:       rec.RawEstimate,
		PolicyAdjustment:  rec.PolicyAdjustment,
		RulesFired:        rec.RulesFired,
		ModelVersion:      rec.ModelVersion,
	})
}

// MenuItems returns the loaded catalogue
func (s *Server) MenuItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"menu_items": s.store.Items()})
}

// ModelInfo reports the loaded artifact's metadata
func (s *Server) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schema_version": s.bnd.SchemaVersion,
		"features":       len(s.bnd.FeatureColumns),
		"action_levels":  s.bnd.ActionLevels,
		"qtable_states":  len(s.bnd.Agent.QTable),
		"final_epsilon":  s.bnd.Agent.Epsilon,
		"episodes":       s.bnd.Episodes,
		"trained_at":     s.bnd.TrainedAt,
	})
}

// RecentDecisions returns the latest audit log entries
func (s *Server) RecentDecisions(c *gin.Context) {
	if s.audit == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit log not configured"})
		return
	}
	rows, err := s.audit.RecentDecisions(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": rows})
}

// ExplainRequest asks for a plain-language summary of a decision
type ExplainRequest struct {
	PredictionRequest
}

// Explain runs the pipeline and narrates the outcome via the advisor
func (s *Server) Explain(c *gin.Context) {
	if s.advisor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "advisor not configured"})
		return
	}

	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	rec, err := s.fusion.Decide(decision.Request{
		Date:         date,
		ItemID:       req.ItemID,
		CurrentStock: req.CurrentStock,
		Rainfall:     req.Rainfall,
		StudentCount: req.StudentCount,
		EventToday:   req.EventToday,
	})
	if err != nil {
		status, _ := classifyError(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	explanation, err := s.advisor.Explain(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":            rec.ItemID,
		"predicted_quantity": rec.PredictedQuantity,
		"explanation":        explanation,
	})
}

// classifyError maps pipeline failures onto HTTP status and metric kind
func classifyError(err error) (int, string) {
	var unknownItem *features.UnknownItemError
	if errors.As(err, &unknownItem) {
		return http.StatusBadRequest, "unknown_item"
	}
	var noCoverage *features.NoCoverageError
	if errors.As(err, &noCoverage) {
		return http.StatusBadRequest, "no_calendar_coverage"
	}
	var mismatch *estimator.SchemaMismatchError
	if errors.As(err, &mismatch) {
		return http.StatusInternalServerError, "schema_mismatch"
	}
	return http.StatusInternalServerError, "internal"
}
