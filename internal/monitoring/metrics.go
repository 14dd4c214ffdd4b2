package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records the service's operational metrics:
// decision pipeline latency and outcomes on the serving side, episode
// rewards and table growth on the training side.
type Collector struct {
	registry *prometheus.Registry

	decisionLatency   *prometheus.HistogramVec
	predictedQuantity *prometheus.GaugeVec
	ruleFires         *prometheus.CounterVec
	decisionErrors    *prometheus.CounterVec

	episodeReward prometheus.Gauge
	epsilon       prometheus.Gauge
	qtableSize    prometheus.Gauge
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		decisionLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "decision_latency_seconds",
				Help:    "Time taken to produce one quantity recommendation",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"item"},
		),
		predictedQuantity: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "predicted_quantity_units",
				Help: "Most recent recommended quantity per item",
			},
			[]string{"item"},
		),
		ruleFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rule_fires_total",
				Help: "Rule override activations by rule name",
			},
			[]string{"rule"},
		),
		decisionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "decision_errors_total",
				Help: "Failed decision requests by error kind",
			},
			[]string{"kind"},
		),
		episodeReward: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "training_episode_reward",
			Help: "Total reward of the most recent training episode",
		}),
		epsilon: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "training_epsilon",
			Help: "Current exploration rate",
		}),
		qtableSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qtable_states",
			Help: "Number of distinct quantized states in the Q-table",
		}),
	}

	c.registry.MustRegister(
		c.decisionLatency,
		c.predictedQuantity,
		c.ruleFires,
		c.decisionErrors,
		c.episodeReward,
		c.epsilon,
		c.qtableSize,
	)
	return c
}

// Registry exposes the collector's registry for the metrics endpoint
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordDecision records one successful decision
func (c *Collector) RecordDecision(item string, quantity int, rulesFired []string, elapsed time.Duration) {
	c.decisionLatency.WithLabelValues(item).Observe(elapsed.Seconds())
	c.predictedQuantity.WithLabelValues(item).Set(float64(quantity))
	for _, rule := range rulesFired {
		c.ruleFires.WithLabelValues(rule).Inc()
	}
}

// RecordDecisionError counts a failed decision by error kind
func (c *Collector) RecordDecisionError(kind string) {
	c.decisionErrors.WithLabelValues(kind).Inc()
}

// RecordEpisode records training progress after one episode
func (c *Collector) RecordEpisode(reward, epsilon float64, qtableStates int) {
	c.episodeReward.Set(reward)
	c.epsilon.Set(epsilon)
	c.qtableSize.Set(float64(qtableStates))
}
