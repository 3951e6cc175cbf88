package telemetry

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradscout/gradscout/config"
)

// Telemetry provides monitoring and cost tracking for the assistant.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger

	registry *prometheus.Registry

	queriesTotal   *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	retrievalTotal *prometheus.CounterVec
	llmTokens      *prometheus.CounterVec

	costTracker *CostTracker
}

// CostTracker accumulates LLM spend across models and operations.
type CostTracker struct {
	mu sync.RWMutex

	ModelCosts     map[string]float64
	OperationCosts map[string]float64

	TotalCost   float64
	TotalTokens int64
}

// CostSummary is a read-only snapshot of the cost tracker.
type CostSummary struct {
	TotalCost      float64            `json:"total_cost"`
	TotalTokens    int64              `json:"total_tokens"`
	ModelCosts     map[string]float64 `json:"model_costs"`
	OperationCosts map[string]float64 `json:"operation_costs"`
}

// New creates a telemetry instance with its own Prometheus registry.
func New(cfg config.TelemetryConfig) *Telemetry {
	registry := prometheus.NewRegistry()

	t := &Telemetry{
		config:   cfg,
		logger:   log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		registry: registry,
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradscout_queries_total",
			Help: "Queries processed, by intent and outcome.",
		}, []string{"intent", "outcome"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gradscout_query_duration_seconds",
			Help:    "End-to-end query processing time.",
			Buckets: prometheus.DefBuckets,
		}),
		retrievalTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradscout_retrievals_total",
			Help: "Retriever invocations, by source and outcome.",
		}, []string{"source", "outcome"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gradscout_llm_tokens_total",
			Help: "LLM tokens consumed, by model and direction.",
		}, []string{"model", "direction"}),
		costTracker: &CostTracker{
			ModelCosts:     make(map[string]float64),
			OperationCosts: make(map[string]float64),
		},
	}

	registry.MustRegister(t.queriesTotal, t.queryDuration, t.retrievalTotal, t.llmTokens)
	return t
}

// Handler exposes the metrics registry for the HTTP server.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// RecordQuery records one processed query.
func (t *Telemetry) RecordQuery(intent string, success bool, duration time.Duration) {
	if !t.config.Enabled {
		return
	}
	t.queriesTotal.WithLabelValues(intent, outcome(success)).Inc()
	t.queryDuration.Observe(duration.Seconds())
}

// RecordRetrieval records one retriever invocation.
func (t *Telemetry) RecordRetrieval(source string, success bool) {
	if !t.config.Enabled {
		return
	}
	t.retrievalTotal.WithLabelValues(source, outcome(success)).Inc()
}

// RecordLLMUsage records token usage and spend for one LLM call.
func (t *Telemetry) RecordLLMUsage(operation, model string, inputTokens, outputTokens int64, cost float64) {
	if !t.config.Enabled {
		return
	}
	t.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	t.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))

	if !t.config.CostTracking {
		return
	}
	t.costTracker.mu.Lock()
	defer t.costTracker.mu.Unlock()
	t.costTracker.TotalCost += cost
	t.costTracker.TotalTokens += inputTokens + outputTokens
	t.costTracker.ModelCosts[model] += cost
	t.costTracker.OperationCosts[operation] += cost
}

// CostSummary returns a snapshot of accumulated LLM spend.
func (t *Telemetry) CostSummary() CostSummary {
	t.costTracker.mu.RLock()
	defer t.costTracker.mu.RUnlock()

	summary := CostSummary{
		TotalCost:      t.costTracker.TotalCost,
		TotalTokens:    t.costTracker.TotalTokens,
		ModelCosts:     make(map[string]float64),
		OperationCosts: make(map[string]float64),
	}
	for k, v := range t.costTracker.ModelCosts {
		summary.ModelCosts[k] = v
	}
	for k, v := range t.costTracker.OperationCosts {
		summary.OperationCosts[k] = v
	}
	return summary
}

// Shutdown logs a final cost report.
func (t *Telemetry) Shutdown() {
	summary := t.CostSummary()
	t.logger.Printf("Final Report: TotalCost=$%.4f, TotalTokens=%d", summary.TotalCost, summary.TotalTokens)
	for model, cost := range summary.ModelCosts {
		t.logger.Printf("  Model %s: $%.4f", model, cost)
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
