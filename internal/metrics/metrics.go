// Package metrics holds the Prometheus collectors for analysis and aggregation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global     *Metrics
	globalOnce sync.Once
)

// Analysis outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnconfigured = "unconfigured"
	OutcomeProviderErr  = "provider_error"
	OutcomeParseErr     = "parse_error"
	OutcomeDisabled     = "disabled"
)

// Metrics holds Prometheus metrics for the chat logger.
type Metrics struct {
	AnalysisTotal     *prometheus.CounterVec
	RecordsSaved      *prometheus.CounterVec
	RecordsSkipped    prometheus.Counter
	AggregationsTotal *prometheus.CounterVec
}

// Get returns the process-wide metrics, registering them on first use.
//
// Metrics:
//   - chatlog_analysis_total{outcome}
//   - chatlog_records_saved_total{format}
//   - chatlog_records_skipped_total
//   - chatlog_aggregations_total{result}
func Get() *Metrics {
	globalOnce.Do(func() {
		global = &Metrics{
			AnalysisTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chatlog_analysis_total",
					Help: "Conversation analyses by outcome",
				},
				[]string{"outcome"},
			),
			RecordsSaved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chatlog_records_saved_total",
					Help: "Conversations written, by format",
				},
				[]string{"format"},
			),
			RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
				Name: "chatlog_records_skipped_total",
				Help: "Persisted records skipped during aggregation because they could not be decoded",
			}),
			AggregationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chatlog_aggregations_total",
					Help: "Dashboard aggregation passes by result",
				},
				[]string{"result"},
			),
		}
	})
	return global
}
