// Package observability exposes the engine's Prometheus metrics. The core
// engine never touches these; the CLI and API boundaries record outcomes as
// they surface.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecordsProcessed counts every record that reached the engine, by kind.
var RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "engine",
	Name:      "records_total",
	Help:      "Total transaction records processed, by kind.",
}, []string{"kind"})

// RecordsRejected counts rejected records by reason code.
var RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "engine",
	Name:      "rejections_total",
	Help:      "Total rejected records, by reason code.",
}, []string{"reason"})

// AccountsOpen tracks the number of accounts created so far.
var AccountsOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "tally",
	Subsystem: "engine",
	Name:      "accounts",
	Help:      "Number of client accounts created in the current run.",
})

// AccountsLocked counts chargeback freezes.
var AccountsLocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "engine",
	Name:      "accounts_locked_total",
	Help:      "Total accounts locked by a chargeback.",
})

// ObserveOutcome records one processed record. kind must be a known record
// kind; reason is empty for applied records.
func ObserveOutcome(kind string, applied bool, reason string) {
	RecordsProcessed.WithLabelValues(kind).Inc()
	if !applied {
		RecordsRejected.WithLabelValues(reason).Inc()
	}
}
