package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the backend.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	// TransactionsWritten counts ledger rows created through any path
	// (direct entry, transfers, billing, adjustments).
	TransactionsWritten prometheus.Counter
	// SweepCyclesBilled counts billing cycles settled by the auto-pay sweep.
	SweepCyclesBilled prometheus.Counter
	// SweepsSkipped counts sweep invocations that piggybacked on an
	// in-flight sweep for the same user instead of running.
	SweepsSkipped prometheus.Counter
	// SweepCapHits counts subscriptions that hit the per-pass iteration cap.
	SweepCapHits prometheus.Counter
	// WebhookFailures counts failed billing notification deliveries.
	WebhookFailures prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		TransactionsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendlog_transactions_written_total",
			Help: "Total transaction rows written.",
		}),
		SweepCyclesBilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendlog_sweep_cycles_billed_total",
			Help: "Total billing cycles settled by the auto-pay sweep.",
		}),
		SweepsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendlog_sweeps_skipped_total",
			Help: "Total sweep invocations that shared an in-flight sweep's result.",
		}),
		SweepCapHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendlog_sweep_cap_hits_total",
			Help: "Total subscriptions that hit the per-pass billing iteration cap.",
		}),
		WebhookFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendlog_webhook_failures_total",
			Help: "Total failed billing notification deliveries.",
		}),
	}
}
