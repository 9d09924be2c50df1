// Package metrics exposes broker activity as Prometheus collectors, served
// at /metrics via promhttp.HandlerFor over the registry passed to Register.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// EnqueueTotal counts successful ENQUEUE operations per queue.
	EnqueueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litemq_enqueue_total",
		Help: "Total number of successful enqueue operations.",
	}, []string{"queue"})

	// DequeueTotal counts DEQUEUE operations that delivered a payload.
	DequeueTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litemq_dequeue_total",
		Help: "Total number of dequeue operations that delivered a payload.",
	}, []string{"queue"})

	// DequeueUnavailableTotal counts DEQUEUE operations that returned
	// Unavailable (cancellation, deadline, or upstream decode/I/O failure).
	DequeueUnavailableTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litemq_dequeue_unavailable_total",
		Help: "Total number of dequeue operations that closed without delivery.",
	}, []string{"queue"})

	// PurgeTotal counts PURGE operations per queue.
	PurgeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "litemq_purge_total",
		Help: "Total number of purge operations.",
	}, []string{"queue"})

	// QueueLength reports the last-observed stored-message count per queue.
	QueueLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "litemq_queue_length",
		Help: "Stored (not yet delivered or parked-for) message count, by queue.",
	}, []string{"queue"})

	// ParkedConsumers reports the number of currently parked DEQUEUE calls.
	ParkedConsumers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "litemq_parked_consumers",
		Help: "Number of DEQUEUE calls currently parked awaiting delivery.",
	})
)

// Register adds all LiteMQ collectors to reg. Call once at startup.
func Register(reg *prometheus.Registry) {
	reg.MustRegister(EnqueueTotal, DequeueTotal, DequeueUnavailableTotal, PurgeTotal, QueueLength, ParkedConsumers)
}
