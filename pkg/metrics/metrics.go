package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cryptohub"

var (
	BatchesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_rejected_total",
		Help:      "Ingestion batches rejected by validation.",
	})

	BatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_failed_total",
		Help:      "Ingestion batches rolled back by a storage failure.",
	})

	ReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Latency of batch reconciliation.",
		Buckets:   prometheus.DefBuckets,
	})

	// RecordsReconciled kind=key|certificate, outcome=created|updated
	RecordsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_reconciled_total",
		Help:      "Records written by the reconciler.",
	}, []string{"kind", "outcome"})

	// InventoryRisk last classification snapshot, flag=expired|expiring_soon|weak_algorithm|rotation_overdue
	InventoryRisk = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_risk_records",
		Help:      "Records carrying a risk flag in the last classification.",
	}, []string{"kind", "flag"})
)

// Handler echo handler serving the default registry
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
