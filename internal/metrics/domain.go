package metrics

import "github.com/prometheus/client_golang/prometheus"

// Domain counters
var (
	// LoginCounter counts login attempts
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopdesk_login_total",
			Help: "Total number of login attempts",
		},
	)

	// AuthErrorCounter counts authentication errors by type
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_request", "user_not_found", "invalid_password", ...
	)

	// StoreOpCounter counts single-document store operations
	StoreOpCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"collection", "operation"},
	)

	// StoreErrorCounter counts failed store operations
	StoreErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_store_errors_total",
			Help: "Total number of failed document store operations",
		},
		[]string{"collection", "operation"},
	)

	// BatchWriteCounter counts committed batch writes
	BatchWriteCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_batch_writes_total",
			Help: "Total number of committed batch writes",
		},
		[]string{"collection", "operation"},
	)

	// BatchWriteSizeHistogram records documents per batch write
	BatchWriteSizeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopdesk_batch_write_size",
			Help:    "Number of documents per committed batch write",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"collection"},
	)

	// ImportCounter counts committed CSV import rows
	ImportCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_import_rows_total",
			Help: "Total number of CSV import rows by outcome",
		},
		[]string{"outcome"}, // "imported", "invalid", "duplicate"
	)

	// ExportCounter counts exports by format
	ExportCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_exports_total",
			Help: "Total number of exports",
		},
		[]string{"collection", "format"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginCounter,
		AuthErrorCounter,
		StoreOpCounter,
		StoreErrorCounter,
		BatchWriteCounter,
		BatchWriteSizeHistogram,
		ImportCounter,
		ExportCounter,
	)
}

// RecordAuthError increments the auth error counter for the given type.
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordStoreOp counts one successful single-document operation.
func RecordStoreOp(collection, operation string) {
	StoreOpCounter.WithLabelValues(collection, operation).Inc()
}

// RecordStoreError counts one failed store operation.
func RecordStoreError(collection, operation string) {
	StoreErrorCounter.WithLabelValues(collection, operation).Inc()
}

// RecordBatchWrite counts one committed batch write of n documents.
func RecordBatchWrite(collection, operation string, n int) {
	BatchWriteCounter.WithLabelValues(collection, operation).Inc()
	BatchWriteSizeHistogram.WithLabelValues(collection).Observe(float64(n))
}

// RecordImport counts import rows by outcome.
func RecordImport(outcome string, n int) {
	ImportCounter.WithLabelValues(outcome).Add(float64(n))
}

// RecordExport counts one export.
func RecordExport(collection, format string) {
	ExportCounter.WithLabelValues(collection, format).Inc()
}
