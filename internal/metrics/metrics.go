package metrics

import (
	"errors"
	"strconv"
	"sync"

	"familybooking/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "familybooking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Booking store operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	bookingsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bookings",
			Help:      "Bookings currently held by the store.",
		},
	)

	backupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Snapshot backups by outcome.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, storeOperations, bookingsStored, backupsTotal)
	})
}

// IncHTTP counts a served request.
func IncHTTP(endpoint string, code int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
}

// ObserveOperation counts a store operation under the result derived from err.
func ObserveOperation(operation string, err error) {
	storeOperations.WithLabelValues(operation, Result(err)).Inc()
}

// SetBookings records the current collection size.
func SetBookings(n int) {
	bookingsStored.Set(float64(n))
}

func ObserveBackup(err error) {
	backupsTotal.WithLabelValues(Result(err)).Inc()
}

// Result maps an error to a low-cardinality label.
func Result(err error) string {
	var pe *domain.PersistenceError
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidation(err):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.As(err, &pe):
		return "persistence_error"
	default:
		return "error"
	}
}
