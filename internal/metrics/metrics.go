package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthonybtedesco/happyswims-app-sub000/internal/domain"
)

const namespace = "happyswims"

var (
	once sync.Once

	windowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_windows_skipped_total",
			Help:      "Count of availability windows left out of free time because their data was unusable.",
		},
		[]string{"reason"},
	)

	freeTimeQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_time_queries_total",
			Help:      "Count of free time materializations.",
		},
	)

	slotChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_checks_total",
			Help:      "Count of slot checks by verdict.",
		},
		[]string{"verdict"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of booking attempts by status.",
		},
		[]string{"status"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "Duration of unary gRPC requests.",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "code"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(windowsSkipped, freeTimeQueries, slotChecks, bookingCreated, bookingCancelled, rpcDuration)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncWindowSkipped counts a skipped window under the kind of error that
// disqualified it.
func IncWindowSkipped(err error) {
	windowsSkipped.WithLabelValues(SkipReason(err)).Inc()
}

func SkipReason(err error) string {
	var parseErr *domain.ParseError
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, domain.ErrInvalidDateSpan):
		return "date_span"
	default:
		return "other"
	}
}

func IncFreeTimeQuery() {
	freeTimeQueries.Inc()
}

func IncSlotCheck(v domain.Verdict) {
	slotChecks.WithLabelValues(string(v)).Inc()
}

func IncBookingCreated(status string) {
	bookingCreated.WithLabelValues(status).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func ObserveRPC(method, code string, d time.Duration) {
	rpcDuration.WithLabelValues(method, code).Observe(d.Seconds())
}
