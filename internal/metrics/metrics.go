package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "bookings_rejected_total",
			Help:      "Booking attempts rejected, by reason.",
		},
		[]string{"reason"},
	)

	expAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "exp_awarded_total",
			Help:      "Experience points awarded to members.",
		},
	)

	levelUps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "level_ups_total",
			Help:      "Member level-ups applied.",
		},
	)

	sheetsSyncResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "meepleden",
			Name:      "sheets_sync_total",
			Help:      "Spreadsheet sync task outcomes.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingsRejected,
			expAwarded,
			levelUps,
			sheetsSyncResults,
		)
	})
}

// IncHTTP increments the counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingRejected records a rejected booking attempt; reason is one
// of "capacity", "date_disabled", "invalid_date", "invalid_party_size",
// "invalid_time_slot".
func IncBookingRejected(reason string) {
	bookingsRejected.WithLabelValues(reason).Inc()
}

func AddExpAwarded(amount int) {
	expAwarded.Add(float64(amount))
}

func AddLevelUps(count int) {
	levelUps.Add(float64(count))
}

// IncSheetsSync records a sync task outcome: "success", "retry", "failed".
func IncSheetsSync(result string) {
	sheetsSyncResults.WithLabelValues(result).Inc()
}
