package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics records the booking funnel: listings created, shipments
// booked, transactions confirmed, and the conflicts rejected along the
// way.
type BookingMetrics struct {
	spacesCreated    prometheus.Counter
	shipmentsCreated prometheus.Counter
	transactionsDone prometheus.Counter
	bookingConflicts *prometheus.CounterVec
	trackingAppended prometheus.Counter
	confirmDuration  prometheus.Histogram
}

// NewBookingMetrics registers the funnel metrics on the provided registerer.
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	if reg == nil {
		return &BookingMetrics{}
	}
	spacesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_spaces_created_total",
		Help: "Logistics space listings created.",
	})
	shipmentsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_shipments_created_total",
		Help: "Shipments booked against a space.",
	})
	transactionsDone := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_transactions_confirmed_total",
		Help: "Transactions confirmed end to end.",
	})
	bookingConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking attempts rejected by a conflict.",
	}, []string{"stage"})
	trackingAppended := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_events_appended_total",
		Help: "Tracking events appended to the ledger.",
	})
	confirmDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "booking_confirm_duration_seconds",
		Help:    "Duration of the transaction confirmation cascade.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(spacesCreated, shipmentsCreated, transactionsDone, bookingConflicts, trackingAppended, confirmDuration)
	return &BookingMetrics{
		spacesCreated:    spacesCreated,
		shipmentsCreated: shipmentsCreated,
		transactionsDone: transactionsDone,
		bookingConflicts: bookingConflicts,
		trackingAppended: trackingAppended,
		confirmDuration:  confirmDuration,
	}
}

// IncSpacesCreated counts a new listing.
func (m *BookingMetrics) IncSpacesCreated() {
	if m == nil || m.spacesCreated == nil {
		return
	}
	m.spacesCreated.Inc()
}

// IncShipmentsCreated counts a successful booking.
func (m *BookingMetrics) IncShipmentsCreated() {
	if m == nil || m.shipmentsCreated == nil {
		return
	}
	m.shipmentsCreated.Inc()
}

// IncTransactionsConfirmed counts a completed confirmation cascade.
func (m *BookingMetrics) IncTransactionsConfirmed() {
	if m == nil || m.transactionsDone == nil {
		return
	}
	m.transactionsDone.Inc()
}

// IncConflict counts a conflict rejection at the named funnel stage.
func (m *BookingMetrics) IncConflict(stage string) {
	if m == nil || m.bookingConflicts == nil {
		return
	}
	if stage == "" {
		stage = "unknown"
	}
	m.bookingConflicts.WithLabelValues(stage).Inc()
}

// IncTrackingAppended counts a ledger append.
func (m *BookingMetrics) IncTrackingAppended() {
	if m == nil || m.trackingAppended == nil {
		return
	}
	m.trackingAppended.Inc()
}

// ObserveConfirmDuration records how long a confirmation cascade took.
func (m *BookingMetrics) ObserveConfirmDuration(duration time.Duration) {
	if m == nil || m.confirmDuration == nil {
		return
	}
	m.confirmDuration.Observe(duration.Seconds())
}
