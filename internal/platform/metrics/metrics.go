package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	AccountsRegistered    prometheus.Counter
	RegistrationConflicts prometheus.Counter
	SettingsUpdated       prometheus.Counter
	StoreFailures         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccountsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "nolatabs_accounts_registered_total",
			Help: "Total number of accounts provisioned",
		}),
		RegistrationConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "nolatabs_registration_conflicts_total",
			Help: "Registrations rejected because the email already had an account",
		}),
		SettingsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nolatabs_settings_updated_total",
			Help: "Total number of preference replacements",
		}),
		StoreFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nolatabs_store_failures_total",
			Help: "Storage failures by operation and storage kind",
		}, []string{"operation", "kind"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nolatabs_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "status"}),
	}
}

// IncrementAccountsRegistered records a successful registration.
func (m *Metrics) IncrementAccountsRegistered() {
	m.AccountsRegistered.Inc()
}

// IncrementRegistrationConflicts records a registration that hit the unique email constraint.
func (m *Metrics) IncrementRegistrationConflicts() {
	m.RegistrationConflicts.Inc()
}

// IncrementSettingsUpdated records a successful preference update.
func (m *Metrics) IncrementSettingsUpdated() {
	m.SettingsUpdated.Inc()
}

// IncrementStoreFailure records a failed store call.
func (m *Metrics) IncrementStoreFailure(operation, kind string) {
	m.StoreFailures.WithLabelValues(operation, kind).Inc()
}

// ObserveRequest records the duration of a request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
