package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuance module.
type Metrics struct {
	// Association outcomes: associated, idempotent, rotated, rejected
	Associations *prometheus.CounterVec

	// Credentials issued by type
	CredentialsIssued *prometheus.CounterVec

	// Revoke-all calls performed on DID rotation
	Revocations prometheus.Counter

	// Issuer auth token rotations persisted
	TokenRotations prometheus.Counter

	// End-to-end credential request handling latency
	RequestLatency prometheus.Histogram
}

// New creates a new Metrics instance with all issuance module metrics registered.
func New() *Metrics {
	return &Metrics{
		Associations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "issuer_gateway_associations_total",
			Help: "Total DID association outcomes by result",
		}, []string{"outcome"}),

		CredentialsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "issuer_gateway_credentials_issued_total",
			Help: "Total credentials issued by credential type",
		}, []string{"type"}),

		Revocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "issuer_gateway_revocations_total",
			Help: "Total revoke-all calls made for rotated DIDs",
		}),

		TokenRotations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "issuer_gateway_token_rotations_total",
			Help: "Total issuer auth token rotations persisted",
		}),

		RequestLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "issuer_gateway_request_duration_seconds",
			Help:    "Duration of full credential request handling",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementAssociation records one association outcome.
func (m *Metrics) IncrementAssociation(outcome string) {
	if m != nil {
		m.Associations.WithLabelValues(outcome).Inc()
	}
}

// IncrementIssued records one issued credential of the given type.
func (m *Metrics) IncrementIssued(credentialType string) {
	if m != nil {
		m.CredentialsIssued.WithLabelValues(credentialType).Inc()
	}
}

// IncrementRevocations records one revoke-all call.
func (m *Metrics) IncrementRevocations() {
	if m != nil {
		m.Revocations.Inc()
	}
}

// IncrementTokenRotations records one persisted token rotation.
func (m *Metrics) IncrementTokenRotations() {
	if m != nil {
		m.TokenRotations.Inc()
	}
}

// ObserveRequestLatency records the duration of one orchestrated request.
func (m *Metrics) ObserveRequestLatency(d time.Duration) {
	if m != nil {
		m.RequestLatency.Observe(d.Seconds())
	}
}
