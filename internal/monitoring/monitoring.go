// FilePath: internal/monitoring/monitoring.go
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service exposes the transaction pipeline's counters. It owns a private
// registry so tests can construct isolated instances without colliding on
// the global one.
type Service struct {
	registry    *prometheus.Registry
	built       prometheus.Counter
	throttled   prometheus.Counter
	submissions *prometheus.CounterVec
}

// NewService registers the pipeline metrics on a fresh registry
func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		built: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainsense_transactions_built_total",
			Help: "Unsigned sensor transactions built for external signing.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chainsense_requests_throttled_total",
			Help: "Requests rejected by the fixed-window throttle.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chainsense_submissions_total",
			Help: "Transaction submissions by outcome.",
		}, []string{"status"}),
	}
	s.registry.MustRegister(s.built, s.throttled, s.submissions)
	return s
}

// TxBuilt counts one successfully built unsigned transaction
func (s *Service) TxBuilt() {
	s.built.Inc()
}

// Throttled counts one request rejected by the throttle
func (s *Service) Throttled() {
	s.throttled.Inc()
}

// SubmissionRecorded counts one submission outcome: confirmed, rejected or
// transport_failure
func (s *Service) SubmissionRecorded(status string) {
	s.submissions.WithLabelValues(status).Inc()
}

// Handler serves the registry in Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
