package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identity feature's Prometheus metrics.
type Metrics struct {
	UsersRegistered prometheus.Counter
	UsersFederated  prometheus.Counter
	LoginFailures   prometheus.Counter
}

// New creates and registers the identity metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_users_registered_total",
			Help: "Total users created through password registration",
		}),
		UsersFederated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_users_federated_total",
			Help: "Total users provisioned from federated identities",
		}),
		LoginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_login_failures_total",
			Help: "Total failed authentication attempts",
		}),
	}
}

func (m *Metrics) IncRegistered() {
	if m != nil {
		m.UsersRegistered.Inc()
	}
}

func (m *Metrics) IncFederated() {
	if m != nil {
		m.UsersFederated.Inc()
	}
}

func (m *Metrics) IncLoginFailure() {
	if m != nil {
		m.LoginFailures.Inc()
	}
}
