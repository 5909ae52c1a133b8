package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the grocery feature's Prometheus metrics.
type Metrics struct {
	ListsCreated  prometheus.Counter
	ListsDeleted  prometheus.Counter
	ItemsAdded    prometheus.Counter
	SharesGranted prometheus.Counter
	AccessDenied  prometheus.Counter
}

// New creates and registers the grocery metrics.
func New() *Metrics {
	return &Metrics{
		ListsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lists_created_total",
			Help: "Total grocery lists created",
		}),
		ListsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_lists_deleted_total",
			Help: "Total grocery lists deleted",
		}),
		ItemsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_items_added_total",
			Help: "Total items added across all lists",
		}),
		SharesGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_shares_granted_total",
			Help: "Total sharing grants created",
		}),
		AccessDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pantry_access_denied_total",
			Help: "Total operations refused by the access gate",
		}),
	}
}

func (m *Metrics) IncListsCreated() {
	if m != nil {
		m.ListsCreated.Inc()
	}
}

func (m *Metrics) IncListsDeleted() {
	if m != nil {
		m.ListsDeleted.Inc()
	}
}

func (m *Metrics) IncItemsAdded() {
	if m != nil {
		m.ItemsAdded.Inc()
	}
}

func (m *Metrics) IncSharesGranted() {
	if m != nil {
		m.SharesGranted.Inc()
	}
}

func (m *Metrics) IncAccessDenied() {
	if m != nil {
		m.AccessDenied.Inc()
	}
}
