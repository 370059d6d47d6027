/*
Package metrics defines the Prometheus collectors exported on /metrics.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dmchat"

// Handshake results.
const (
	HandshakeAccepted = "accepted"
	HandshakeRefused  = "refused"
)

// Fanout push results.
const (
	PushDelivered = "delivered"
	PushOffline   = "offline"
	PushFailed    = "failed"
)

// Metrics holds the application collectors.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	Handshakes        *prometheus.CounterVec
	FanoutPushes      *prometheus.CounterVec
	MessagesPersisted prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Authenticated realtime connections currently open.",
		}),
		Handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Realtime handshakes by result.",
		}, []string{"result"}),
		FanoutPushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fanout_pushes_total",
			Help:      "Per-recipient fanout attempts by result.",
		}, []string{"result"}),
		MessagesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_persisted_total",
			Help:      "Messages written to the message store.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(m.ConnectionsActive, m.Handshakes, m.FanoutPushes, m.MessagesPersisted)

	return m
}

// NewNop returns collectors bound to a throwaway registry, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
