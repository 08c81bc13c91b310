// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers gateway metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	connections     prometheus.Gauge
	events          *prometheus.CounterVec
	messages        *prometheus.CounterVec
	invitesIssued   prometheus.Counter
	invitesConsumed prometheus.Counter
	invitesRejected *prometheus.CounterVec
	framesDropped   prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "parley_connections",
			Help: "Currently open client connections.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_events_total",
			Help: "Inbound events handled, by event name.",
		}, []string{"event"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_messages_total",
			Help: "Messages appended to room history, by kind.",
		}, []string{"kind"}),
		invitesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_invites_issued_total",
			Help: "Invite tokens issued.",
		}),
		invitesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_invites_consumed_total",
			Help: "Successful joins via invite token.",
		}),
		invitesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_invites_rejected_total",
			Help: "Invite validations rejected, by reason.",
		}, []string{"reason"}),
		framesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parley_frames_dropped_total",
			Help: "Outbound frames dropped on slow connections.",
		}),
	}

	c.registry.MustRegister(
		c.connections,
		c.events,
		c.messages,
		c.invitesIssued,
		c.invitesConsumed,
		c.invitesRejected,
		c.framesDropped,
	)
	return c
}

func (c *Collector) ConnOpened() { c.connections.Inc() }

func (c *Collector) ConnClosed() { c.connections.Dec() }

func (c *Collector) RecordEvent(name string) { c.events.WithLabelValues(name).Inc() }

func (c *Collector) RecordMessage(kind string) { c.messages.WithLabelValues(kind).Inc() }

func (c *Collector) RecordInviteIssued() { c.invitesIssued.Inc() }

func (c *Collector) RecordInviteConsumed() { c.invitesConsumed.Inc() }
func (c *Collector) RecordInviteRejected(reason string) {
	c.invitesRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordFrameDropped() { c.framesDropped.Inc() }

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }
