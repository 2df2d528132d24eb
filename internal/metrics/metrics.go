// Package metrics exposes the prometheus collectors of the presence and
// routing core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "connections",
		Help:      "Currently registered live connections.",
	})

	Rooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "rooms_connected",
		Help:      "Rooms with at least one connected member.",
	})

	Groups = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "groups",
		Help:      "Live in-memory groups.",
	})

	ActiveLinks = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chat",
		Name:      "ephemeral_links",
		Help:      "Ephemeral links not yet swept.",
	})

	RoutedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "routed_messages_total",
		Help:      "Messages fanned out, by target kind.",
	}, []string{"kind"})

	OrphanedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "orphaned_messages_total",
		Help:      "Messages delivered without an id after a store failure.",
	})

	DroppedSends = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chat",
		Name:      "dropped_sends_total",
		Help:      "Outbound frames dropped on backpressure.",
	})
)
