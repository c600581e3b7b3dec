// Package metrics provides Prometheus instrumentation for the relay: gauges
// for live connections, counters for frame and broadcast throughput. The
// registry is process-global and exposed on the admin HTTP server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveConnections tracks the current number of live chat connections.
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "classcord_active_connections",
		Help: "Current number of live chat connections",
	})

	// FramesReceived counts inbound frames by protocol type.
	FramesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classcord_frames_received_total",
		Help: "Total inbound frames by type",
	}, []string{"type"})

	// BroadcastSends counts individual broadcast send attempts.
	BroadcastSends = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classcord_broadcast_sends_total",
		Help: "Total individual send attempts made by broadcast fan-out",
	})

	// DeliveryFailures counts sends that failed and were isolated.
	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classcord_delivery_failures_total",
		Help: "Total per-recipient delivery failures during broadcast or unicast",
	})
)

func init() {
	prometheus.MustRegister(
		ActiveConnections,
		FramesReceived,
		BroadcastSends,
		DeliveryFailures,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
