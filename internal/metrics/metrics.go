// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ControlMessagesTotal counts received control messages by type
	ControlMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_control_messages_total",
			Help: "Total number of control messages received",
		},
		[]string{"type"},
	)

	// DispatchErrorsTotal counts control messages whose handler failed
	DispatchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_control_dispatch_errors_total",
			Help: "Total number of control messages whose handler reported failure",
		},
		[]string{"type"},
	)

	// ControlBytesTotal counts control-plane bytes read per socket family
	ControlBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_control_bytes_total",
			Help: "Total bytes of control traffic read from the wire",
		},
		[]string{"family"},
	)

	// ReadErrorsTotal counts socket read failures per socket family
	ReadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strix_control_read_errors_total",
			Help: "Total number of socket read failures",
		},
		[]string{"family"},
	)

	// ControlListeners tracks the number of bound control sockets
	ControlListeners = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "strix_control_listeners",
			Help: "Number of bound control sockets",
		},
	)

	// ResolverSkipsTotal counts lookup results dropped during peer resolution
	ResolverSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "strix_resolver_skipped_results_total",
			Help: "Total number of name lookup results dropped as unusable",
		},
	)
)
