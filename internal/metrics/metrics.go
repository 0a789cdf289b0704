// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FIBEntriesTotal tracks the current number of entries in the FIB.
	FIBEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cefnetd_fib_entries_total",
			Help: "Current number of entries in the forwarding information base",
		},
	)

	// RouteMessagesTotal counts control-plane route messages by op and outcome.
	RouteMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cefnetd_route_messages_total",
			Help: "Total number of control-plane route messages applied or rejected",
		},
		[]string{"op", "outcome"},
	)

	// PacketsForwardedTotal counts forwarded packets by type and outcome.
	PacketsForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cefnetd_packets_forwarded_total",
			Help: "Total number of packets forwarded, by packet type and outcome",
		},
		[]string{"packet_type", "outcome"},
	)

	// CodecErrorsTotal counts codec parse/build failures by stage.
	CodecErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cefnetd_codec_errors_total",
			Help: "Total number of wire codec parse/build errors",
		},
		[]string{"stage"},
	)

	// CcninfoRequestsTotal counts Ccninfo discovery requests handled at this
	// node, by outcome (forwarded or terminated with a reply).
	CcninfoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cefnetd_ccninfo_requests_total",
			Help: "Total number of Ccninfo discovery requests handled",
		},
		[]string{"outcome"},
	)

	// CcninfoRepliesTotal counts Ccninfo replies generated, by return code.
	CcninfoRepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cefnetd_ccninfo_replies_total",
			Help: "Total number of Ccninfo replies generated, by return code",
		},
		[]string{"retcode"},
	)

	// FacesActive tracks the current number of open faces by type.
	FacesActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cefnetd_faces_active",
			Help: "Current number of open faces, by face type",
		},
		[]string{"type"},
	)
)
