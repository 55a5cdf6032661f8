// Package observability provides the metrics and tracing used by the
// service layer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FollowTransitions counts follow-edge state changes by transition.
	FollowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_follow_transitions_total",
		Help: "Follow edge transitions by kind",
	}, []string{"transition"})

	// FollowRaceRecoveries counts follow requests that lost a unique-index race.
	FollowRaceRecoveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonance_follow_race_recoveries_total",
		Help: "Follow requests resolved by re-reading the existing edge after a duplicate insert",
	})

	// FlagsRecorded counts accepted content flags by content kind.
	FlagsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_flags_recorded_total",
		Help: "Content flags recorded by content kind",
	}, []string{"kind"})

	// AutoHides counts threshold crossings that hid content.
	AutoHides = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_content_auto_hidden_total",
		Help: "Content items hidden after reaching the flag threshold",
	}, []string{"kind"})

	// AlertFailures counts moderation alerts that could not be sent.
	AlertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sonance_moderation_alert_failures_total",
		Help: "Moderation alert emails that failed to send",
	})

	// NotificationsEmitted counts persisted notification rows by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_notifications_emitted_total",
		Help: "Notification rows persisted by type",
	}, []string{"type"})

	// PushDeliveries counts delivery attempts by channel kind and result.
	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_push_deliveries_total",
		Help: "Push delivery attempts by channel kind and result",
	}, []string{"channel", "result"})

	// PushQueueDrops counts delivery tasks that never reached a worker.
	PushQueueDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_push_queue_drops_total",
		Help: "Push delivery tasks dropped before delivery by reason",
	}, []string{"reason"})

	// MaintenancePurged counts rows removed by maintenance jobs.
	MaintenancePurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_maintenance_purged_total",
		Help: "Rows removed by scheduled maintenance by job",
	}, []string{"job"})

	MaintenanceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_maintenance_failures_total",
		Help: "Failed maintenance job runs by job",
	}, []string{"job"})

	// RealtimeConnections tracks open notification websockets.
	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sonance_realtime_connections",
		Help: "Open notification websocket connections",
	})

	RealtimeDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sonance_realtime_drops_total",
		Help: "Realtime messages not handed to a websocket by reason",
	}, []string{"reason"})
)
