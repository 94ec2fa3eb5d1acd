package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Total number of notification records processed by the dispatcher",
		},
		[]string{"status"},
	)

	PushTokensDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_tokens_delivered_total",
			Help: "Total number of device tokens successfully delivered to",
		},
	)

	PushTokensFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "push_tokens_failed_total",
			Help: "Total number of device tokens the gateway rejected",
		},
	)

	ReminderRecordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_records_created_total",
			Help: "Total number of reminder notification records created per job",
		},
		[]string{"job"},
	)

	ReminderJobFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_job_failures_total",
			Help: "Total number of reminder job runs that failed before writing",
		},
		[]string{"job"},
	)
)
