package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/circlehub/circle-notifier/internal/config"
	"github.com/circlehub/circle-notifier/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartReminderCrons wires both reminder jobs onto the cron scheduler in the
// configured time zone and starts it. Job errors are logged, never
// re-raised: the schedule must not retry a run whose writes may have
// partially landed.
func StartReminderCrons(cfg *config.Config, eventJob *jobs.EventReminderJob, paymentJob *jobs.PaymentReminderJob, loc *time.Location) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(loc))

	// Event reminders, daily
	if _, err := c.AddFunc(cfg.EventReminderCron, func() {
		if _, err := eventJob.Run(context.Background(), time.Now()); err != nil {
			logrus.WithError(err).Error("Event reminder job failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule event reminder job: %v", err)
	}

	// Payment reminders, hourly
	if _, err := c.AddFunc(cfg.PaymentReminderCron, func() {
		if _, err := paymentJob.Run(context.Background(), time.Now()); err != nil {
			logrus.WithError(err).Error("Payment reminder job failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule payment reminder job: %v", err)
	}

	c.Start()
	logrus.WithFields(logrus.Fields{
		"event_reminder":   cfg.EventReminderCron,
		"payment_reminder": cfg.PaymentReminderCron,
		"time_zone":        loc.String(),
	}).Info("Reminder cron jobs started")

	return c, nil
}
