package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/circlehub/circle-notifier/internal/metrics"
	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	paymentReminderTitle    = "参加費のお支払いをお願いします"
	paymentReminderBodyTmpl = "%s の参加費 ¥%d のお支払いが未完了です"
	unpaidSummaryTitle      = "未払いの参加者がいます"
	unpaidSummaryBodyTmpl   = "%s に%d名の未払い参加者がいます"
)

type eventEndSource interface {
	GetEventsEndedBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

type paymentChecker interface {
	HasCompletedPayment(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error)
}

type circleSource interface {
	GetCircleByID(ctx context.Context, id primitive.ObjectID) (*models.Circle, error)
}

// PaymentReminderJob scans for events that ended one hour before the
// invocation, finds confirmed participants without a completed payment, and
// writes one reminder record per unpaid user plus one summary record for the
// circle's admins. The job assumes it runs once per hour; a skipped window
// is never backfilled.
type PaymentReminderJob struct {
	events   eventEndSource
	payments paymentChecker
	circles  circleSource
	records  recordCreator
}

// NewPaymentReminderJob creates a new instance of PaymentReminderJob.
func NewPaymentReminderJob(events eventEndSource, payments paymentChecker, circles circleSource, records recordCreator) *PaymentReminderJob {
	return &PaymentReminderJob{
		events:   events,
		payments: payments,
		circles:  circles,
		records:  records,
	}
}

// Run executes one scan relative to now and returns the number of records
// created across all matching events. Per-record write failures and
// per-event lookup failures are isolated.
func (j *PaymentReminderJob) Run(ctx context.Context, now time.Time) (int, error) {
	log := logrus.WithFields(logrus.Fields{
		"job":   "payment_reminder",
		"runID": uuid.NewString(),
	})

	from, to := endedWindow(now)
	events, err := j.events.GetEventsEndedBetween(ctx, from, to)
	if err != nil {
		metrics.ReminderJobFailures.WithLabelValues("payment_reminder").Inc()
		return 0, fmt.Errorf("failed to fetch ended events: %v", err)
	}
	log.WithField("events", len(events)).Info("Found events that ended an hour ago")

	var pending []*models.Notification
	for _, event := range events {
		pending = append(pending, j.collectForEvent(ctx, &event, log)...)
	}

	created := createAll(ctx, j.records, pending, log)
	metrics.ReminderRecordsCreated.WithLabelValues("payment_reminder").Add(float64(created))
	log.WithField("created", created).Info("Payment reminder scan completed")
	return created, nil
}

// collectForEvent builds the reminder records one event calls for: one per
// unpaid confirmed participant, plus an admin summary when the circle has
// admins.
func (j *PaymentReminderJob) collectForEvent(ctx context.Context, event *models.Event, log *logrus.Entry) []*models.Notification {
	fee := event.FeeAmount()
	if fee == 0 {
		return nil
	}

	eventLog := log.WithField("eventID", event.ID.Hex())

	var unpaid []primitive.ObjectID
	for _, id := range event.ConfirmedParticipantIDs() {
		paid, err := j.payments.HasCompletedPayment(ctx, event.ID, id)
		if err != nil {
			eventLog.WithError(err).WithField("userID", id.Hex()).
				Warn("Failed to check payment, skipping participant")
			continue
		}
		if !paid {
			unpaid = append(unpaid, id)
		}
	}
	if len(unpaid) == 0 {
		return nil
	}
	eventLog.WithField("unpaid", len(unpaid)).Info("Event has unpaid participants")

	records := make([]*models.Notification, 0, len(unpaid)+1)
	for _, userID := range unpaid {
		records = append(records, &models.Notification{
			CircleID:         event.CircleID,
			EventID:          event.ID,
			Type:             models.NotifTypePaymentReminder,
			Title:            paymentReminderTitle,
			Body:             fmt.Sprintf(paymentReminderBodyTmpl, event.Name, fee),
			RecipientUserIDs: []primitive.ObjectID{userID},
		})
	}

	circle, err := j.circles.GetCircleByID(ctx, event.CircleID)
	if err != nil {
		eventLog.WithError(err).Warn("Failed to fetch circle, skipping admin summary")
		return records
	}
	adminIDs := circle.AdminIDs()
	if len(adminIDs) == 0 {
		return records
	}

	records = append(records, &models.Notification{
		CircleID:         event.CircleID,
		EventID:          event.ID,
		Type:             models.NotifTypePaymentReminder,
		Title:            unpaidSummaryTitle,
		Body:             fmt.Sprintf(unpaidSummaryBodyTmpl, event.Name, len(unpaid)),
		RecipientUserIDs: adminIDs,
	})
	return records
}

// endedWindow returns the [now-2h, now-1h) window for events that ended one
// hour before the invocation.
func endedWindow(now time.Time) (time.Time, time.Time) {
	return now.Add(-2 * time.Hour), now.Add(-time.Hour)
}
