package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/circlehub/circle-notifier/internal/metrics"
	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	eventReminderTitle    = "イベントリマインダー"
	eventReminderBodyTmpl = "%s が明日開催されます"
)

type eventStartSource interface {
	GetEventsStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

type recordCreator interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
}

// EventReminderJob scans for events starting tomorrow and writes one
// reminder record per event, addressed to its confirmed participants. The
// job is stateless; each invocation derives everything from the invocation
// instant. Re-running it for the same day writes duplicate records — there
// is no de-duplication key.
type EventReminderJob struct {
	events  eventStartSource
	records recordCreator
	loc     *time.Location
}

// NewEventReminderJob creates a new instance of EventReminderJob.
func NewEventReminderJob(events eventStartSource, records recordCreator, loc *time.Location) *EventReminderJob {
	return &EventReminderJob{
		events:  events,
		records: records,
		loc:     loc,
	}
}

// Run executes one scan relative to now and returns the number of reminder
// records created. Individual record write failures are logged and do not
// abort sibling writes.
func (j *EventReminderJob) Run(ctx context.Context, now time.Time) (int, error) {
	log := logrus.WithFields(logrus.Fields{
		"job":   "event_reminder",
		"runID": uuid.NewString(),
	})

	from, to := tomorrowWindow(now, j.loc)
	events, err := j.events.GetEventsStartingBetween(ctx, from, to)
	if err != nil {
		metrics.ReminderJobFailures.WithLabelValues("event_reminder").Inc()
		return 0, fmt.Errorf("failed to fetch tomorrow's events: %v", err)
	}
	log.WithField("events", len(events)).Info("Found events for tomorrow")

	var pending []*models.Notification
	for _, event := range events {
		recipients := event.ConfirmedParticipantIDs()
		if len(recipients) == 0 {
			continue
		}

		pending = append(pending, &models.Notification{
			CircleID:         event.CircleID,
			EventID:          event.ID,
			Type:             models.NotifTypeEventReminder,
			Title:            eventReminderTitle,
			Body:             fmt.Sprintf(eventReminderBodyTmpl, event.Name),
			RecipientUserIDs: recipients,
		})
	}

	created := createAll(ctx, j.records, pending, log)
	metrics.ReminderRecordsCreated.WithLabelValues("event_reminder").Add(float64(created))
	log.WithField("created", created).Info("Event reminder scan completed")
	return created, nil
}

// tomorrowWindow returns the canonical [midnight+24h, midnight+48h) day
// window in loc, anchored to the calendar day of now — not a rolling 24h
// window.
func tomorrowWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	from := midnight.AddDate(0, 0, 1)
	return from, from.AddDate(0, 0, 1)
}

// createAll issues every record write concurrently and waits for the whole
// batch. Failures are isolated per record.
func createAll(ctx context.Context, records recordCreator, pending []*models.Notification, log *logrus.Entry) int {
	if len(pending) == 0 {
		return 0
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for _, notif := range pending {
		notif := notif
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := records.CreateNotification(ctx, notif); err != nil {
				log.WithError(err).WithField("eventID", notif.EventID.Hex()).
					Warn("Failed to create reminder record")
				return
			}
			mu.Lock()
			created++
			mu.Unlock()
		}()
	}
	wg.Wait()
	return created
}
