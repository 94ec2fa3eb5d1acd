package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var tokyo = mustLoadLocation("Asia/Tokyo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

type fakeEventSource struct {
	events   []models.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeEventSource) GetEventsStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	f.lastFrom, f.lastTo = from, to
	return f.events, f.err
}

func (f *fakeEventSource) GetEventsEndedBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	f.lastFrom, f.lastTo = from, to
	return f.events, f.err
}

// fakeRecorder must be safe for concurrent use: the jobs issue their record
// writes from separate goroutines.
type fakeRecorder struct {
	mu      sync.Mutex
	created []*models.Notification
	failFor map[primitive.ObjectID]error // keyed by event id
}

func (f *fakeRecorder) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[notif.EventID]; ok {
		return nil, err
	}
	notif.ID = primitive.NewObjectID()
	f.created = append(f.created, notif)
	return notif, nil
}

func (f *fakeRecorder) all() []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Notification(nil), f.created...)
}

func TestTomorrowWindow(t *testing.T) {
	// 09:00 JST on 2025-03-10 — the window is the full calendar day of the
	// 11th, not a rolling 24h span from 09:00.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, tokyo)

	from, to := tomorrowWindow(now, tokyo)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, tokyo), from)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, tokyo), to)
}

func TestTomorrowWindow_ConvertsToZone(t *testing.T) {
	// 23:30 UTC on the 10th is already 08:30 JST on the 11th, so "tomorrow"
	// is the 12th in Tokyo.
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	from, to := tomorrowWindow(now, tokyo)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, tokyo), from)
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, tokyo), to)
}

func TestEventReminderJob_CreatesOneRecordPerEvent(t *testing.T) {
	circleID := primitive.NewObjectID()
	confirmed1 := primitive.NewObjectID()
	confirmed2 := primitive.NewObjectID()

	event := models.Event{
		ID:       primitive.NewObjectID(),
		CircleID: circleID,
		Name:     "夏合宿",
		Participants: []models.Participant{
			{UserID: confirmed1, Status: models.ParticipantConfirmed},
			{UserID: confirmed2, Status: models.ParticipantConfirmed},
			{UserID: primitive.NewObjectID(), Status: models.ParticipantPending},
		},
	}
	source := &fakeEventSource{events: []models.Event{event}}
	recorder := &fakeRecorder{}
	job := NewEventReminderJob(source, recorder, tokyo)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, tokyo)
	created, err := job.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// The query window is passed through to the store.
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, tokyo), source.lastFrom)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, tokyo), source.lastTo)

	records := recorder.all()
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, models.NotifTypeEventReminder, rec.Type)
	assert.Equal(t, circleID, rec.CircleID)
	assert.Equal(t, event.ID, rec.EventID)
	assert.Contains(t, rec.Body, "夏合宿")
	// Only the confirmed participants, pending excluded.
	assert.ElementsMatch(t, []primitive.ObjectID{confirmed1, confirmed2}, rec.RecipientUserIDs)
}

func TestEventReminderJob_NoConfirmedParticipants_NoRecord(t *testing.T) {
	event := models.Event{
		ID:       primitive.NewObjectID(),
		CircleID: primitive.NewObjectID(),
		Name:     "新歓",
		Participants: []models.Participant{
			{UserID: primitive.NewObjectID(), Status: models.ParticipantPending},
			{UserID: primitive.NewObjectID(), Status: models.ParticipantDeclined},
		},
	}
	recorder := &fakeRecorder{}
	job := NewEventReminderJob(&fakeEventSource{events: []models.Event{event}}, recorder, tokyo)

	created, err := job.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, recorder.all())
}

func TestEventReminderJob_WriteFailureDoesNotAbortSiblings(t *testing.T) {
	broken := primitive.NewObjectID()
	makeEvent := func(id primitive.ObjectID) models.Event {
		return models.Event{
			ID:       id,
			CircleID: primitive.NewObjectID(),
			Name:     "イベント",
			Participants: []models.Participant{
				{UserID: primitive.NewObjectID(), Status: models.ParticipantConfirmed},
			},
		}
	}
	source := &fakeEventSource{events: []models.Event{makeEvent(broken), makeEvent(primitive.NewObjectID())}}
	recorder := &fakeRecorder{failFor: map[primitive.ObjectID]error{broken: errors.New("write failed")}}
	job := NewEventReminderJob(source, recorder, tokyo)

	created, err := job.Run(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Len(t, recorder.all(), 1)
}

func TestEventReminderJob_QueryFailure(t *testing.T) {
	job := NewEventReminderJob(&fakeEventSource{err: errors.New("store unreachable")}, &fakeRecorder{}, tokyo)

	_, err := job.Run(context.Background(), time.Now())
	assert.Error(t, err)
}

// Re-running the scan for the same day creates duplicate records: there is
// no de-duplication key. This documents current behavior, it is not an
// endorsement.
func TestEventReminderJob_RerunDuplicates(t *testing.T) {
	event := models.Event{
		ID:       primitive.NewObjectID(),
		CircleID: primitive.NewObjectID(),
		Name:     "練習",
		Participants: []models.Participant{
			{UserID: primitive.NewObjectID(), Status: models.ParticipantConfirmed},
		},
	}
	recorder := &fakeRecorder{}
	job := NewEventReminderJob(&fakeEventSource{events: []models.Event{event}}, recorder, tokyo)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, tokyo)
	_, err := job.Run(context.Background(), now)
	require.NoError(t, err)
	_, err = job.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Len(t, recorder.all(), 2)
}
