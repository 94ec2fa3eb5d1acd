package watcher

import (
	"context"
	"time"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/circlehub/circle-notifier/internal/services"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

type insertStream interface {
	WatchInserts(ctx context.Context) (*mongo.ChangeStream, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, notif *models.Notification) *services.DispatchResult
}

// NotificationWatcher consumes notification inserts from the change stream
// and hands each record to the dispatcher. This is the record-created
// trigger: the stream may redeliver after a resume, so the same record can
// reach the dispatcher more than once — dispatch tolerates that.
type NotificationWatcher struct {
	stream     insertStream
	dispatcher dispatcher

	// retryDelay paces reconnects after a broken stream.
	retryDelay time.Duration
}

// NewNotificationWatcher creates a new instance of NotificationWatcher.
func NewNotificationWatcher(stream insertStream, d dispatcher) *NotificationWatcher {
	return &NotificationWatcher{
		stream:     stream,
		dispatcher: d,
		retryDelay: 5 * time.Second,
	}
}

// Run blocks, consuming inserts until ctx is cancelled. A failed stream is
// reopened after a short delay; a failed dispatch never stops consumption.
func (w *NotificationWatcher) Run(ctx context.Context) {
	for {
		if err := w.consume(ctx); err != nil {
			logrus.WithError(err).Error("Notification change stream broken, reconnecting")
		}

		select {
		case <-ctx.Done():
			logrus.Info("Notification watcher stopped")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *NotificationWatcher) consume(ctx context.Context) error {
	stream, err := w.stream.WatchInserts(ctx)
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	logrus.Info("Watching notification inserts")

	for stream.Next(ctx) {
		var change struct {
			FullDocument models.Notification `bson:"fullDocument"`
		}
		if err := stream.Decode(&change); err != nil {
			logrus.WithError(err).Warn("Failed to decode change event, skipping")
			continue
		}
		w.dispatcher.Dispatch(ctx, &change.FullDocument)
	}

	return stream.Err()
}
