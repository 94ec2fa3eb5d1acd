package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles the notifications collection, which doubles
// as the delivery work queue: inserts are observed by the dispatcher through
// a change stream.
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// CreateNotification inserts a new notification record. Each insert is
// independently durable; there is no batch transaction.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	now := time.Now()
	notif.CreatedAt = now
	if notif.SentAt.IsZero() {
		notif.SentAt = now
	}

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, fmt.Errorf("failed to create notification: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	notif.ID = insertedID

	return notif, nil
}

// GetNotificationsForUser returns every notification addressed to the user,
// newest first.
func (r *NotificationRepository) GetNotificationsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{"recipient_user_ids": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// WatchInserts opens a change stream over notification inserts. The stream
// delivers the full inserted document.
func (r *NotificationRepository) WatchInserts(ctx context.Context) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	stream, err := r.collection.Watch(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification change stream: %v", err)
	}
	return stream, nil
}
