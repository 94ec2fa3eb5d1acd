package services

import (
	"context"
	"errors"

	"github.com/circlehub/circle-notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoRecipients rejects notification records that would violate the
// non-empty recipients invariant.
var ErrNoRecipients = errors.New("notification must have at least one recipient")

type notificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	GetNotificationsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
}

// NotificationService validates and persists notification records for
// producers outside the reminder jobs, and serves the user-facing feed.
type NotificationService struct {
	repo notificationStore
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo notificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// CreateNotification persists a record after validation. Records without
// recipients are rejected; a record that cannot reach anyone must never be
// enqueued.
func (s *NotificationService) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	if len(notif.RecipientUserIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if notif.Type == "" {
		notif.Type = models.NotifTypeGeneral
	}
	return s.repo.CreateNotification(ctx, notif)
}

// GetUserNotifications returns the user's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetNotificationsForUser(ctx, userID)
}
