package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/circlehub/circle-notifier/internal/models"
	"github.com/circlehub/circle-notifier/internal/services"
	"github.com/circlehub/circle-notifier/pkg/logger"
	"github.com/circlehub/circle-notifier/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

type createNotificationRequest struct {
	CircleID         string   `json:"circle_id,omitempty"`
	EventID          string   `json:"event_id,omitempty"`
	Title            string   `json:"title"`
	Body             string   `json:"body"`
	RecipientUserIDs []string `json:"recipient_user_ids"`
}

// POST /notifications
func (h *NotificationHandler) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Body == "" {
		http.Error(w, "Title and body are required", http.StatusBadRequest)
		return
	}

	recipients := make([]primitive.ObjectID, 0, len(req.RecipientUserIDs))
	for _, raw := range req.RecipientUserIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "Invalid recipient user ID", http.StatusBadRequest)
			return
		}
		recipients = append(recipients, id)
	}

	notif := &models.Notification{
		Type:             models.NotifTypeGeneral,
		Title:            req.Title,
		Body:             req.Body,
		RecipientUserIDs: recipients,
	}
	if req.CircleID != "" {
		circleID, err := primitive.ObjectIDFromHex(req.CircleID)
		if err != nil {
			http.Error(w, "Invalid circle ID", http.StatusBadRequest)
			return
		}
		notif.CircleID = circleID
	}
	if req.EventID != "" {
		eventID, err := primitive.ObjectIDFromHex(req.EventID)
		if err != nil {
			http.Error(w, "Invalid event ID", http.StatusBadRequest)
			return
		}
		notif.EventID = eventID
	}

	created, err := h.Service.CreateNotification(r.Context(), notif)
	if err != nil {
		if errors.Is(err, services.ErrNoRecipients) {
			http.Error(w, "At least one recipient is required", http.StatusBadRequest)
			return
		}
		logger.Log.Errorf("Failed to create notification: %v", err)
		http.Error(w, "Failed to create notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GET /notifications
func (h *NotificationHandler) GetUserNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID in token", http.StatusBadRequest)
		return
	}

	notifications, err := h.Service.GetUserNotifications(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch notifications: %v", err)
		http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	json.NewEncoder(w).Encode(notifications)
}
