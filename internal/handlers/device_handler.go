package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/circlehub/circle-notifier/pkg/logger"
	"github.com/circlehub/circle-notifier/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type tokenUpdater interface {
	UpdateFCMToken(ctx context.Context, userID primitive.ObjectID, token string) error
}

// DeviceHandler registers the caller's FCM device token. Without a
// registered token a user silently drops out of every push fan-out.
type DeviceHandler struct {
	Users tokenUpdater
}

func NewDeviceHandler(users tokenUpdater) *DeviceHandler {
	return &DeviceHandler{Users: users}
}

// PUT /users/me/push-token
func (h *DeviceHandler) UpdatePushTokenHandler(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Users.UpdateFCMToken(r.Context(), userID, req.Token); err != nil {
		logger.Log.Errorf("Failed to update push token: %v", err)
		http.Error(w, "Failed to update push token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Push token updated"})
}
