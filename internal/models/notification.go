package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types as stored in the document and carried in the push payload.
const (
	NotifTypeGeneral         = "general"
	NotifTypeEventReminder   = "eventReminder"
	NotifTypePaymentReminder = "paymentReminder"
)

// Notification is a durable fan-out record: producers (the reminder jobs, the
// HTTP API) insert it, the dispatcher picks it up and attempts push delivery.
// The document is never deleted after delivery; it doubles as the audit trail
// and as the user's in-app notification feed.
type Notification struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CircleID         primitive.ObjectID   `bson:"circle_id,omitempty" json:"circle_id,omitempty"`
	EventID          primitive.ObjectID   `bson:"event_id,omitempty" json:"event_id,omitempty"`
	Type             string               `bson:"type" json:"type"`
	Title            string               `bson:"title" json:"title"`
	Body             string               `bson:"body" json:"body"`
	RecipientUserIDs []primitive.ObjectID `bson:"recipient_user_ids" json:"recipient_user_ids"`
	SentAt           time.Time            `bson:"sent_at" json:"sent_at"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
}
