package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records one participant's fee payment for one event. Written by
// the payment subsystem; this service only checks for completed ones.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status    string             `bson:"status" json:"status"`
	Amount    int                `bson:"amount,omitempty" json:"amount,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
