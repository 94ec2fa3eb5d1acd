package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/circlehub/circle-notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentRepository handles database operations related to payments.
type PaymentRepository struct {
	collection *mongo.Collection
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{
		collection: db.Collection("payments"),
	}
}

// HasCompletedPayment reports whether a completed payment exists for the
// given event and user. This is an existence check, not a document fetch.
func (r *PaymentRepository) HasCompletedPayment(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"event_id": eventID,
		"user_id":  userID,
		"status":   models.PaymentCompleted,
	}

	err := r.collection.FindOne(ctx, filter).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check payment: %v", err)
	}
	return true, nil
}
