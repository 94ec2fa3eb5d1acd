package repository

import (
	"context"
	"fmt"

	"github.com/circlehub/circle-notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CircleRepository handles database operations related to circles.
type CircleRepository struct {
	collection *mongo.Collection
}

// NewCircleRepository creates a new instance of CircleRepository.
func NewCircleRepository(db *mongo.Database) *CircleRepository {
	return &CircleRepository{
		collection: db.Collection("circles"),
	}
}

// GetCircleByID fetches a circle by its ID.
func (r *CircleRepository) GetCircleByID(ctx context.Context, id primitive.ObjectID) (*models.Circle, error) {
	var circle models.Circle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&circle)
	if err != nil {
		return nil, fmt.Errorf("failed to find circle by id: %v", err)
	}
	return &circle, nil
}
