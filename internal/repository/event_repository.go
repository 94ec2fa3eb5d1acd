package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/circlehub/circle-notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EventRepository handles database operations related to events.
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

// GetEventsStartingBetween returns events whose start datetime falls within
// [from, to).
func (r *EventRepository) GetEventsStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	filter := bson.M{"datetime": bson.M{"$gte": from, "$lt": to}}
	return r.findEvents(ctx, filter)
}

// GetEventsEndedBetween returns events whose end datetime falls within
// [from, to).
func (r *EventRepository) GetEventsEndedBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	filter := bson.M{"end_datetime": bson.M{"$gte": from, "$lt": to}}
	return r.findEvents(ctx, filter)
}

func (r *EventRepository) findEvents(ctx context.Context, filter bson.M) ([]models.Event, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []models.Event
	for cursor.Next(ctx) {
		var event models.Event
		if err := cursor.Decode(&event); err != nil {
			return nil, fmt.Errorf("failed to decode event: %v", err)
		}
		events = append(events, event)
	}

	return events, nil
}
