package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eldercare/careconnect/internal/core/domain"
	"github.com/eldercare/careconnect/internal/core/ports"
)

const decisionEventsCollection = "decision_events"

// DecisionEventRepository implements ports.DecisionEventRepository using MongoDB.
type DecisionEventRepository struct {
	db *mongo.Database
}

func NewDecisionEventRepository(db *mongo.Database) ports.DecisionEventRepository {
	return &DecisionEventRepository{db: db}
}

// InsertEvent appends a decision to the audit collection.
func (r *DecisionEventRepository) InsertEvent(ctx context.Context, event *domain.DecisionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"request_id": event.RequestID,
		"decision":   string(event.Decision),
		"status":     string(event.Status),
		"caregiver": bson.M{
			"id":    event.Caregiver.ID,
			"name":  event.Caregiver.Name,
			"email": event.Caregiver.Email,
		},
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(decisionEventsCollection).InsertOne(ctx, doc)
	return err
}
