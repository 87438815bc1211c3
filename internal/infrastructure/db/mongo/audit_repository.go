package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mealbridge/mealbridge-api/internal/core/domain"
	"github.com/mealbridge/mealbridge-api/internal/core/ports"
)

const collectionEvents = "donation_events"

// AuditRepository appends lifecycle events to the donation_events collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(collectionEvents)}
}

// InsertEvent persists a single lifecycle event with its processing time.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.LifecycleEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"donationId":  event.DonationID,
		"to":          string(event.To),
		"actor":       event.Actor,
		"timestamp":   event.Timestamp.UTC(),
		"processedAt": time.Now().UTC(),
	}
	if event.From != "" {
		doc["from"] = string(event.From)
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
