// internal/app/store/events/store.go
package events

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event types recorded in analytics_alias_events.
const (
	TypeSubscribe         = "subscribe"
	TypeUnsubscribe       = "unsubscribe"
	TypeServerSubscribe   = "server_subscribe"
	TypeServerUnsubscribe = "server_unsubscribe"
)

// Event is one analytics record for a workshop collection. Events feed
// popularity rankings and are never read back on the hot path.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"`
	ObjectID  primitive.ObjectID `bson:"object_id" json:"object_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Store writes and queries workshop analytics events.
type Store struct {
	c *mongo.Collection
}

// New creates an event store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("analytics_alias_events")}
}

// Log records an event of the given type against objectID. The timestamp
// is always taken at call time, in UTC.
func (s *Store) Log(ctx context.Context, eventType string, objectID primitive.ObjectID) error {
	_, err := s.c.InsertOne(ctx, Event{
		ID:        primitive.NewObjectID(),
		Type:      eventType,
		ObjectID:  objectID,
		Timestamp: time.Now().UTC(),
	})
	return err
}

// RecentByObject returns up to limit events for objectID, newest first.
func (s *Store) RecentByObject(ctx context.Context, objectID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"object_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountSince returns per-type event counts for objectID with timestamps at
// or after since.
func (s *Store) CountSince(ctx context.Context, objectID primitive.ObjectID, since time.Time) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"object_id": objectID,
			"timestamp": bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": "$type",
			"n":   bson.M{"$sum": 1},
		}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			Type string `bson:"_id"`
			N    int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Type] = row.N
	}
	return counts, cur.Err()
}
