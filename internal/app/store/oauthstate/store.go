// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// State is a pending OAuth login attempt. Each state value is single-use:
// Validate consumes it. A TTL index on expires_at reaps attempts that
// never complete.
type State struct {
	State     string    `bson:"state"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store persists OAuth state values in the oauth_states collection so
// login flows survive server restarts and work across replicas.
type Store struct {
	c *mongo.Collection
}

// New creates an OAuth state store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

// Save stores a state value with its return URL and expiry.
func (s *Store) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	doc := State{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, doc)
	return err
}

// Validate consumes a state value. Returns the stored return URL and true
// when the state exists and has not expired. The document is deleted on a
// hit, so a state can never be replayed.
func (s *Store) Validate(ctx context.Context, state string) (string, bool, error) {
	var doc State
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", false, nil
		}
		return "", false, err
	}
	return doc.ReturnURL, true, nil
}

// CleanupExpired removes expired states. The TTL index normally handles
// this; the sweep covers deployments where TTL monitors lag or are
// disabled.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
