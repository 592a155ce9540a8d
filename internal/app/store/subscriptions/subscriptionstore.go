// internal/app/store/subscriptions/subscriptionstore.go
package subscriptionstore

import (
	"context"
	"errors"

	"github.com/dalemusser/scripthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscription document types.
const (
	TypeSubscribe    = "subscribe"
	TypeServerActive = "server_active"
	TypeEditor       = "editor"
)

// ErrDuplicateSubscription is returned when a subscription with the same
// type, subscriber, and object already exists.
var ErrDuplicateSubscription = errors.New("subscription already exists")

// Store provides access to the workshop_subscriptions collection, which
// holds user subscriptions, guild activations, and editor grants as typed
// documents.
type Store struct {
	c *mongo.Collection
}

// New creates a subscription store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("workshop_subscriptions")}
}

// Get returns the subscription document for (typ, subscriberID, objectID).
// Returns mongo.ErrNoDocuments when none exists.
func (s *Store) Get(ctx context.Context, typ string, subscriberID int64, objectID primitive.ObjectID) (models.Subscription, error) {
	var sub models.Subscription
	err := s.c.FindOne(ctx, bson.M{
		"type":          typ,
		"subscriber_id": subscriberID,
		"object_id":     objectID,
	}).Decode(&sub)
	return sub, err
}

// Exists reports whether a subscription document for
// (typ, subscriberID, objectID) is present.
func (s *Store) Exists(ctx context.Context, typ string, subscriberID int64, objectID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"type":          typ,
		"subscriber_id": subscriberID,
		"object_id":     objectID,
	}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Insert stores a new subscription document. A zero sub.ID is assigned
// before insert. Returns ErrDuplicateSubscription when a document with the
// same (type, subscriber_id, object_id) already exists.
func (s *Store) Insert(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := s.c.InsertOne(ctx, sub)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Subscription{}, ErrDuplicateSubscription
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// Delete removes all subscription documents for
// (typ, subscriberID, objectID) and returns how many were removed.
func (s *Store) Delete(ctx context.Context, typ string, subscriberID int64, objectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"type":          typ,
		"subscriber_id": subscriberID,
		"object_id":     objectID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByObject removes every subscription document that points at the
// given object, regardless of type. Used when a collection is deleted.
func (s *Store) DeleteByObject(ctx context.Context, objectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"object_id": objectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ObjectIDs returns the object IDs of every subscription of the given
// type held by subscriberID, in no particular order.
func (s *Store) ObjectIDs(ctx context.Context, typ string, subscriberID int64) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"type":          typ,
		"subscriber_id": subscriberID,
	}, options.Find().SetProjection(bson.M{"object_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ObjectID primitive.ObjectID `bson:"object_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ObjectID)
	}
	return ids, cur.Err()
}

// SubscriberIDs returns the subscriber IDs of every subscription of the
// given type that points at objectID.
func (s *Store) SubscriberIDs(ctx context.Context, typ string, objectID primitive.ObjectID) ([]int64, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"type":      typ,
		"object_id": objectID,
	}, options.Find().SetProjection(bson.M{"subscriber_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []int64
	for cur.Next(ctx) {
		var row struct {
			SubscriberID int64 `bson:"subscriber_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.SubscriberID)
	}
	return ids, cur.Err()
}

// CountByObject returns the number of subscription documents of the given
// type pointing at objectID. This is the authoritative count; the cached
// counters on collection documents may drift from it.
func (s *Store) CountByObject(ctx context.Context, typ string, objectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"type": typ, "object_id": objectID})
}

// SetAliasBindings replaces the alias bindings on the subscription
// document with the given ID.
func (s *Store) SetAliasBindings(ctx context.Context, id primitive.ObjectID, bindings []models.Binding) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"alias_bindings": bindings}})
	return err
}

// SetSnippetBindings replaces the snippet bindings on the subscription
// document with the given ID.
func (s *Store) SetSnippetBindings(ctx context.Context, id primitive.ObjectID, bindings []models.Binding) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"snippet_bindings": bindings}})
	return err
}
