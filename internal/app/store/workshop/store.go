// internal/app/store/workshop/store.go
package workshopstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/scripthub/internal/app/store/events"
	subscriptionstore "github.com/dalemusser/scripthub/internal/app/store/subscriptions"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to workshop collections and their collectables.
// It owns the workshop_collections, workshop_aliases, and workshop_snippets
// collections and composes the subscription and analytics stores, so a
// single Store covers every workshop operation.
type Store struct {
	collections *mongo.Collection
	aliases     *mongo.Collection
	snippets    *mongo.Collection
	subs        *subscriptionstore.Store
	events      *events.Store
}

// New creates a workshop store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{
		collections: db.Collection("workshop_collections"),
		aliases:     db.Collection("workshop_aliases"),
		snippets:    db.Collection("workshop_snippets"),
		subs:        subscriptionstore.New(db),
		events:      events.New(db),
	}
}

// collectableName matches valid alias and snippet names. Collection names
// are free text and only length-checked.
var collectableName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateCollectableName(name string, minLen int) error {
	if len(name) < minLen || len(name) > 50 || !collectableName.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// CollectionByID fetches a collection document and wraps it for further
// operations. Aliases and snippets are not loaded; call LoadAliases or
// LoadSnippets before reading them. Returns ErrCollectionNotFound when no
// document has the given ID.
func (s *Store) CollectionByID(ctx context.Context, id primitive.ObjectID) (*Collection, error) {
	var doc models.Collection
	err := s.collections.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &Collection{Collection: doc, store: s}, nil
}

// CreateCollection inserts a new private collection owned by ownerID with
// no aliases, snippets, or subscribers.
func (s *Store) CreateCollection(ctx context.Context, ownerID int64, name, description string, image *string) (*Collection, error) {
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidName
	}
	now := time.Now().UTC()
	doc := models.Collection{
		ID:                  primitive.NewObjectID(),
		Name:                name,
		NameCI:              text.Fold(name),
		Description:         description,
		Image:               image,
		Owner:               ownerID,
		AliasIDs:            []primitive.ObjectID{},
		SnippetIDs:          []primitive.ObjectID{},
		PublishState:        models.StatePrivate,
		NumSubscribers:      0,
		NumGuildSubscribers: 0,
		LastEdited:          now,
		CreatedAt:           now,
		Tags:                []string{},
	}
	if _, err := s.collections.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return &Collection{Collection: doc, store: s}, nil
}

// AliasByID fetches an alias document and wraps it. The parent collection,
// parent alias, and subcommands are left unloaded. Returns
// ErrCollectableNotFound when no document has the given ID.
func (s *Store) AliasByID(ctx context.Context, id primitive.ObjectID) (*Alias, error) {
	var doc models.Alias
	err := s.aliases.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCollectableNotFound
		}
		return nil, err
	}
	return &Alias{Alias: doc, store: s}, nil
}

// SnippetByID fetches a snippet document and wraps it. The parent
// collection is left unloaded. Returns ErrCollectableNotFound when no
// document has the given ID.
func (s *Store) SnippetByID(ctx context.Context, id primitive.ObjectID) (*Snippet, error) {
	var doc models.Snippet
	err := s.snippets.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCollectableNotFound
		}
		return nil, err
	}
	return &Snippet{Snippet: doc, store: s}, nil
}

// UserOwnedIDs returns the IDs of every collection owned by userID.
func (s *Store) UserOwnedIDs(ctx context.Context, userID int64) ([]primitive.ObjectID, error) {
	cur, err := s.collections.Find(ctx, bson.M{"owner": userID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// SubscribedIDs returns the IDs of every collection userID is subscribed
// to, including collections that no longer exist.
func (s *Store) SubscribedIDs(ctx context.Context, userID int64) ([]primitive.ObjectID, error) {
	return s.subs.ObjectIDs(ctx, subscriptionstore.TypeSubscribe, userID)
}

// ServerActiveIDs returns the IDs of every collection active on guildID,
// including collections that no longer exist.
func (s *Store) ServerActiveIDs(ctx context.Context, guildID int64) ([]primitive.ObjectID, error) {
	return s.subs.ObjectIDs(ctx, subscriptionstore.TypeServerActive, guildID)
}

// UserSubscribed resolves userID's subscriptions to collections. Dangling
// subscriptions pointing at deleted collections are skipped, not errors.
func (s *Store) UserSubscribed(ctx context.Context, userID int64) ([]*Collection, error) {
	ids, err := s.SubscribedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, ids)
}

// ServerSubscribed resolves guildID's active collections. Dangling
// activations pointing at deleted collections are skipped, not errors.
func (s *Store) ServerSubscribed(ctx context.Context, guildID int64) ([]*Collection, error) {
	ids, err := s.ServerActiveIDs(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return s.resolveAll(ctx, ids)
}

func (s *Store) resolveAll(ctx context.Context, ids []primitive.ObjectID) ([]*Collection, error) {
	out := make([]*Collection, 0, len(ids))
	for _, id := range ids {
		c, err := s.CollectionByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrCollectionNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ReconcileSubscriberCounts recounts subscription documents for every
// collection and rewrites cached num_subscribers and num_guild_subscribers
// counters that have drifted from the authoritative counts. Counter writes
// do not touch last_edited. Returns the number of collections corrected.
func (s *Store) ReconcileSubscriberCounts(ctx context.Context) (int64, error) {
	cur, err := s.collections.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"num_subscribers": 1, "num_guild_subscribers": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var fixed int64
	for cur.Next(ctx) {
		var row struct {
			ID                  primitive.ObjectID `bson:"_id"`
			NumSubscribers      int                `bson:"num_subscribers"`
			NumGuildSubscribers int                `bson:"num_guild_subscribers"`
		}
		if err := cur.Decode(&row); err != nil {
			return fixed, err
		}

		users, err := s.subs.CountByObject(ctx, subscriptionstore.TypeSubscribe, row.ID)
		if err != nil {
			return fixed, err
		}
		guilds, err := s.subs.CountByObject(ctx, subscriptionstore.TypeServerActive, row.ID)
		if err != nil {
			return fixed, err
		}
		if int64(row.NumSubscribers) == users && int64(row.NumGuildSubscribers) == guilds {
			continue
		}

		_, err = s.collections.UpdateByID(ctx, row.ID, bson.M{"$set": bson.M{
			"num_subscribers":       users,
			"num_guild_subscribers": guilds,
		}})
		if err != nil {
			return fixed, err
		}
		fixed++
	}
	return fixed, cur.Err()
}

// aliasName returns the stored name of the alias with the given ID.
func (s *Store) aliasName(ctx context.Context, id primitive.ObjectID) (string, error) {
	var row struct {
		Name string `bson:"name"`
	}
	err := s.aliases.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrCollectableNotFound
		}
		return "", err
	}
	return row.Name, nil
}

// snippetName returns the stored name of the snippet with the given ID.
func (s *Store) snippetName(ctx context.Context, id primitive.ObjectID) (string, error) {
	var row struct {
		Name string `bson:"name"`
	}
	err := s.snippets.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&row)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrCollectableNotFound
		}
		return "", err
	}
	return row.Name, nil
}
