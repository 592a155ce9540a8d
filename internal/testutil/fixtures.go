package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	subscriptionstore "github.com/dalemusser/scripthub/internal/app/store/subscriptions"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCollection creates a private test collection owned by the given user.
// Returns the created collection with its generated ID.
func (f *Fixtures) CreateCollection(ctx context.Context, ownerID int64, name string) models.Collection {
	f.t.Helper()
	return f.CreateCollectionWithState(ctx, ownerID, name, models.StatePrivate)
}

// CreateCollectionWithState creates a test collection in the given
// publication state.
func (f *Fixtures) CreateCollectionWithState(ctx context.Context, ownerID int64, name string, state models.PublicationState) models.Collection {
	f.t.Helper()

	now := time.Now().UTC()
	coll := models.Collection{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "Test collection description",
		Owner:        ownerID,
		AliasIDs:     []primitive.ObjectID{},
		SnippetIDs:   []primitive.ObjectID{},
		PublishState: state,
		Tags:         []string{},
		LastEdited:   now,
		CreatedAt:    now,
	}

	_, err := f.db.Collection("workshop_collections").InsertOne(ctx, coll)
	if err != nil {
		f.t.Fatalf("failed to create test collection: %v", err)
	}

	return coll
}

// CreatePublishedCollection creates a test collection in the PUBLISHED state.
func (f *Fixtures) CreatePublishedCollection(ctx context.Context, ownerID int64, name string) models.Collection {
	f.t.Helper()
	return f.CreateCollectionWithState(ctx, ownerID, name, models.StatePublished)
}

// CreateAlias creates a top-level test alias in the given collection and
// links it into the collection's alias list.
func (f *Fixtures) CreateAlias(ctx context.Context, collectionID primitive.ObjectID, name string) models.Alias {
	f.t.Helper()

	alias := models.Alias{
		Collectable: models.Collectable{
			ID:           primitive.NewObjectID(),
			Name:         name,
			Code:         "",
			Versions:     []models.CodeVersion{},
			Docs:         "",
			Entitlements: []models.RequiredEntitlement{},
			CollectionID: collectionID,
		},
		SubcommandIDs: []primitive.ObjectID{},
	}

	if _, err := f.db.Collection("workshop_aliases").InsertOne(ctx, alias); err != nil {
		f.t.Fatalf("failed to create test alias: %v", err)
	}
	_, err := f.db.Collection("workshop_collections").UpdateByID(ctx, collectionID,
		bson.M{"$push": bson.M{"alias_ids": alias.ID}})
	if err != nil {
		f.t.Fatalf("failed to link test alias to collection: %v", err)
	}

	return alias
}

// CreateSubAlias creates a test subcommand under the given parent alias and
// links it into the parent's subcommand list.
func (f *Fixtures) CreateSubAlias(ctx context.Context, parent models.Alias, name string) models.Alias {
	f.t.Helper()

	sub := models.Alias{
		Collectable: models.Collectable{
			ID:           primitive.NewObjectID(),
			Name:         name,
			Code:         "",
			Versions:     []models.CodeVersion{},
			Docs:         "",
			Entitlements: []models.RequiredEntitlement{},
			CollectionID: parent.CollectionID,
		},
		SubcommandIDs: []primitive.ObjectID{},
		ParentID:      &parent.ID,
	}

	if _, err := f.db.Collection("workshop_aliases").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test subcommand: %v", err)
	}
	_, err := f.db.Collection("workshop_aliases").UpdateByID(ctx, parent.ID,
		bson.M{"$push": bson.M{"subcommand_ids": sub.ID}})
	if err != nil {
		f.t.Fatalf("failed to link test subcommand to parent: %v", err)
	}

	return sub
}

// CreateSnippet creates a test snippet in the given collection and links it
// into the collection's snippet list.
func (f *Fixtures) CreateSnippet(ctx context.Context, collectionID primitive.ObjectID, name string) models.Snippet {
	f.t.Helper()

	snippet := models.Snippet{
		Collectable: models.Collectable{
			ID:           primitive.NewObjectID(),
			Name:         name,
			Code:         "",
			Versions:     []models.CodeVersion{},
			Docs:         "",
			Entitlements: []models.RequiredEntitlement{},
			CollectionID: collectionID,
		},
	}

	if _, err := f.db.Collection("workshop_snippets").InsertOne(ctx, snippet); err != nil {
		f.t.Fatalf("failed to create test snippet: %v", err)
	}
	_, err := f.db.Collection("workshop_collections").UpdateByID(ctx, collectionID,
		bson.M{"$push": bson.M{"snippet_ids": snippet.ID}})
	if err != nil {
		f.t.Fatalf("failed to link test snippet to collection: %v", err)
	}

	return snippet
}

// CreateSubscription creates a raw subscription record of the given type.
// Most tests should go through the workshop store's subscribe methods; this
// is for seeding states the store would refuse to create.
func (f *Fixtures) CreateSubscription(ctx context.Context, subType string, subscriberID int64, objectID primitive.ObjectID) models.Subscription {
	f.t.Helper()

	sub := models.Subscription{
		ID:           primitive.NewObjectID(),
		Type:         subType,
		SubscriberID: subscriberID,
		ObjectID:     objectID,
	}

	if _, err := f.db.Collection("workshop_subscriptions").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test subscription: %v", err)
	}

	return sub
}

// CreateUserSubscription creates a personal subscription record for a user.
func (f *Fixtures) CreateUserSubscription(ctx context.Context, userID int64, collectionID primitive.ObjectID) models.Subscription {
	f.t.Helper()
	return f.CreateSubscription(ctx, subscriptionstore.TypeSubscribe, userID, collectionID)
}

// CreateServerActivation creates a guild activation record for a guild.
func (f *Fixtures) CreateServerActivation(ctx context.Context, guildID int64, collectionID primitive.ObjectID) models.Subscription {
	f.t.Helper()
	return f.CreateSubscription(ctx, subscriptionstore.TypeServerActive, guildID, collectionID)
}

// CreateEditor creates an editor grant record for a user on a collection.
func (f *Fixtures) CreateEditor(ctx context.Context, userID int64, collectionID primitive.ObjectID) models.Subscription {
	f.t.Helper()
	return f.CreateSubscription(ctx, subscriptionstore.TypeEditor, userID, collectionID)
}
