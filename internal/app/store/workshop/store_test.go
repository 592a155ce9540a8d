package workshopstore_test

import (
	"errors"
	"testing"

	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/scripthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateCollection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.DefaultUser().ID
	coll, err := store.CreateCollection(ctx, owner, "Dice Tools", "Handy dice things", nil)
	if err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}

	if coll.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if coll.Owner != owner {
		t.Errorf("Owner: got %d, want %d", coll.Owner, owner)
	}
	if coll.PublishState != models.StatePrivate {
		t.Errorf("expected new collection to be PRIVATE, got %q", coll.PublishState)
	}
	if coll.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if coll.AliasIDs == nil || coll.SnippetIDs == nil {
		t.Error("expected membership slices to be empty, not nil")
	}
	if len(coll.AliasIDs) != 0 || len(coll.SnippetIDs) != 0 {
		t.Error("expected a fresh collection to have no members")
	}
	if coll.NumSubscribers != 0 || coll.NumGuildSubscribers != 0 {
		t.Error("expected subscriber counters to start at zero")
	}
	if coll.CreatedAt.IsZero() || coll.LastEdited.IsZero() {
		t.Error("expected timestamps to be set")
	}

	// The document must be fetchable again.
	found, err := store.CollectionByID(ctx, coll.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if found.Name != "Dice Tools" {
		t.Errorf("Name: got %q, want %q", found.Name, "Dice Tools")
	}
}

func TestStore_CreateCollection_InvalidName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.DefaultUser().ID

	if _, err := store.CreateCollection(ctx, owner, "", "desc", nil); !errors.Is(err, workshopstore.ErrInvalidName) {
		t.Errorf("empty name: expected ErrInvalidName, got %v", err)
	}

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := store.CreateCollection(ctx, owner, string(long), "desc", nil); !errors.Is(err, workshopstore.ErrInvalidName) {
		t.Errorf("101-char name: expected ErrInvalidName, got %v", err)
	}
}

func TestStore_CollectionByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.CollectionByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, workshopstore.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if !workshopstore.IsNotFound(err) {
		t.Error("expected IsNotFound to report true")
	}
}

func TestStore_AliasByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.AliasByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, workshopstore.ErrCollectableNotFound) {
		t.Errorf("expected ErrCollectableNotFound, got %v", err)
	}
}

func TestStore_SnippetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.SnippetByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, workshopstore.ErrCollectableNotFound) {
		t.Errorf("expected ErrCollectableNotFound, got %v", err)
	}
}

func TestStore_UserOwnedIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.DefaultUser().ID
	other := testutil.OtherUser().ID

	mine1 := f.CreateCollection(ctx, owner, "Mine One")
	mine2 := f.CreateCollection(ctx, owner, "Mine Two")
	f.CreateCollection(ctx, other, "Not Mine")

	ids, err := store.UserOwnedIDs(ctx, owner)
	if err != nil {
		t.Fatalf("UserOwnedIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 owned collections, got %d", len(ids))
	}

	want := map[primitive.ObjectID]bool{mine1.ID: true, mine2.ID: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected collection ID %s in owned list", id.Hex())
		}
	}
}

func TestStore_UserSubscribed_SkipsDanglingSubscriptions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.DefaultUser().ID
	alive := f.CreatePublishedCollection(ctx, testutil.OtherUser().ID, "Still Here")

	f.CreateUserSubscription(ctx, user, alive.ID)
	// A subscription whose target collection no longer exists.
	f.CreateUserSubscription(ctx, user, primitive.NewObjectID())

	colls, err := store.UserSubscribed(ctx, user)
	if err != nil {
		t.Fatalf("UserSubscribed failed: %v", err)
	}
	if len(colls) != 1 {
		t.Fatalf("expected 1 resolved collection, got %d", len(colls))
	}
	if colls[0].ID != alive.ID {
		t.Errorf("expected collection %s, got %s", alive.ID.Hex(), colls[0].ID.Hex())
	}

	// The dangling document itself is left in place.
	ids, err := store.SubscribedIDs(ctx, user)
	if err != nil {
		t.Fatalf("SubscribedIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 raw subscription IDs, got %d", len(ids))
	}
}

func TestStore_ServerSubscribed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	guildID := int64(297000000000000001)
	coll := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Guild Pack")
	f.CreateServerActivation(ctx, guildID, coll.ID)

	colls, err := store.ServerSubscribed(ctx, guildID)
	if err != nil {
		t.Fatalf("ServerSubscribed failed: %v", err)
	}
	if len(colls) != 1 {
		t.Fatalf("expected 1 active collection, got %d", len(colls))
	}
	if colls[0].ID != coll.ID {
		t.Errorf("expected collection %s, got %s", coll.ID.Hex(), colls[0].ID.Hex())
	}
}

func TestStore_CollectionByID_DoesNotLoadMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Lazy")
	f.CreateAlias(ctx, seeded.ID, "roll")

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	// Membership IDs ride the document; the resolved members do not.
	if len(coll.AliasIDs) != 1 {
		t.Fatalf("expected 1 alias ID on the document, got %d", len(coll.AliasIDs))
	}
	if _, err := coll.Aliases(); !workshopstore.IsNotLoaded(err) {
		t.Errorf("expected NotLoadedError before LoadAliases, got %v", err)
	}
	if _, err := coll.Snippets(); !workshopstore.IsNotLoaded(err) {
		t.Errorf("expected NotLoadedError before LoadSnippets, got %v", err)
	}

	// After loading, the accessor serves the cached members.
	if _, err := coll.LoadAliases(ctx); err != nil {
		t.Fatalf("LoadAliases failed: %v", err)
	}
	aliases, err := coll.Aliases()
	if err != nil {
		t.Fatalf("Aliases after load failed: %v", err)
	}
	if len(aliases) != 1 || aliases[0].Name != "roll" {
		t.Errorf("expected loaded alias 'roll', got %+v", aliases)
	}
}

func TestStore_LoadAliases_DanglingReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Broken")
	alias := f.CreateAlias(ctx, seeded.ID, "ghost")

	// Remove the alias document but leave the membership reference.
	if _, err := db.Collection("workshop_aliases").DeleteOne(ctx, bson.M{"_id": alias.ID}); err != nil {
		t.Fatalf("failed to delete alias doc: %v", err)
	}

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if _, err := coll.LoadAliases(ctx); !errors.Is(err, workshopstore.ErrCollectableNotFound) {
		t.Errorf("expected ErrCollectableNotFound for dangling reference, got %v", err)
	}
}

func TestStore_ReconcileSubscriberCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Raw fixture subscriptions never touch the cached counters, so this
	// collection starts drifted: two subscription docs, counters at zero.
	drifted := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Drifted")
	f.CreateUserSubscription(ctx, testutil.OtherUser().ID, drifted.ID)
	f.CreateServerActivation(ctx, 777000000000000001, drifted.ID)

	honest := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Honest")

	fixed, err := store.ReconcileSubscriberCounts(ctx)
	if err != nil {
		t.Fatalf("ReconcileSubscriberCounts failed: %v", err)
	}
	if fixed != 1 {
		t.Errorf("fixed: got %d, want 1", fixed)
	}

	got, err := store.CollectionByID(ctx, drifted.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if got.NumSubscribers != 1 {
		t.Errorf("NumSubscribers: got %d, want 1", got.NumSubscribers)
	}
	if got.NumGuildSubscribers != 1 {
		t.Errorf("NumGuildSubscribers: got %d, want 1", got.NumGuildSubscribers)
	}

	other, err := store.CollectionByID(ctx, honest.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if other.NumSubscribers != 0 || other.NumGuildSubscribers != 0 {
		t.Errorf("expected untouched counters on honest collection, got %d/%d",
			other.NumSubscribers, other.NumGuildSubscribers)
	}

	// A second pass finds nothing to correct.
	fixed, err = store.ReconcileSubscriberCounts(ctx)
	if err != nil {
		t.Fatalf("ReconcileSubscriberCounts failed: %v", err)
	}
	if fixed != 0 {
		t.Errorf("fixed on second pass: got %d, want 0", fixed)
	}
}
