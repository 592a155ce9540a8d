package workshopstore_test

import (
	"testing"

	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/scripthub/internal/testutil"
)

func TestCollection_UpdateAliasBindings_Reconciles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subscriber := testutil.OtherUser().ID
	seeded := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Shifting")
	rollDoc := f.CreateAlias(ctx, seeded.ID, "roll")
	flipDoc := f.CreateAlias(ctx, seeded.ID, "flip")

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if err := coll.Subscribe(ctx, subscriber); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	sub, err := coll.UserSubscription(ctx, subscriber)
	if err != nil {
		t.Fatalf("UserSubscription failed: %v", err)
	}

	// The subscriber renamed roll, then the collection changed under them:
	// flip was deleted and port was added.
	sub.AliasBindings[0].Name = "r"
	flip, err := store.AliasByID(ctx, flipDoc.ID)
	if err != nil {
		t.Fatalf("AliasByID failed: %v", err)
	}
	if err := flip.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	port, err := coll.CreateAlias(ctx, "port")
	if err != nil {
		t.Fatalf("CreateAlias failed: %v", err)
	}

	// Reconcile against fresh membership.
	fresh, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	reconciled, err := fresh.UpdateAliasBindings(ctx, sub)
	if err != nil {
		t.Fatalf("UpdateAliasBindings failed: %v", err)
	}

	if len(reconciled) != 2 {
		t.Fatalf("expected 2 bindings after reconcile, got %d", len(reconciled))
	}
	if reconciled[0].ID != rollDoc.ID || reconciled[0].Name != "r" {
		t.Errorf("expected surviving binding to keep its custom name, got %+v", reconciled[0])
	}
	if reconciled[1].ID != port.ID || reconciled[1].Name != "port" {
		t.Errorf("expected new member appended with default name, got %+v", reconciled[1])
	}

	// The result is persisted on the subscription document.
	stored, err := fresh.UserSubscription(ctx, subscriber)
	if err != nil {
		t.Fatalf("UserSubscription failed: %v", err)
	}
	if len(stored.AliasBindings) != 2 || stored.AliasBindings[0].Name != "r" {
		t.Errorf("expected reconciled bindings stored, got %+v", stored.AliasBindings)
	}
}

func TestCollection_UpdateAliasBindings_PreservesBindingOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subscriber := testutil.OtherUser().ID
	seeded := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Reordered")
	for _, n := range []string{"one", "two", "three"} {
		f.CreateAlias(ctx, seeded.ID, n)
	}

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if err := coll.Subscribe(ctx, subscriber); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	sub, err := coll.UserSubscription(ctx, subscriber)
	if err != nil {
		t.Fatalf("UserSubscription failed: %v", err)
	}

	// Subscribers may order their bindings however they like; reconciling
	// against unchanged membership must not rearrange them.
	reversed := []models.Binding{sub.AliasBindings[2], sub.AliasBindings[1], sub.AliasBindings[0]}
	sub.AliasBindings = reversed

	reconciled, err := coll.UpdateAliasBindings(ctx, sub)
	if err != nil {
		t.Fatalf("UpdateAliasBindings failed: %v", err)
	}
	if len(reconciled) != 3 {
		t.Fatalf("expected 3 bindings, got %d", len(reconciled))
	}
	for i, want := range []string{"three", "two", "one"} {
		if reconciled[i].Name != want {
			t.Errorf("position %d: got %q, want %q", i, reconciled[i].Name, want)
		}
	}
}

func TestCollection_UpdateSnippetBindings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subscriber := testutil.OtherUser().ID
	seeded := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Fragments")
	f.CreateSnippet(ctx, seeded.ID, "adv")

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if err := coll.Subscribe(ctx, subscriber); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	sub, err := coll.UserSubscription(ctx, subscriber)
	if err != nil {
		t.Fatalf("UserSubscription failed: %v", err)
	}

	// A snippet added after the subscription gains a default binding.
	dis, err := coll.CreateSnippet(ctx, "dis")
	if err != nil {
		t.Fatalf("CreateSnippet failed: %v", err)
	}

	reconciled, err := coll.UpdateSnippetBindings(ctx, sub)
	if err != nil {
		t.Fatalf("UpdateSnippetBindings failed: %v", err)
	}
	if len(reconciled) != 2 {
		t.Fatalf("expected 2 snippet bindings, got %d", len(reconciled))
	}
	if reconciled[0].Name != "adv" || reconciled[1].ID != dis.ID {
		t.Errorf("unexpected reconciled bindings: %+v", reconciled)
	}
}

func TestCollection_UpdateAliasBindings_GuildActivation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	guildID := int64(297000000000000001)
	seeded := f.CreatePublishedCollection(ctx, testutil.DefaultUser().ID, "Shared")
	f.CreateAlias(ctx, seeded.ID, "roll")

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if err := coll.SetServerActive(ctx, guildID); err != nil {
		t.Fatalf("SetServerActive failed: %v", err)
	}
	sub, err := coll.GuildSubscription(ctx, guildID)
	if err != nil {
		t.Fatalf("GuildSubscription failed: %v", err)
	}

	// Guild activations reconcile through the same path as user
	// subscriptions.
	flip, err := coll.CreateAlias(ctx, "flip")
	if err != nil {
		t.Fatalf("CreateAlias failed: %v", err)
	}
	reconciled, err := coll.UpdateAliasBindings(ctx, sub)
	if err != nil {
		t.Fatalf("UpdateAliasBindings failed: %v", err)
	}
	if len(reconciled) != 2 || reconciled[1].ID != flip.ID {
		t.Errorf("expected guild bindings reconciled, got %+v", reconciled)
	}

	stored, err := coll.GuildSubscription(ctx, guildID)
	if err != nil {
		t.Fatalf("GuildSubscription failed: %v", err)
	}
	if len(stored.AliasBindings) != 2 {
		t.Errorf("expected reconciled bindings stored, got %+v", stored.AliasBindings)
	}
}
