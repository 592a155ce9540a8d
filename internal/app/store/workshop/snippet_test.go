package workshopstore_test

import (
	"errors"
	"testing"

	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollection_CreateSnippet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Texts")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	snippet, err := coll.CreateSnippet(ctx, "greeting")
	if err != nil {
		t.Fatalf("CreateSnippet failed: %v", err)
	}
	if snippet.Name != "greeting" {
		t.Errorf("Name: got %q, want %q", snippet.Name, "greeting")
	}
	if snippet.Code != "" || len(snippet.Versions) != 0 {
		t.Error("expected a fresh snippet to have no code or versions")
	}
	if _, err := snippet.Collection(); err != nil {
		t.Errorf("expected collection attached after CreateSnippet, got %v", err)
	}

	reread, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if len(reread.SnippetIDs) != 1 || reread.SnippetIDs[0] != snippet.ID {
		t.Error("expected snippet registered in the stored membership list")
	}
}

func TestCollection_CreateSnippet_RejectsSingleCharacterName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Strict")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	// One character collides with argument shorthand; two is the floor.
	if _, err := coll.CreateSnippet(ctx, "g"); !errors.Is(err, workshopstore.ErrInvalidName) {
		t.Errorf("single-char name: expected ErrInvalidName, got %v", err)
	}
	if _, err := coll.CreateSnippet(ctx, "gg"); err != nil {
		t.Errorf("two-char name: expected success, got %v", err)
	}
}

func TestSnippet_SetCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Coded")
	snippetDoc := f.CreateSnippet(ctx, seeded.ID, "adv")

	snippet, err := store.SnippetByID(ctx, snippetDoc.ID)
	if err != nil {
		t.Fatalf("SnippetByID failed: %v", err)
	}
	cv, err := snippet.SetCode(ctx, "kh1")
	if err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	if cv.Version != 1 || !cv.IsCurrent {
		t.Errorf("expected version 1 current, got %+v", cv)
	}

	reread, err := store.SnippetByID(ctx, snippetDoc.ID)
	if err != nil {
		t.Fatalf("SnippetByID failed: %v", err)
	}
	if reread.Code != "kh1" {
		t.Errorf("active code: got %q, want %q", reread.Code, "kh1")
	}
	if len(reread.Versions) != 1 {
		t.Errorf("expected 1 version, got %d", len(reread.Versions))
	}
}

func TestSnippet_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Shrinking")
	doomed := f.CreateSnippet(ctx, seeded.ID, "doomed")
	keeper := f.CreateSnippet(ctx, seeded.ID, "keeper")

	snippet, err := store.SnippetByID(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("SnippetByID failed: %v", err)
	}
	if err := snippet.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.SnippetByID(ctx, doomed.ID); !errors.Is(err, workshopstore.ErrCollectableNotFound) {
		t.Errorf("expected snippet gone, got %v", err)
	}

	n, err := db.Collection("workshop_snippets").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 snippet doc remaining, got %d", n)
	}

	reread, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}
	if len(reread.SnippetIDs) != 1 || reread.SnippetIDs[0] != keeper.ID {
		t.Errorf("expected membership trimmed to the survivor, got %v", reread.SnippetIDs)
	}
}
