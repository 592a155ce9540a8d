package workshopstore_test

import (
	"errors"
	"testing"

	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/testutil"
)

func TestCollection_AddEditor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	editor := testutil.OtherUser().ID
	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Shared Work")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	if err := coll.AddEditor(ctx, editor); err != nil {
		t.Fatalf("AddEditor failed: %v", err)
	}

	ok, err := coll.IsEditor(ctx, editor)
	if err != nil {
		t.Fatalf("IsEditor failed: %v", err)
	}
	if !ok {
		t.Error("expected IsEditor true after grant")
	}

	ids, err := coll.EditorIDs(ctx)
	if err != nil {
		t.Fatalf("EditorIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != editor {
		t.Errorf("EditorIDs: got %v, want [%d]", ids, editor)
	}
}

func TestCollection_AddEditor_Owner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.DefaultUser().ID
	seeded := f.CreateCollection(ctx, owner, "Mine")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	err = coll.AddEditor(ctx, owner)
	if !workshopstore.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError granting the owner, got %v", err)
	}
	if err.Error() != "The owner already has edit access." {
		t.Errorf("unexpected refusal message: %q", err.Error())
	}
}

func TestCollection_AddEditor_Twice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	editor := testutil.OtherUser().ID
	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Crowded")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	if err := coll.AddEditor(ctx, editor); err != nil {
		t.Fatalf("first AddEditor failed: %v", err)
	}
	err = coll.AddEditor(ctx, editor)
	if !workshopstore.IsNotAllowed(err) {
		t.Fatalf("expected NotAllowedError on repeat grant, got %v", err)
	}
	if err.Error() != "This user is already an editor." {
		t.Errorf("unexpected refusal message: %q", err.Error())
	}
}

func TestCollection_RemoveEditor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	editor := testutil.OtherUser().ID
	seeded := f.CreateCollection(ctx, testutil.DefaultUser().ID, "Revolving")
	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	if err := coll.AddEditor(ctx, editor); err != nil {
		t.Fatalf("AddEditor failed: %v", err)
	}
	if err := coll.RemoveEditor(ctx, editor); err != nil {
		t.Fatalf("RemoveEditor failed: %v", err)
	}

	ok, err := coll.IsEditor(ctx, editor)
	if err != nil {
		t.Fatalf("IsEditor failed: %v", err)
	}
	if ok {
		t.Error("expected IsEditor false after revoke")
	}

	// Revoking a grant that does not exist is an error, unlike Unsubscribe.
	if err := coll.RemoveEditor(ctx, editor); !errors.Is(err, workshopstore.ErrSubscriptionNotFound) {
		t.Errorf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

func TestCollection_CanEdit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := workshopstore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := testutil.DefaultUser().ID
	editor := testutil.OtherUser().ID
	stranger := int64(184800000000000099)

	seeded := f.CreateCollection(ctx, owner, "Walled Garden")
	f.CreateEditor(ctx, editor, seeded.ID)

	coll, err := store.CollectionByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("CollectionByID failed: %v", err)
	}

	cases := []struct {
		name string
		user int64
		want bool
	}{
		{"owner", owner, true},
		{"editor", editor, true},
		{"stranger", stranger, false},
	}
	for _, tc := range cases {
		got, err := coll.CanEdit(ctx, tc.user)
		if err != nil {
			t.Fatalf("CanEdit(%s) failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("CanEdit(%s): got %v, want %v", tc.name, got, tc.want)
		}
	}
}
