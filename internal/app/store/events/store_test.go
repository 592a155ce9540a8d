package events_test

import (
	"testing"
	"time"

	"github.com/dalemusser/scripthub/internal/app/store/events"
	"github.com/dalemusser/scripthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := events.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	objectID := primitive.NewObjectID()
	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, events.TypeSubscribe, objectID); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	recent, err := store.RecentByObject(ctx, objectID, 10)
	if err != nil {
		t.Fatalf("RecentByObject failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 event, got %d", len(recent))
	}
	ev := recent[0]
	if ev.Type != events.TypeSubscribe {
		t.Errorf("Type: got %q, want %q", ev.Type, events.TypeSubscribe)
	}
	if ev.ObjectID != objectID {
		t.Errorf("ObjectID: got %s, want %s", ev.ObjectID.Hex(), objectID.Hex())
	}
	if ev.Timestamp.Before(before) {
		t.Errorf("expected a call-time timestamp, got %v", ev.Timestamp)
	}
}

func TestStore_RecentByObject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := events.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	objectID := primitive.NewObjectID()
	other := primitive.NewObjectID()

	types := []string{events.TypeSubscribe, events.TypeUnsubscribe, events.TypeServerSubscribe}
	for _, typ := range types {
		if err := store.Log(ctx, typ, objectID); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
		// Distinct timestamps keep the newest-first ordering observable.
		time.Sleep(2 * time.Millisecond)
	}
	if err := store.Log(ctx, events.TypeSubscribe, other); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	recent, err := store.RecentByObject(ctx, objectID, 2)
	if err != nil {
		t.Fatalf("RecentByObject failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected the limit to cap results at 2, got %d", len(recent))
	}
	if recent[0].Type != events.TypeServerSubscribe || recent[1].Type != events.TypeUnsubscribe {
		t.Errorf("expected newest first, got [%s %s]", recent[0].Type, recent[1].Type)
	}
}

func TestStore_CountSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := events.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	objectID := primitive.NewObjectID()

	// An event outside the window, seeded with an explicit old timestamp.
	stale := events.Event{
		ID:        primitive.NewObjectID(),
		Type:      events.TypeSubscribe,
		ObjectID:  objectID,
		Timestamp: time.Now().UTC().Add(-48 * time.Hour),
	}
	if _, err := db.Collection("analytics_alias_events").InsertOne(ctx, stale); err != nil {
		t.Fatalf("failed to seed stale event: %v", err)
	}

	for _, typ := range []string{events.TypeSubscribe, events.TypeSubscribe, events.TypeUnsubscribe} {
		if err := store.Log(ctx, typ, objectID); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	counts, err := store.CountSince(ctx, objectID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if counts[events.TypeSubscribe] != 2 {
		t.Errorf("subscribe count: got %d, want 2", counts[events.TypeSubscribe])
	}
	if counts[events.TypeUnsubscribe] != 1 {
		t.Errorf("unsubscribe count: got %d, want 1", counts[events.TypeUnsubscribe])
	}

	// Widening the window picks the stale event back up.
	counts, err = store.CountSince(ctx, objectID, time.Now().Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if counts[events.TypeSubscribe] != 3 {
		t.Errorf("subscribe count over 72h: got %d, want 3", counts[events.TypeSubscribe])
	}
}
