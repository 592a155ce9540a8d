package tokenstore_test

import (
	"errors"
	"strings"
	"testing"

	tokenstore "github.com/dalemusser/scripthub/internal/app/store/tokens"
	"github.com/dalemusser/scripthub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Issue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.DefaultUser().ID
	plaintext, tok, err := store.Issue(ctx, user, "bot shard 1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if !strings.HasPrefix(plaintext, "sh_") {
		t.Errorf("expected sh_ prefix, got %q", plaintext)
	}
	if !strings.Contains(plaintext, tok.TokenID) {
		t.Error("expected the plaintext to carry the token ID")
	}
	if tok.UserID != user {
		t.Errorf("UserID: got %d, want %d", tok.UserID, user)
	}
	if tok.Name != "bot shard 1" {
		t.Errorf("Name: got %q, want %q", tok.Name, "bot shard 1")
	}
	if tok.Revoked {
		t.Error("expected a fresh token to not be revoked")
	}
	if tok.SecretHash == "" {
		t.Error("expected a secret hash stored")
	}
	if strings.Contains(plaintext, tok.SecretHash) {
		t.Error("the plaintext must not contain the stored hash")
	}

	verified, err := store.Verify(ctx, plaintext)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verified.ID != tok.ID {
		t.Errorf("verified ID: got %s, want %s", verified.ID.Hex(), tok.ID.Hex())
	}
}

func TestStore_Verify_InvalidSecret(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	plaintext, _, err := store.Issue(ctx, testutil.DefaultUser().ID, "test")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.SplitN(plaintext, "_", 3)
	forged := parts[0] + "_" + parts[1] + "_" + strings.Repeat("0", 64)
	if _, err := store.Verify(ctx, forged); !errors.Is(err, tokenstore.ErrInvalidSecret) {
		t.Errorf("expected ErrInvalidSecret, got %v", err)
	}
}

func TestStore_Verify_UnknownTokenID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Verify(ctx, "sh_no-such-token_deadbeef")
	if !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Verify_Malformed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []string{
		"",
		"garbage",
		"sh_missing-secret",
		"sh__secret",
		"sh_id_",
		"xx_id_secret",
	}
	for _, plaintext := range cases {
		if _, err := store.Verify(ctx, plaintext); !errors.Is(err, tokenstore.ErrMalformed) {
			t.Errorf("%q: expected ErrMalformed, got %v", plaintext, err)
		}
	}
}

func TestStore_Verify_Revoked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.DefaultUser().ID
	plaintext, tok, err := store.Issue(ctx, user, "short lived")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := store.Revoke(ctx, tok.ID, user); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if _, err := store.Verify(ctx, plaintext); !errors.Is(err, tokenstore.ErrRevoked) {
		t.Errorf("expected ErrRevoked, got %v", err)
	}
}

func TestStore_Verify_StampsLastUsed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.DefaultUser().ID
	plaintext, tok, err := store.Issue(ctx, user, "tracked")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if tok.LastUsedAt != nil {
		t.Error("expected a fresh token to have no last_used_at")
	}

	if _, err := store.Verify(ctx, plaintext); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	listed, err := store.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 token, got %d", len(listed))
	}
	if listed[0].LastUsedAt == nil {
		t.Error("expected last_used_at stamped after verification")
	}
}

func TestStore_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.DefaultUser().ID
	other := testutil.OtherUser().ID

	if _, _, err := store.Issue(ctx, user, "first"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_, second, err := store.Issue(ctx, user, "second")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := store.Issue(ctx, other, "not mine"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	// Revoked tokens stay listed so users can see their full history.
	if err := store.Revoke(ctx, second.ID, user); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	listed, err := store.ListByUser(ctx, user)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(listed))
	}
	if listed[0].Name != "second" || listed[1].Name != "first" {
		t.Errorf("expected newest first, got [%s %s]", listed[0].Name, listed[1].Name)
	}
	if !listed[0].Revoked {
		t.Error("expected the revoked token to stay listed")
	}
}

func TestStore_Revoke_WrongUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tokenstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, tok, err := store.Issue(ctx, testutil.DefaultUser().ID, "guarded")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Revocation is scoped to the owner.
	if err := store.Revoke(ctx, tok.ID, testutil.OtherUser().ID); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's token, got %v", err)
	}
	if err := store.Revoke(ctx, primitive.NewObjectID(), testutil.DefaultUser().ID); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for an unknown ID, got %v", err)
	}
}
