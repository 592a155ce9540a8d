// internal/app/store/tokens/store.go
package tokenstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost for secret hashing. 10 keeps verification around 50ms.
	BcryptCost = 10

	// tokenPrefix marks ScriptHub API tokens so leaked-credential
	// scanners can recognize them.
	tokenPrefix = "sh"
)

var (
	ErrNotFound      = errors.New("api token not found")
	ErrRevoked       = errors.New("api token revoked")
	ErrInvalidSecret = errors.New("api token secret mismatch")
	ErrMalformed     = errors.New("malformed api token")
)

// Token is an API credential for the bot surface. The secret is stored
// only as a bcrypt hash; the plaintext form "sh_<token_id>_<secret>" is
// shown once at issue time.
type Token struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     int64              `bson:"user_id" json:"user_id"`
	Name       string             `bson:"name" json:"name"`
	TokenID    string             `bson:"token_id" json:"token_id"`
	SecretHash string             `bson:"secret_hash" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	LastUsedAt *time.Time         `bson:"last_used_at,omitempty" json:"last_used_at,omitempty"`
	Revoked    bool               `bson:"revoked" json:"revoked"`
}

// Store manages API tokens in the api_tokens collection.
type Store struct {
	c *mongo.Collection
}

// New creates a token store backed by the given database.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("api_tokens")}
}

// Issue mints a new token for userID and returns the plaintext form along
// with the stored record. The plaintext cannot be recovered later.
func (s *Store) Issue(ctx context.Context, userID int64, name string) (string, Token, error) {
	tokenID := uuid.NewString()
	secret := generateSecret()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", Token{}, fmt.Errorf("hash token secret: %w", err)
	}

	tok := Token{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Name:       name,
		TokenID:    tokenID,
		SecretHash: string(hash),
		CreatedAt:  time.Now().UTC(),
		Revoked:    false,
	}
	if _, err := s.c.InsertOne(ctx, tok); err != nil {
		return "", Token{}, err
	}

	plaintext := fmt.Sprintf("%s_%s_%s", tokenPrefix, tokenID, secret)
	return plaintext, tok, nil
}

// Verify checks a plaintext token and returns its record. Returns
// ErrMalformed for strings that do not look like a token, ErrNotFound for
// unknown token IDs, ErrRevoked for revoked tokens, and ErrInvalidSecret
// when the secret does not match. Successful verification stamps
// last_used_at best-effort.
func (s *Store) Verify(ctx context.Context, plaintext string) (Token, error) {
	parts := strings.SplitN(plaintext, "_", 3)
	if len(parts) != 3 || parts[0] != tokenPrefix || parts[1] == "" || parts[2] == "" {
		return Token{}, ErrMalformed
	}
	tokenID, secret := parts[1], parts[2]

	var tok Token
	err := s.c.FindOne(ctx, bson.M{"token_id": tokenID}).Decode(&tok)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	if tok.Revoked {
		return Token{}, ErrRevoked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(tok.SecretHash), []byte(secret)); err != nil {
		return Token{}, ErrInvalidSecret
	}

	now := time.Now().UTC()
	_, _ = s.c.UpdateByID(ctx, tok.ID, bson.M{"$set": bson.M{"last_used_at": now}})
	tok.LastUsedAt = &now
	return tok, nil
}

// ListByUser returns all of userID's tokens, newest first, revoked ones
// included.
func (s *Store) ListByUser(ctx context.Context, userID int64) ([]Token, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Token
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Revoke marks the token with the given ID revoked, scoped to its owner.
// Returns ErrNotFound when userID owns no such token.
func (s *Store) Revoke(ctx context.Context, id primitive.ObjectID, userID int64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// generateSecret returns 32 random bytes hex-encoded. Panics if the
// system random source fails.
func generateSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate token secret: %v", err))
	}
	return hex.EncodeToString(b)
}
