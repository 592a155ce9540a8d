// internal/domain/models/collectable.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CodeVersion is one entry in a collectable's version history. Exactly one
// version per collectable has IsCurrent set; its Content mirrors the
// collectable's Code field.
type CodeVersion struct {
	Version   int       `bson:"version" json:"version"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	IsCurrent bool      `bson:"is_current" json:"is_current"`
}

// RequiredEntitlement gates execution of a collectable on ownership of an
// external entity (for example a licensed sourcebook). Entries with
// Required set were attached by content checks and cannot be removed by
// the author.
type RequiredEntitlement struct {
	EntityType string `bson:"entity_type" json:"entity_type"`
	EntityID   int64  `bson:"entity_id" json:"entity_id"`
	Required   bool   `bson:"required" json:"required"`
}

// Collectable holds the fields shared by aliases and snippets: the active
// code, its version history, documentation, and entitlement requirements.
// It is embedded inline in Alias and Snippet documents.
type Collectable struct {
	ID           primitive.ObjectID    `bson:"_id" json:"id"`
	Name         string                `bson:"name" json:"name"`
	Code         string                `bson:"code" json:"code"`
	Versions     []CodeVersion         `bson:"versions" json:"versions"`
	Docs         string                `bson:"docs" json:"docs"`
	Entitlements []RequiredEntitlement `bson:"entitlements" json:"entitlements"`
	CollectionID primitive.ObjectID    `bson:"collection_id" json:"collection_id"`
}

// ShortDocs returns the first line of Docs, or Docs itself when it has no
// newline.
func (c Collectable) ShortDocs() string {
	if i := strings.IndexByte(c.Docs, '\n'); i >= 0 {
		return c.Docs[:i]
	}
	return c.Docs
}

// GroupedEntitlements groups entitlement entity IDs by entity type.
// IDs keep their stored order within each type; types with no entries
// are absent from the map.
func (c Collectable) GroupedEntitlements() map[string][]int64 {
	out := make(map[string][]int64)
	for _, e := range c.Entitlements {
		out[e.EntityType] = append(out[e.EntityType], e.EntityID)
	}
	return out
}

// Alias is an invocable workshop command stored in the workshop_aliases
// collection. Top-level aliases have a nil ParentID and are referenced
// from their collection's AliasIDs; subcommands have ParentID set and are
// referenced from the parent's SubcommandIDs.
type Alias struct {
	Collectable   `bson:",inline"`
	SubcommandIDs []primitive.ObjectID `bson:"subcommand_ids" json:"subcommand_ids"`
	ParentID      *primitive.ObjectID  `bson:"parent_id" json:"parent_id"`
}

// Snippet is a reusable argument fragment stored in the workshop_snippets
// collection.
type Snippet struct {
	Collectable `bson:",inline"`
}
