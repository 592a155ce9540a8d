// internal/domain/models/collection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublicationState controls who can see and subscribe to a collection.
type PublicationState string

const (
	// StatePrivate collections are visible to the owner and editors only.
	StatePrivate PublicationState = "PRIVATE"
	// StateUnlisted collections are hidden from browse but reachable by link.
	StateUnlisted PublicationState = "UNLISTED"
	// StatePublished collections appear in the public workshop listing.
	StatePublished PublicationState = "PUBLISHED"
)

// Valid reports whether s is one of the three known publication states.
func (s PublicationState) Valid() bool {
	switch s {
	case StatePrivate, StateUnlisted, StatePublished:
		return true
	}
	return false
}

// Collection is a user-authored bundle of aliases and snippets stored in
// the workshop_collections collection.
//
// Owner and subscriber identifiers are Discord snowflakes (int64), not
// ObjectIDs. AliasIDs holds top-level aliases only; subcommand aliases are
// referenced from their parent alias instead.
//
// NameCI holds the case/diacritic-folded form of Name and is maintained on
// every write so the browse listing can do prefix search without a text
// index.
type Collection struct {
	ID                  primitive.ObjectID   `bson:"_id" json:"id"`
	Name                string               `bson:"name" json:"name"`
	NameCI              string               `bson:"name_ci" json:"-"`
	Description         string               `bson:"description" json:"description"`
	Image               *string              `bson:"image" json:"image"`
	Owner               int64                `bson:"owner" json:"owner"`
	AliasIDs            []primitive.ObjectID `bson:"alias_ids" json:"alias_ids"`
	SnippetIDs          []primitive.ObjectID `bson:"snippet_ids" json:"snippet_ids"`
	PublishState        PublicationState     `bson:"publish_state" json:"publish_state"`
	NumSubscribers      int                  `bson:"num_subscribers" json:"num_subscribers"`
	NumGuildSubscribers int                  `bson:"num_guild_subscribers" json:"num_guild_subscribers"`
	LastEdited          time.Time            `bson:"last_edited" json:"last_edited"`
	CreatedAt           time.Time            `bson:"created_at" json:"created_at"`
	Tags                []string             `bson:"tags" json:"tags"`
}
