// internal/domain/models/subscription.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Binding maps one collectable to the name a subscriber invokes it by.
// Subscribers may rename bindings to resolve clashes between collections.
type Binding struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Subscription links a subscriber to a collection in the
// workshop_subscriptions collection. Type is one of "subscribe" (a user
// subscription), "server_active" (a guild activation), or "editor" (an
// editor grant); SubscriberID is a user snowflake for "subscribe" and
// "editor" documents and a guild snowflake for "server_active" documents.
//
// Binding slices are meaningful for "subscribe" and "server_active"
// documents only and are reconciled against the collection's current
// membership before every read or rename.
type Subscription struct {
	ID              primitive.ObjectID `bson:"_id" json:"-"`
	Type            string             `bson:"type" json:"type"`
	SubscriberID    int64              `bson:"subscriber_id" json:"subscriber_id"`
	ObjectID        primitive.ObjectID `bson:"object_id" json:"object_id"`
	AliasBindings   []Binding          `bson:"alias_bindings,omitempty" json:"alias_bindings,omitempty"`
	SnippetBindings []Binding          `bson:"snippet_bindings,omitempty" json:"snippet_bindings,omitempty"`
}
