// internal/app/store/workshop/snippet.go
package workshopstore

import (
	"context"

	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Snippet wraps a snippet document with its store. The parent collection
// loads lazily, the same way Alias does it.
type Snippet struct {
	models.Snippet

	store            *Store
	collection       *Collection
	collectionLoaded bool
}

// Collection returns the loaded parent collection. Returns a
// NotLoadedError until LoadCollection has run.
func (sn *Snippet) Collection() (*Collection, error) {
	if !sn.collectionLoaded {
		return nil, &NotLoadedError{Relation: "collection", LoadMethod: "LoadCollection"}
	}
	return sn.collection, nil
}

// LoadCollection fetches and caches the snippet's parent collection.
func (sn *Snippet) LoadCollection(ctx context.Context) (*Collection, error) {
	if sn.collectionLoaded {
		return sn.collection, nil
	}
	c, err := sn.store.CollectionByID(ctx, sn.CollectionID)
	if err != nil {
		return nil, err
	}
	sn.collection = c
	sn.collectionLoaded = true
	return c, nil
}

// SetCode appends a new code version and makes it current.
func (sn *Snippet) SetCode(ctx context.Context, code string) (models.CodeVersion, error) {
	return setCode(ctx, sn.store.snippets, &sn.Collectable, code)
}

// SetDocs replaces the snippet's documentation.
func (sn *Snippet) SetDocs(ctx context.Context, docs string) error {
	return setDocs(ctx, sn.store.snippets, &sn.Collectable, docs)
}

// AddEntitlement attaches an entitlement requirement to the snippet.
func (sn *Snippet) AddEntitlement(ctx context.Context, ent models.RequiredEntitlement) error {
	return addEntitlement(ctx, sn.store.snippets, &sn.Collectable, ent)
}

// RemoveEntitlement detaches an entitlement requirement from the snippet.
func (sn *Snippet) RemoveEntitlement(ctx context.Context, entityType string, entityID int64) error {
	return removeEntitlement(ctx, sn.store.snippets, &sn.Collectable, entityType, entityID)
}

// CreateSnippet adds a new empty snippet to the collection and registers
// it in SnippetIDs. Snippet names need at least two characters so they
// cannot collide with single-character argument shorthand.
func (c *Collection) CreateSnippet(ctx context.Context, name string) (*Snippet, error) {
	if err := validateCollectableName(name, 2); err != nil {
		return nil, err
	}
	doc := models.Snippet{
		Collectable: newCollectable(name, c.ID),
	}
	if _, err := c.store.snippets.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$push": bson.M{"snippet_ids": doc.ID},
	}); err != nil {
		return nil, err
	}
	c.SnippetIDs = append(c.SnippetIDs, doc.ID)

	sn := &Snippet{Snippet: doc, store: c.store}
	sn.collection = c
	sn.collectionLoaded = true
	if c.snippetsLoaded {
		c.snippets = append(c.snippets, sn)
	}
	return sn, nil
}

// Delete removes the snippet and its reference from the collection.
// Subscriber bindings are left alone; reconciliation drops them on the
// next binding update.
func (sn *Snippet) Delete(ctx context.Context) error {
	if _, err := sn.store.collections.UpdateByID(ctx, sn.CollectionID, bson.M{
		"$pull": bson.M{"snippet_ids": sn.ID},
	}); err != nil {
		return err
	}
	_, err := sn.store.snippets.DeleteOne(ctx, bson.M{"_id": sn.ID})
	return err
}
