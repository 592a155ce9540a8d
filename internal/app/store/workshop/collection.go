// internal/app/store/workshop/collection.go
package workshopstore

import (
	"context"

	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection wraps a collection document with its store so callers can
// run further operations without threading the store around. Aliases and
// snippets load lazily; accessors return a NotLoadedError until the
// matching Load method has run.
type Collection struct {
	models.Collection

	store          *Store
	aliases        []*Alias
	aliasesLoaded  bool
	snippets       []*Snippet
	snippetsLoaded bool
}

// IsOwner reports whether userID owns this collection.
func (c *Collection) IsOwner(userID int64) bool {
	return c.Owner == userID
}

// Aliases returns the loaded top-level aliases. Returns a NotLoadedError
// until LoadAliases has run.
func (c *Collection) Aliases() ([]*Alias, error) {
	if !c.aliasesLoaded {
		return nil, &NotLoadedError{Relation: "aliases", LoadMethod: "LoadAliases"}
	}
	return c.aliases, nil
}

// Snippets returns the loaded snippets. Returns a NotLoadedError until
// LoadSnippets has run.
func (c *Collection) Snippets() ([]*Snippet, error) {
	if !c.snippetsLoaded {
		return nil, &NotLoadedError{Relation: "snippets", LoadMethod: "LoadSnippets"}
	}
	return c.snippets, nil
}

// LoadAliases fetches the collection's top-level aliases in AliasIDs
// order and caches them. A dangling alias reference yields
// ErrCollectableNotFound.
func (c *Collection) LoadAliases(ctx context.Context) ([]*Alias, error) {
	docs, err := c.store.aliasesByIDs(ctx, c.AliasIDs)
	if err != nil {
		return nil, err
	}
	aliases := make([]*Alias, 0, len(docs))
	for _, doc := range docs {
		a := &Alias{Alias: doc, store: c.store}
		a.collection = c
		a.collectionLoaded = true
		aliases = append(aliases, a)
	}
	c.aliases = aliases
	c.aliasesLoaded = true
	return aliases, nil
}

// LoadSnippets fetches the collection's snippets in SnippetIDs order and
// caches them. A dangling snippet reference yields ErrCollectableNotFound.
func (c *Collection) LoadSnippets(ctx context.Context) ([]*Snippet, error) {
	docs, err := c.store.snippetsByIDs(ctx, c.SnippetIDs)
	if err != nil {
		return nil, err
	}
	snippets := make([]*Snippet, 0, len(docs))
	for _, doc := range docs {
		sn := &Snippet{Snippet: doc, store: c.store}
		sn.collection = c
		sn.collectionLoaded = true
		snippets = append(snippets, sn)
	}
	c.snippets = snippets
	c.snippetsLoaded = true
	return snippets, nil
}

// UpdateInfo replaces the collection's name, description, and image, and
// bumps last_edited server-side.
func (c *Collection) UpdateInfo(ctx context.Context, name, description string, image *string) error {
	if name == "" || len(name) > 100 {
		return ErrInvalidName
	}
	nameCI := text.Fold(name)
	_, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$set": bson.M{
			"name":        name,
			"name_ci":     nameCI,
			"description": description,
			"image":       image,
		},
		"$currentDate": bson.M{"last_edited": true},
	})
	if err != nil {
		return err
	}
	c.Name = name
	c.NameCI = nameCI
	c.Description = description
	c.Image = image
	return nil
}

// SetPublishState moves the collection to the given publication state.
// Returns ErrInvalidPublishState for states outside the known three.
func (c *Collection) SetPublishState(ctx context.Context, state models.PublicationState) error {
	if !state.Valid() {
		return ErrInvalidPublishState
	}
	_, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$set": bson.M{"publish_state": state},
	})
	if err != nil {
		return err
	}
	c.PublishState = state
	return nil
}

// SetTags replaces the collection's browse tags.
func (c *Collection) SetTags(ctx context.Context, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	_, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$set": bson.M{"tags": tags},
	})
	if err != nil {
		return err
	}
	c.Tags = tags
	return nil
}

// Delete removes the collection, every alias and snippet in it
// (subcommands included), and all subscription documents pointing at it.
// The steps are separate writes; a failure partway leaves the remainder
// for the next delete attempt.
func (c *Collection) Delete(ctx context.Context) error {
	if _, err := c.store.aliases.DeleteMany(ctx, bson.M{"collection_id": c.ID}); err != nil {
		return err
	}
	if _, err := c.store.snippets.DeleteMany(ctx, bson.M{"collection_id": c.ID}); err != nil {
		return err
	}
	if _, err := c.store.subs.DeleteByObject(ctx, c.ID); err != nil {
		return err
	}
	_, err := c.store.collections.DeleteOne(ctx, bson.M{"_id": c.ID})
	return err
}

// aliasesByIDs fetches alias documents for ids and returns them in the
// same order. Any missing document yields ErrCollectableNotFound.
func (s *Store) aliasesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Alias, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.aliases.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Alias, len(ids))
	for cur.Next(ctx) {
		var doc models.Alias
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		byID[doc.ID] = doc
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Alias, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, ErrCollectableNotFound
		}
		out = append(out, doc)
	}
	return out, nil
}

// snippetsByIDs fetches snippet documents for ids and returns them in the
// same order. Any missing document yields ErrCollectableNotFound.
func (s *Store) snippetsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Snippet, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.snippets.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Snippet, len(ids))
	for cur.Next(ctx) {
		var doc models.Snippet
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		byID[doc.ID] = doc
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Snippet, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, ErrCollectableNotFound
		}
		out = append(out, doc)
	}
	return out, nil
}
