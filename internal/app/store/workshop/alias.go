// internal/app/store/workshop/alias.go
package workshopstore

import (
	"context"

	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alias wraps an alias document with its store. The parent collection,
// parent alias, and subcommands load lazily; accessors return a
// NotLoadedError until the matching Load method has run.
//
// Aliases fetched through Collection.LoadAliases arrive with the
// collection already attached; aliases fetched standalone through
// Store.AliasByID do not.
type Alias struct {
	models.Alias

	store             *Store
	collection        *Collection
	collectionLoaded  bool
	parent            *Alias
	parentLoaded      bool
	subcommands       []*Alias
	subcommandsLoaded bool
}

// Collection returns the loaded parent collection. Returns a
// NotLoadedError until LoadCollection has run.
func (a *Alias) Collection() (*Collection, error) {
	if !a.collectionLoaded {
		return nil, &NotLoadedError{Relation: "collection", LoadMethod: "LoadCollection"}
	}
	return a.collection, nil
}

// LoadCollection fetches and caches the alias's parent collection.
func (a *Alias) LoadCollection(ctx context.Context) (*Collection, error) {
	if a.collectionLoaded {
		return a.collection, nil
	}
	c, err := a.store.CollectionByID(ctx, a.CollectionID)
	if err != nil {
		return nil, err
	}
	a.collection = c
	a.collectionLoaded = true
	return c, nil
}

// Parent returns the loaded parent alias. Returns a NotLoadedError until
// LoadParent has run. Subcommands obtained through LoadSubcommands arrive
// with the parent already attached.
func (a *Alias) Parent() (*Alias, error) {
	if !a.parentLoaded {
		return nil, &NotLoadedError{Relation: "parent", LoadMethod: "LoadParent"}
	}
	return a.parent, nil
}

// LoadParent fetches and caches the parent alias. Returns
// ErrCollectableNotFound when the alias is top-level and has no parent.
func (a *Alias) LoadParent(ctx context.Context) (*Alias, error) {
	if a.parentLoaded {
		return a.parent, nil
	}
	if a.ParentID == nil {
		return nil, ErrCollectableNotFound
	}
	p, err := a.store.AliasByID(ctx, *a.ParentID)
	if err != nil {
		return nil, err
	}
	p.collection = a.collection
	p.collectionLoaded = a.collectionLoaded
	a.parent = p
	a.parentLoaded = true
	return p, nil
}

// Subcommands returns the loaded subcommand aliases. Returns a
// NotLoadedError until LoadSubcommands has run.
func (a *Alias) Subcommands() ([]*Alias, error) {
	if !a.subcommandsLoaded {
		return nil, &NotLoadedError{Relation: "subcommands", LoadMethod: "LoadSubcommands"}
	}
	return a.subcommands, nil
}

// LoadSubcommands fetches the alias's subcommands in SubcommandIDs order
// and caches them. Each subcommand arrives with this alias attached as
// its parent and the collection carried over if it was loaded here.
func (a *Alias) LoadSubcommands(ctx context.Context) ([]*Alias, error) {
	docs, err := a.store.aliasesByIDs(ctx, a.SubcommandIDs)
	if err != nil {
		return nil, err
	}
	subcommands := make([]*Alias, 0, len(docs))
	for _, doc := range docs {
		sub := &Alias{Alias: doc, store: a.store}
		sub.collection = a.collection
		sub.collectionLoaded = a.collectionLoaded
		sub.parent = a
		sub.parentLoaded = true
		subcommands = append(subcommands, sub)
	}
	a.subcommands = subcommands
	a.subcommandsLoaded = true
	return subcommands, nil
}

// SetCode appends a new code version and makes it current.
func (a *Alias) SetCode(ctx context.Context, code string) (models.CodeVersion, error) {
	return setCode(ctx, a.store.aliases, &a.Collectable, code)
}

// SetDocs replaces the alias's documentation.
func (a *Alias) SetDocs(ctx context.Context, docs string) error {
	return setDocs(ctx, a.store.aliases, &a.Collectable, docs)
}

// AddEntitlement attaches an entitlement requirement to the alias.
func (a *Alias) AddEntitlement(ctx context.Context, ent models.RequiredEntitlement) error {
	return addEntitlement(ctx, a.store.aliases, &a.Collectable, ent)
}

// RemoveEntitlement detaches an entitlement requirement from the alias.
func (a *Alias) RemoveEntitlement(ctx context.Context, entityType string, entityID int64) error {
	return removeEntitlement(ctx, a.store.aliases, &a.Collectable, entityType, entityID)
}

// CreateAlias adds a new empty top-level alias to the collection and
// registers it in AliasIDs. Names are one to fifty characters of letters,
// digits, hyphen, or underscore. Existing subscribers pick the alias up
// the next time their bindings reconcile.
func (c *Collection) CreateAlias(ctx context.Context, name string) (*Alias, error) {
	if err := validateCollectableName(name, 1); err != nil {
		return nil, err
	}
	doc := models.Alias{
		Collectable:   newCollectable(name, c.ID),
		SubcommandIDs: []primitive.ObjectID{},
		ParentID:      nil,
	}
	if _, err := c.store.aliases.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$push": bson.M{"alias_ids": doc.ID},
	}); err != nil {
		return nil, err
	}
	c.AliasIDs = append(c.AliasIDs, doc.ID)

	a := &Alias{Alias: doc, store: c.store}
	a.collection = c
	a.collectionLoaded = true
	if c.aliasesLoaded {
		c.aliases = append(c.aliases, a)
	}
	return a, nil
}

// CreateSubcommand adds a new empty subcommand under this alias and
// registers it in SubcommandIDs. The subcommand inherits the alias's
// collection.
func (a *Alias) CreateSubcommand(ctx context.Context, name string) (*Alias, error) {
	if err := validateCollectableName(name, 1); err != nil {
		return nil, err
	}
	parentID := a.ID
	doc := models.Alias{
		Collectable:   newCollectable(name, a.CollectionID),
		SubcommandIDs: []primitive.ObjectID{},
		ParentID:      &parentID,
	}
	if _, err := a.store.aliases.InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	if _, err := a.store.aliases.UpdateByID(ctx, a.ID, bson.M{
		"$push": bson.M{"subcommand_ids": doc.ID},
	}); err != nil {
		return nil, err
	}
	a.SubcommandIDs = append(a.SubcommandIDs, doc.ID)

	sub := &Alias{Alias: doc, store: a.store}
	sub.collection = a.collection
	sub.collectionLoaded = a.collectionLoaded
	sub.parent = a
	sub.parentLoaded = true
	if a.subcommandsLoaded {
		a.subcommands = append(a.subcommands, sub)
	}
	return sub, nil
}

// Delete removes the alias, its whole subcommand tree, and its reference
// from the parent alias or collection. Subscriber bindings are left
// alone; reconciliation drops them on the next binding update.
func (a *Alias) Delete(ctx context.Context) error {
	for _, subID := range a.SubcommandIDs {
		sub, err := a.store.AliasByID(ctx, subID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return err
		}
		if err := sub.Delete(ctx); err != nil {
			return err
		}
	}

	if a.ParentID != nil {
		if _, err := a.store.aliases.UpdateByID(ctx, *a.ParentID, bson.M{
			"$pull": bson.M{"subcommand_ids": a.ID},
		}); err != nil {
			return err
		}
	} else {
		if _, err := a.store.collections.UpdateByID(ctx, a.CollectionID, bson.M{
			"$pull": bson.M{"alias_ids": a.ID},
		}); err != nil {
			return err
		}
	}

	_, err := a.store.aliases.DeleteOne(ctx, bson.M{"_id": a.ID})
	return err
}
