// internal/app/store/workshop/bindings.go
package workshopstore

import (
	"context"

	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// defaultAliasBindings builds one binding per top-level alias, named after
// the alias, in AliasIDs order. Loads the aliases first if needed.
func (c *Collection) defaultAliasBindings(ctx context.Context) ([]models.Binding, error) {
	aliases, err := c.Aliases()
	if IsNotLoaded(err) {
		aliases, err = c.LoadAliases(ctx)
	}
	if err != nil {
		return nil, err
	}
	bindings := make([]models.Binding, 0, len(aliases))
	for _, a := range aliases {
		bindings = append(bindings, models.Binding{ID: a.ID, Name: a.Name})
	}
	return bindings, nil
}

// defaultSnippetBindings builds one binding per snippet, named after the
// snippet, in SnippetIDs order. Loads the snippets first if needed.
func (c *Collection) defaultSnippetBindings(ctx context.Context) ([]models.Binding, error) {
	snippets, err := c.Snippets()
	if IsNotLoaded(err) {
		snippets, err = c.LoadSnippets(ctx)
	}
	if err != nil {
		return nil, err
	}
	bindings := make([]models.Binding, 0, len(snippets))
	for _, sn := range snippets {
		bindings = append(bindings, models.Binding{ID: sn.ID, Name: sn.Name})
	}
	return bindings, nil
}

// reconcileBindings squares a subscriber's bindings with the collection's
// current membership: bindings for removed members are dropped, members
// with no binding gain a default named via nameOf, and surviving bindings
// keep their order and custom names. New defaults follow in membership
// order.
func reconcileBindings(
	ctx context.Context,
	memberIDs []primitive.ObjectID,
	bindings []models.Binding,
	nameOf func(context.Context, primitive.ObjectID) (string, error),
) ([]models.Binding, error) {
	member := make(map[primitive.ObjectID]bool, len(memberIDs))
	for _, id := range memberIDs {
		member[id] = true
	}
	bound := make(map[primitive.ObjectID]bool, len(bindings))

	out := make([]models.Binding, 0, len(memberIDs))
	for _, b := range bindings {
		bound[b.ID] = true
		if member[b.ID] {
			out = append(out, b)
		}
	}
	for _, id := range memberIDs {
		if bound[id] {
			continue
		}
		name, err := nameOf(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Binding{ID: id, Name: name})
	}
	return out, nil
}

// UpdateAliasBindings reconciles sub's alias bindings against the
// collection's current alias membership and persists the result on the
// subscription document. Works for both user subscriptions and guild
// activations. Returns the reconciled bindings.
func (c *Collection) UpdateAliasBindings(ctx context.Context, sub models.Subscription) ([]models.Binding, error) {
	reconciled, err := reconcileBindings(ctx, c.AliasIDs, sub.AliasBindings, c.store.aliasName)
	if err != nil {
		return nil, err
	}
	if err := c.store.subs.SetAliasBindings(ctx, sub.ID, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}

// UpdateSnippetBindings reconciles sub's snippet bindings against the
// collection's current snippet membership and persists the result on the
// subscription document. Works for both user subscriptions and guild
// activations. Returns the reconciled bindings.
func (c *Collection) UpdateSnippetBindings(ctx context.Context, sub models.Subscription) ([]models.Binding, error) {
	reconciled, err := reconcileBindings(ctx, c.SnippetIDs, sub.SnippetBindings, c.store.snippetName)
	if err != nil {
		return nil, err
	}
	if err := c.store.subs.SetSnippetBindings(ctx, sub.ID, reconciled); err != nil {
		return nil, err
	}
	return reconciled, nil
}
