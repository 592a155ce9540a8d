// internal/app/store/workshop/subscribe.go
package workshopstore

import (
	"context"
	"errors"

	"github.com/dalemusser/scripthub/internal/app/store/events"
	subscriptionstore "github.com/dalemusser/scripthub/internal/app/store/subscriptions"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsSubscribed reports whether userID holds a user subscription to this
// collection.
func (c *Collection) IsSubscribed(ctx context.Context, userID int64) (bool, error) {
	return c.store.subs.Exists(ctx, subscriptionstore.TypeSubscribe, userID, c.ID)
}

// Subscribe creates a user subscription with default name bindings for
// every alias and snippet currently in the collection, bumps the cached
// subscriber counter, and records an analytics event.
//
// Fails with a NotAllowedError when userID is already subscribed, or when
// the collection is private and userID is not the owner. The subscription
// insert, counter bump, and event write are separate writes and are not
// atomic.
func (c *Collection) Subscribe(ctx context.Context, userID int64) error {
	subscribed, err := c.IsSubscribed(ctx, userID)
	if err != nil {
		return err
	}
	if subscribed {
		return notAllowed(msgAlreadySubscribed)
	}
	if c.PublishState == models.StatePrivate && !c.IsOwner(userID) {
		return notAllowed(msgPrivate)
	}

	aliasBindings, err := c.defaultAliasBindings(ctx)
	if err != nil {
		return err
	}
	snippetBindings, err := c.defaultSnippetBindings(ctx)
	if err != nil {
		return err
	}

	_, err = c.store.subs.Insert(ctx, models.Subscription{
		Type:            subscriptionstore.TypeSubscribe,
		SubscriberID:    userID,
		ObjectID:        c.ID,
		AliasBindings:   aliasBindings,
		SnippetBindings: snippetBindings,
	})
	if err != nil {
		if errors.Is(err, subscriptionstore.ErrDuplicateSubscription) {
			return notAllowed(msgAlreadySubscribed)
		}
		return err
	}

	if err := c.incSubscribers(ctx, "num_subscribers", 1); err != nil {
		return err
	}
	return c.store.events.Log(ctx, events.TypeSubscribe, c.ID)
}

// Unsubscribe removes userID's subscription. Removing a subscription that
// does not exist is a no-op; the counter and analytics event only move
// when a document was actually deleted.
func (c *Collection) Unsubscribe(ctx context.Context, userID int64) error {
	deleted, err := c.store.subs.Delete(ctx, subscriptionstore.TypeSubscribe, userID, c.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}
	if err := c.incSubscribers(ctx, "num_subscribers", -1); err != nil {
		return err
	}
	return c.store.events.Log(ctx, events.TypeUnsubscribe, c.ID)
}

// IsServerActive reports whether the collection is active on guildID.
func (c *Collection) IsServerActive(ctx context.Context, guildID int64) (bool, error) {
	return c.store.subs.Exists(ctx, subscriptionstore.TypeServerActive, guildID, c.ID)
}

// SetServerActive installs the collection on guildID with default name
// bindings, bumps the cached guild counter, and records an analytics
// event.
//
// Fails with a NotAllowedError when the collection is already installed on
// the guild, or when it is private. Unlike Subscribe there is no owner
// exemption: private collections cannot be installed on any guild.
func (c *Collection) SetServerActive(ctx context.Context, guildID int64) error {
	active, err := c.IsServerActive(ctx, guildID)
	if err != nil {
		return err
	}
	if active {
		return notAllowed(msgAlreadyInstalled)
	}
	if c.PublishState == models.StatePrivate {
		return notAllowed(msgPrivate)
	}

	aliasBindings, err := c.defaultAliasBindings(ctx)
	if err != nil {
		return err
	}
	snippetBindings, err := c.defaultSnippetBindings(ctx)
	if err != nil {
		return err
	}

	_, err = c.store.subs.Insert(ctx, models.Subscription{
		Type:            subscriptionstore.TypeServerActive,
		SubscriberID:    guildID,
		ObjectID:        c.ID,
		AliasBindings:   aliasBindings,
		SnippetBindings: snippetBindings,
	})
	if err != nil {
		if errors.Is(err, subscriptionstore.ErrDuplicateSubscription) {
			return notAllowed(msgAlreadyInstalled)
		}
		return err
	}

	if err := c.incSubscribers(ctx, "num_guild_subscribers", 1); err != nil {
		return err
	}
	return c.store.events.Log(ctx, events.TypeServerSubscribe, c.ID)
}

// UnsetServerActive removes the collection from guildID. Removing an
// activation that does not exist is a no-op; the counter and analytics
// event only move when a document was actually deleted.
func (c *Collection) UnsetServerActive(ctx context.Context, guildID int64) error {
	deleted, err := c.store.subs.Delete(ctx, subscriptionstore.TypeServerActive, guildID, c.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return nil
	}
	if err := c.incSubscribers(ctx, "num_guild_subscribers", -1); err != nil {
		return err
	}
	return c.store.events.Log(ctx, events.TypeServerUnsubscribe, c.ID)
}

// UserSubscription returns userID's subscription document for this
// collection. Returns ErrSubscriptionNotFound when none exists.
func (c *Collection) UserSubscription(ctx context.Context, userID int64) (models.Subscription, error) {
	sub, err := c.store.subs.Get(ctx, subscriptionstore.TypeSubscribe, userID, c.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// GuildSubscription returns guildID's activation document for this
// collection. Returns ErrSubscriptionNotFound when none exists.
func (c *Collection) GuildSubscription(ctx context.Context, guildID int64) (models.Subscription, error) {
	sub, err := c.store.subs.Get(ctx, subscriptionstore.TypeServerActive, guildID, c.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// SubscriberCount returns the authoritative number of user subscriptions,
// counted from subscription documents rather than the cached counter.
func (c *Collection) SubscriberCount(ctx context.Context) (int64, error) {
	return c.store.subs.CountByObject(ctx, subscriptionstore.TypeSubscribe, c.ID)
}

// GuildSubscriberCount returns the authoritative number of guild
// activations.
func (c *Collection) GuildSubscriberCount(ctx context.Context) (int64, error) {
	return c.store.subs.CountByObject(ctx, subscriptionstore.TypeServerActive, c.ID)
}

// incSubscribers adjusts one of the cached subscriber counters on the
// collection document.
func (c *Collection) incSubscribers(ctx context.Context, field string, delta int) error {
	_, err := c.store.collections.UpdateByID(ctx, c.ID, bson.M{
		"$inc": bson.M{field: delta},
	})
	return err
}
