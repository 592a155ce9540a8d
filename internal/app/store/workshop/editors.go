// internal/app/store/workshop/editors.go
package workshopstore

import (
	"context"
	"errors"

	subscriptionstore "github.com/dalemusser/scripthub/internal/app/store/subscriptions"
	"github.com/dalemusser/scripthub/internal/domain/models"
)

// EditorIDs returns the user IDs holding an editor grant on this
// collection. The owner is not included.
func (c *Collection) EditorIDs(ctx context.Context) ([]int64, error) {
	return c.store.subs.SubscriberIDs(ctx, subscriptionstore.TypeEditor, c.ID)
}

// IsEditor reports whether userID holds an editor grant. The owner is not
// an editor; use CanEdit for the combined check.
func (c *Collection) IsEditor(ctx context.Context, userID int64) (bool, error) {
	return c.store.subs.Exists(ctx, subscriptionstore.TypeEditor, userID, c.ID)
}

// CanEdit reports whether userID may modify this collection, either as
// its owner or through an editor grant.
func (c *Collection) CanEdit(ctx context.Context, userID int64) (bool, error) {
	if c.IsOwner(userID) {
		return true, nil
	}
	return c.IsEditor(ctx, userID)
}

// AddEditor grants userID edit access. Fails with a NotAllowedError when
// userID is the owner or already an editor.
func (c *Collection) AddEditor(ctx context.Context, userID int64) error {
	if c.IsOwner(userID) {
		return notAllowed(msgOwnerIsEditor)
	}
	_, err := c.store.subs.Insert(ctx, models.Subscription{
		Type:         subscriptionstore.TypeEditor,
		SubscriberID: userID,
		ObjectID:     c.ID,
	})
	if errors.Is(err, subscriptionstore.ErrDuplicateSubscription) {
		return notAllowed(msgAlreadyEditor)
	}
	return err
}

// RemoveEditor revokes userID's edit access. Returns
// ErrSubscriptionNotFound when userID holds no editor grant.
func (c *Collection) RemoveEditor(ctx context.Context, userID int64) error {
	deleted, err := c.store.subs.Delete(ctx, subscriptionstore.TypeEditor, userID, c.ID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
