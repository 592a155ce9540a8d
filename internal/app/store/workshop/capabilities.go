// internal/app/store/workshop/capabilities.go
package workshopstore

import (
	"context"

	"github.com/dalemusser/scripthub/internal/domain/models"
)

// Subscriber is the capability of being subscribed to by individual
// users, with per-subscriber name bindings.
type Subscriber interface {
	IsSubscribed(ctx context.Context, userID int64) (bool, error)
	Subscribe(ctx context.Context, userID int64) error
	Unsubscribe(ctx context.Context, userID int64) error
	UserSubscription(ctx context.Context, userID int64) (models.Subscription, error)
}

// GuildActive is the capability of being installed on guilds, with
// per-guild name bindings.
type GuildActive interface {
	IsServerActive(ctx context.Context, guildID int64) (bool, error)
	SetServerActive(ctx context.Context, guildID int64) error
	UnsetServerActive(ctx context.Context, guildID int64) error
	GuildSubscription(ctx context.Context, guildID int64) (models.Subscription, error)
}

// Editable is the capability of granting edit access to users other than
// the owner.
type Editable interface {
	IsEditor(ctx context.Context, userID int64) (bool, error)
	CanEdit(ctx context.Context, userID int64) (bool, error)
	AddEditor(ctx context.Context, userID int64) error
	RemoveEditor(ctx context.Context, userID int64) error
	EditorIDs(ctx context.Context) ([]int64, error)
}

// Collection carries all three capabilities.
var (
	_ Subscriber  = (*Collection)(nil)
	_ GuildActive = (*Collection)(nil)
	_ Editable    = (*Collection)(nil)
)
