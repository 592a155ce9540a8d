// internal/app/features/workshop/stats.go
package workshop

import (
	"net/http"
	"time"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/store/events"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
)

// statsWindow is how far back the event totals reach.
const statsWindow = 30 * 24 * time.Hour

type statsResponse struct {
	NumSubscribers      int64 `json:"num_subscribers"`
	NumGuildSubscribers int64 `json:"num_guild_subscribers"`

	// Event totals over the last 30 days.
	Subscribes         int64 `json:"subscribes"`
	Unsubscribes       int64 `json:"unsubscribes"`
	ServerSubscribes   int64 `json:"server_subscribes"`
	ServerUnsubscribes int64 `json:"server_unsubscribes"`
}

// ServeStats returns subscriber counts and recent analytics totals for a
// collection. The counts here are counted from subscription documents,
// not read from the cached counters on the collection doc.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "collection stats")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "collection stats", err)
		return
	}

	subs, err := coll.SubscriberCount(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "collection stats", err)
		return
	}
	guildSubs, err := coll.GuildSubscriberCount(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "collection stats", err)
		return
	}
	counts, err := h.Events.CountSince(ctx, coll.ID, time.Now().UTC().Add(-statsWindow))
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "collection stats", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, statsResponse{
		NumSubscribers:      subs,
		NumGuildSubscribers: guildSubs,
		Subscribes:          counts[events.TypeSubscribe],
		Unsubscribes:        counts[events.TypeUnsubscribe],
		ServerSubscribes:    counts[events.TypeServerSubscribe],
		ServerUnsubscribes:  counts[events.TypeServerUnsubscribe],
	})
}
