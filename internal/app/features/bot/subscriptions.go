// internal/app/features/bot/subscriptions.go
package bot

import (
	"net/http"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
)

type subscribedResponse struct {
	Collections []botCollectionSummary `json:"collections"`
}

// ServeGuildSubscriptions returns summaries of every collection active
// on the path guild. Activations pointing at deleted collections are
// skipped.
func (h *Handler) ServeGuildSubscriptions(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(r, "guildID")
	if !ok {
		apierrors.BadRequest(w, "invalid guild id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "guild subscriptions")
	defer cancel()

	colls, err := h.Workshop.ServerSubscribed(ctx, guildID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list guild subscriptions failed", err, "Unable to load subscriptions.")
		return
	}
	items := make([]botCollectionSummary, 0, len(colls))
	for _, coll := range colls {
		items = append(items, newBotSummary(coll))
	}
	apierrors.WriteJSON(w, http.StatusOK, subscribedResponse{Collections: items})
}

// ServeUserSubscriptions returns summaries of every collection the path
// user subscribes to.
func (h *Handler) ServeUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := snowflakeParam(r, "userID")
	if !ok {
		apierrors.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user subscriptions")
	defer cancel()

	colls, err := h.Workshop.UserSubscribed(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list user subscriptions failed", err, "Unable to load subscriptions.")
		return
	}
	items := make([]botCollectionSummary, 0, len(colls))
	for _, coll := range colls {
		items = append(items, newBotSummary(coll))
	}
	apierrors.WriteJSON(w, http.StatusOK, subscribedResponse{Collections: items})
}
