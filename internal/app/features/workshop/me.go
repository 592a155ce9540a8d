// internal/app/features/workshop/me.go
package workshop

import (
	"net/http"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
)

type myCollectionsResponse struct {
	CollectionIDs []string `json:"collection_ids"`
}

// ServeMyCollections returns the ids of every collection the session
// user owns.
func (h *Handler) ServeMyCollections(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list owned collections")
	defer cancel()

	ids, err := h.Workshop.UserOwnedIDs(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list owned collections failed", err, "Unable to load your collections.")
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, myCollectionsResponse{CollectionIDs: hexIDs(ids)})
}

type mySubscriptionsResponse struct {
	Collections []collectionDTO `json:"collections"`
}

// ServeMySubscriptions returns the collections the session user is
// subscribed to, resolved to full documents. Subscriptions whose
// collection has been deleted are skipped.
func (h *Handler) ServeMySubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list subscriptions")
	defer cancel()

	colls, err := h.Workshop.UserSubscribed(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list subscribed collections failed", err, "Unable to load your subscriptions.")
		return
	}
	items := make([]collectionDTO, 0, len(colls))
	for _, coll := range colls {
		items = append(items, newCollectionDTO(coll))
	}
	apierrors.WriteJSON(w, http.StatusOK, mySubscriptionsResponse{Collections: items})
}
