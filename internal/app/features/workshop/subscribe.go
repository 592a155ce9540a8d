// internal/app/features/workshop/subscribe.go
package workshop

import (
	"context"
	"encoding/json"
	"net/http"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/app/system/limits"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeSubscription returns the session user's subscription to the path
// collection, bindings included. 404 when not subscribed.
func (h *Handler) ServeSubscription(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get subscription")
	defer cancel()

	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "get subscription", err)
		return
	}
	sub, err := coll.UserSubscription(ctx, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "get subscription", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newSubscriptionDTO(sub))
}

// HandleSubscribe subscribes the session user to the path collection and
// returns the new subscription with its default bindings.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	// Long timeout: subscribing writes the subscription, the counter, and
	// an analytics event.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "subscribe")
	defer cancel()

	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "subscribe", err)
		return
	}
	if err := coll.Subscribe(ctx, userID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "subscribe", err)
		return
	}
	sub, err := coll.UserSubscription(ctx, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "subscribe", err)
		return
	}

	h.Log.Info("user subscribed",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("user_id", userID))
	apierrors.WriteJSON(w, http.StatusCreated, newSubscriptionDTO(sub))
}

// HandleUnsubscribe removes the session user's subscription. Responds
// with a conflict when no subscription exists, so clients notice state
// drift instead of silently succeeding.
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "unsubscribe")
	defer cancel()

	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "unsubscribe", err)
		return
	}
	subscribed, err := coll.IsSubscribed(ctx, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "unsubscribe", err)
		return
	}
	if !subscribed {
		apierrors.Conflict(w, "You are not subscribed to this.")
		return
	}
	if err := coll.Unsubscribe(ctx, userID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "unsubscribe", err)
		return
	}

	h.Log.Info("user unsubscribed",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("user_id", userID))
	w.WriteHeader(http.StatusNoContent)
}

type bindingsRequest struct {
	Bindings []bindingRequestEntry `json:"bindings"`
}

type bindingRequestEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// parseBindings converts request binding entries to model bindings.
// Malformed ids fail the whole request.
func parseBindings(entries []bindingRequestEntry) ([]models.Binding, error) {
	out := make([]models.Binding, 0, len(entries))
	for _, e := range entries {
		id, err := primitive.ObjectIDFromHex(e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.Binding{ID: id, Name: e.Name})
	}
	return out, nil
}

// HandleSetAliasBindings replaces the session user's alias name bindings
// for the path collection. The submitted list is reconciled against the
// collection's current aliases before it is stored; the response carries
// the reconciled list.
func (h *Handler) HandleSetAliasBindings(w http.ResponseWriter, r *http.Request) {
	h.setBindings(w, r, "set alias bindings",
		func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error) {
			return coll.UpdateAliasBindings(ctx, sub)
		},
		func(sub *models.Subscription, bindings []models.Binding) {
			sub.AliasBindings = bindings
		})
}

// HandleSetSnippetBindings mirrors HandleSetAliasBindings for snippets.
func (h *Handler) HandleSetSnippetBindings(w http.ResponseWriter, r *http.Request) {
	h.setBindings(w, r, "set snippet bindings",
		func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error) {
			return coll.UpdateSnippetBindings(ctx, sub)
		},
		func(sub *models.Subscription, bindings []models.Binding) {
			sub.SnippetBindings = bindings
		})
}

func (h *Handler) setBindings(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	update func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error),
	apply func(sub *models.Subscription, bindings []models.Binding),
) {
	userID := currentUserID(r)

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req bindingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}
	bindings, err := parseBindings(req.Bindings)
	if err != nil {
		apierrors.BadRequest(w, "invalid binding id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, op, err)
		return
	}
	sub, err := coll.UserSubscription(ctx, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, op, err)
		return
	}
	apply(&sub, bindings)
	reconciled, err := update(ctx, coll, sub)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, op, err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newBindingDTOs(reconciled))
}
