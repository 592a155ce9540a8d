// internal/app/features/bot/guild.go
package bot

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

// HandleActivate installs the path collection on the path guild and
// returns the new activation with its default bindings. Private
// collections cannot be installed; the store refuses them.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(r, "guildID")
	if !ok {
		apierrors.BadRequest(w, "invalid guild id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "server activate")
	defer cancel()

	coll, err := h.collectionFromPath(ctx, r)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "server activate", err)
		return
	}
	if err := coll.SetServerActive(ctx, guildID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "server activate", err)
		return
	}
	sub, err := coll.GuildSubscription(ctx, guildID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "server activate", err)
		return
	}

	h.Log.Info("collection installed on guild",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("guild_id", guildID))
	apierrors.WriteJSON(w, http.StatusCreated, newBotSubscription(sub))
}

// HandleDeactivate removes the path collection from the path guild.
// Responds with a conflict when no activation exists.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	guildID, ok := snowflakeParam(r, "guildID")
	if !ok {
		apierrors.BadRequest(w, "invalid guild id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "server deactivate")
	defer cancel()

	coll, err := h.collectionFromPath(ctx, r)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "server deactivate", err)
		return
	}
	active, err := coll.IsServerActive(ctx, guildID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "server deactivate", err)
		return
	}
	if !active {
		apierrors.Conflict(w, "This collection is not installed on this server.")
		return
	}
	if err := coll.UnsetServerActive(ctx, guildID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "server deactivate", err)
		return
	}

	h.Log.Info("collection removed from guild",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("guild_id", guildID))
	w.WriteHeader(http.StatusNoContent)
}

type bindingsRequest struct {
	Bindings []bindingEntry `json:"bindings"`
}

type bindingEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func parseBindings(entries []bindingEntry) ([]models.Binding, error) {
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

// HandleSetGuildAliasBindings replaces a guild's alias name bindings for
// the path collection, reconciled against current membership.
func (h *Handler) HandleSetGuildAliasBindings(w http.ResponseWriter, r *http.Request) {
	h.setGuildBindings(w, r, "set guild alias bindings",
		func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error) {
			return coll.UpdateAliasBindings(ctx, sub)
		},
		func(sub *models.Subscription, bindings []models.Binding) {
			sub.AliasBindings = bindings
		})
}

// HandleSetGuildSnippetBindings mirrors HandleSetGuildAliasBindings for
// snippets.
func (h *Handler) HandleSetGuildSnippetBindings(w http.ResponseWriter, r *http.Request) {
	h.setGuildBindings(w, r, "set guild snippet bindings",
		func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error) {
			return coll.UpdateSnippetBindings(ctx, sub)
		},
		func(sub *models.Subscription, bindings []models.Binding) {
			sub.SnippetBindings = bindings
		})
}

func (h *Handler) setGuildBindings(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	update func(ctx context.Context, coll *workshopstore.Collection, sub models.Subscription) ([]models.Binding, error),
	apply func(sub *models.Subscription, bindings []models.Binding),
) {
	guildID, ok := snowflakeParam(r, "guildID")
	if !ok {
		apierrors.BadRequest(w, "invalid guild id")
		return
	}

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

	coll, err := h.collectionFromPath(ctx, r)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, op, err)
		return
	}
	sub, err := coll.GuildSubscription(ctx, guildID)
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
	apierrors.WriteJSON(w, http.StatusOK, reconciled)
}
