// internal/app/features/bot/collection.go
package bot

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
)

// ServeFullCollection returns a collection with every alias tree and
// snippet expanded, code and grouped entitlements included. This is the
// payload the bot caches when a subscriber invokes workshop content.
func (h *Handler) ServeFullCollection(w http.ResponseWriter, r *http.Request) {
	// Long timeout: the expansion walks the whole subcommand tree.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "bot full collection")
	defer cancel()

	coll, err := h.collectionFromPath(ctx, r)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "bot full collection", err)
		return
	}

	aliases, err := coll.LoadAliases(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "bot full collection", err)
		return
	}
	expanded := make([]botAlias, 0, len(aliases))
	for _, a := range aliases {
		ba, err := h.expandAlias(ctx, a)
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "bot full collection", err)
			return
		}
		expanded = append(expanded, ba)
	}

	snippets, err := coll.LoadSnippets(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "bot full collection", err)
		return
	}
	snips := make([]botSnippet, 0, len(snippets))
	for _, sn := range snippets {
		snips = append(snips, newBotSnippet(sn))
	}

	apierrors.WriteJSON(w, http.StatusOK, botCollection{
		ID:           coll.ID.Hex(),
		Name:         coll.Name,
		Description:  coll.Description,
		Image:        coll.Image,
		Owner:        coll.Owner,
		PublishState: string(coll.PublishState),
		Tags:         coll.Tags,
		Aliases:      expanded,
		Snippets:     snips,
	})
}

// expandAlias builds the bot payload for one alias and recurses into its
// subcommand tree. Subcommand links only point downward, so the walk
// terminates.
func (h *Handler) expandAlias(ctx context.Context, a *workshopstore.Alias) (botAlias, error) {
	out := botAlias{
		ID:                  a.ID.Hex(),
		Name:                a.Name,
		Code:                a.Code,
		Docs:                a.Docs,
		GroupedEntitlements: a.GroupedEntitlements(),
		ParentID:            hexPtr(a.ParentID),
		Subcommands:         []botAlias{},
	}
	subs, err := a.LoadSubcommands(ctx)
	if err != nil {
		return botAlias{}, err
	}
	for _, sub := range subs {
		expanded, err := h.expandAlias(ctx, sub)
		if err != nil {
			return botAlias{}, err
		}
		out.Subcommands = append(out.Subcommands, expanded)
	}
	return out, nil
}
