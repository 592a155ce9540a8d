// internal/app/features/workshop/editors.go
package workshop

import (
	"net/http"
	"strconv"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type editorsResponse struct {
	EditorIDs []string `json:"editor_ids"`
}

func newEditorsResponse(ids []int64) editorsResponse {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, snowflake(id))
	}
	return editorsResponse{EditorIDs: out}
}

// ServeEditors returns the user ids holding an editor grant on the path
// collection. The owner is not in the list.
func (h *Handler) ServeEditors(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list editors")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "list editors", err)
		return
	}
	ids, err := coll.EditorIDs(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "list editors", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newEditorsResponse(ids))
}

// editorFromPath parses the {userID} path segment as a snowflake.
func editorFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	return id, err == nil
}

// HandleAddEditor grants the path user edit access. Owner only.
func (h *Handler) HandleAddEditor(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	editorID, ok := editorFromPath(r)
	if !ok {
		apierrors.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add editor")
	defer cancel()

	coll, err := h.ownedCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "add editor", err)
		return
	}
	if err := coll.AddEditor(ctx, editorID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "add editor", err)
		return
	}
	ids, err := coll.EditorIDs(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "add editor", err)
		return
	}

	h.Log.Info("editor added",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("editor_id", editorID))
	apierrors.WriteJSON(w, http.StatusOK, newEditorsResponse(ids))
}

// HandleRemoveEditor revokes the path user's edit access. Owner only.
func (h *Handler) HandleRemoveEditor(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	editorID, ok := editorFromPath(r)
	if !ok {
		apierrors.BadRequest(w, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove editor")
	defer cancel()

	coll, err := h.ownedCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove editor", err)
		return
	}
	if err := coll.RemoveEditor(ctx, editorID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove editor", err)
		return
	}
	ids, err := coll.EditorIDs(ctx)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove editor", err)
		return
	}

	h.Log.Info("editor removed",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("editor_id", editorID))
	apierrors.WriteJSON(w, http.StatusOK, newEditorsResponse(ids))
}
