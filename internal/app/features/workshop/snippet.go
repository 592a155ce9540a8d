// internal/app/features/workshop/snippet.go
package workshop

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/scripthub/internal/app/system/limits"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleCreateSnippet adds a snippet to the path collection.
func (h *Handler) HandleCreateSnippet(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req createCollectableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create snippet")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create snippet", err)
		return
	}
	snippet, err := coll.CreateSnippet(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create snippet", err)
		return
	}

	h.Log.Info("snippet created",
		zap.String("snippet_id", snippet.ID.Hex()),
		zap.String("collection_id", coll.ID.Hex()))
	apierrors.WriteJSON(w, http.StatusCreated, newSnippetDTO(snippet))
}

// ServeSnippet returns one snippet.
func (h *Handler) ServeSnippet(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get snippet")
	defer cancel()

	snippet, err := h.snippetFromPath(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "get snippet", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newSnippetDTO(snippet))
}

// HandleDeleteSnippet removes the path snippet.
func (h *Handler) HandleDeleteSnippet(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete snippet")
	defer cancel()

	snippet, err := h.editableSnippet(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete snippet", err)
		return
	}
	if err := snippet.Delete(ctx); err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete snippet", err)
		return
	}

	h.Log.Info("snippet deleted",
		zap.String("snippet_id", snippet.ID.Hex()),
		zap.String("collection_id", snippet.CollectionID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetSnippetCode appends a new code version to the path snippet and
// returns the created version.
func (h *Handler) HandleSetSnippetCode(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeBodySize)

	var req setCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set snippet code")
	defer cancel()

	snippet, err := h.editableSnippet(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set snippet code", err)
		return
	}
	version, err := snippet.SetCode(ctx, req.Code)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set snippet code", err)
		return
	}

	h.Log.Info("snippet code updated",
		zap.String("snippet_id", snippet.ID.Hex()),
		zap.Int("version", version.Version))
	apierrors.WriteJSON(w, http.StatusOK, version)
}

// HandleSetSnippetDocs replaces the path snippet's documentation.
func (h *Handler) HandleSetSnippetDocs(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeBodySize)

	var req setDocsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set snippet docs")
	defer cancel()

	snippet, err := h.editableSnippet(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set snippet docs", err)
		return
	}
	if err := snippet.SetDocs(ctx, htmlsanitize.Sanitize(req.Docs)); err != nil {
		h.ErrLog.WriteStoreError(w, r, "set snippet docs", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newSnippetDTO(snippet))
}

// HandleAddSnippetEntitlement attaches an entitlement requirement to the
// path snippet and returns the updated entitlement list.
func (h *Handler) HandleAddSnippetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req entitlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}
	ent, ok := parseEntitlement(req)
	if !ok {
		apierrors.BadRequest(w, "entity_type and a numeric entity_id are required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add snippet entitlement")
	defer cancel()

	snippet, err := h.editableSnippet(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "add snippet entitlement", err)
		return
	}
	if err := snippet.AddEntitlement(ctx, ent); err != nil {
		h.ErrLog.WriteStoreError(w, r, "add snippet entitlement", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newEntitlementDTOs(snippet.Entitlements))
}

// HandleRemoveSnippetEntitlement detaches the entitlement named by the
// {entityType}/{entityID} path segments and returns the updated list.
func (h *Handler) HandleRemoveSnippetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	entityType := chi.URLParam(r, "entityType")
	entityID, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil {
		apierrors.BadRequest(w, "invalid entity id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove snippet entitlement")
	defer cancel()

	snippet, err := h.editableSnippet(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove snippet entitlement", err)
		return
	}
	if err := snippet.RemoveEntitlement(ctx, entityType, entityID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove snippet entitlement", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newEntitlementDTOs(snippet.Entitlements))
}
