// internal/app/features/workshop/collection.go
package workshop

import (
	"encoding/json"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/scripthub/internal/app/system/limits"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"go.uber.org/zap"
)

const (
	maxTags   = 10
	maxTagLen = 50
)

type createCollectionRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
}

// HandleCreate creates a new private collection owned by the session user.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req createCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = htmlsanitize.Sanitize(req.Description)
	if req.Image != nil && strings.TrimSpace(*req.Image) == "" {
		req.Image = nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create collection")
	defer cancel()

	coll, err := h.Workshop.CreateCollection(ctx, userID, req.Name, req.Description, req.Image)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create collection", err)
		return
	}

	h.Log.Info("collection created",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("owner", userID))
	apierrors.WriteJSON(w, http.StatusCreated, newCollectionDTO(coll))
}

// ServeCollection returns one collection. ?include=aliases,snippets
// attaches summaries of the collection's contents.
func (h *Handler) ServeCollection(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get collection")
	defer cancel()

	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "get collection", err)
		return
	}

	dto := newCollectionDTO(coll)
	if includes(r, "aliases") {
		aliases, err := coll.LoadAliases(ctx)
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "load collection aliases", err)
			return
		}
		dto.Aliases = make([]aliasSummaryDTO, 0, len(aliases))
		for _, a := range aliases {
			dto.Aliases = append(dto.Aliases, newAliasSummary(a))
		}
	}
	if includes(r, "snippets") {
		snippets, err := coll.LoadSnippets(ctx)
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "load collection snippets", err)
			return
		}
		dto.Snippets = make([]snippetSummaryDTO, 0, len(snippets))
		for _, sn := range snippets {
			dto.Snippets = append(dto.Snippets, newSnippetSummary(sn))
		}
	}

	apierrors.WriteJSON(w, http.StatusOK, dto)
}

type patchCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// HandlePatch updates a collection's name, description, or image. Absent
// fields keep their current value; an empty image string clears the image.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req patchCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update collection")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "update collection", err)
		return
	}

	name := coll.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	description := coll.Description
	if req.Description != nil {
		description = htmlsanitize.Sanitize(*req.Description)
	}
	image := coll.Image
	if req.Image != nil {
		if trimmed := strings.TrimSpace(*req.Image); trimmed == "" {
			image = nil
		} else {
			image = &trimmed
		}
	}

	if err := coll.UpdateInfo(ctx, name, description, image); err != nil {
		h.ErrLog.WriteStoreError(w, r, "update collection", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newCollectionDTO(coll))
}

// HandleDelete removes a collection and everything under it. Owner only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	// Batch timeout: the cascade touches four collections.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "delete collection")
	defer cancel()

	coll, err := h.ownedCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete collection", err)
		return
	}
	if err := coll.Delete(ctx); err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete collection", err)
		return
	}

	h.Log.Info("collection deleted",
		zap.String("collection_id", coll.ID.Hex()),
		zap.Int64("owner", userID))
	w.WriteHeader(http.StatusNoContent)
}

type setStateRequest struct {
	PublishState string `json:"publish_state"`
}

// HandleSetState moves a collection between PRIVATE, UNLISTED, and
// PUBLISHED. Owner only: editors can change content but not visibility.
func (h *Handler) HandleSetState(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set collection state")
	defer cancel()

	coll, err := h.ownedCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set collection state", err)
		return
	}
	state := models.PublicationState(strings.ToUpper(strings.TrimSpace(req.PublishState)))
	if err := coll.SetPublishState(ctx, state); err != nil {
		h.ErrLog.WriteStoreError(w, r, "set collection state", err)
		return
	}

	h.Log.Info("collection state changed",
		zap.String("collection_id", coll.ID.Hex()),
		zap.String("publish_state", string(state)))
	apierrors.WriteJSON(w, http.StatusOK, newCollectionDTO(coll))
}

type setTagsRequest struct {
	Tags []string `json:"tags"`
}

// HandleSetTags replaces a collection's browse tags.
func (h *Handler) HandleSetTags(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req setTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Tags) > maxTags {
		apierrors.BadRequest(w, "too many tags")
		return
	}
	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(tag) > maxTagLen {
			apierrors.BadRequest(w, "invalid tag")
			return
		}
		tags = append(tags, tag)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set collection tags")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set collection tags", err)
		return
	}
	if err := coll.SetTags(ctx, tags); err != nil {
		h.ErrLog.WriteStoreError(w, r, "set collection tags", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newCollectionDTO(coll))
}
