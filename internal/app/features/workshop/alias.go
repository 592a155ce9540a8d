// internal/app/features/workshop/alias.go
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
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type createCollectableRequest struct {
	Name string `json:"name"`
}

// HandleCreateAlias adds a top-level alias to the path collection.
func (h *Handler) HandleCreateAlias(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req createCollectableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create alias")
	defer cancel()

	coll, err := h.editableCollection(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create alias", err)
		return
	}
	alias, err := coll.CreateAlias(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create alias", err)
		return
	}

	h.Log.Info("alias created",
		zap.String("alias_id", alias.ID.Hex()),
		zap.String("collection_id", coll.ID.Hex()))
	apierrors.WriteJSON(w, http.StatusCreated, newAliasDTO(alias))
}

// HandleCreateSubcommand adds a subcommand under the path alias.
func (h *Handler) HandleCreateSubcommand(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req createCollectableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create subcommand")
	defer cancel()

	parent, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create subcommand", err)
		return
	}
	sub, err := parent.CreateSubcommand(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "create subcommand", err)
		return
	}

	h.Log.Info("subcommand created",
		zap.String("alias_id", sub.ID.Hex()),
		zap.String("parent_id", parent.ID.Hex()))
	apierrors.WriteJSON(w, http.StatusCreated, newAliasDTO(sub))
}

// ServeAlias returns one alias. ?include=subcommands,parent,collection
// attaches the named relations.
func (h *Handler) ServeAlias(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get alias")
	defer cancel()

	alias, err := h.aliasFromPath(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "get alias", err)
		return
	}

	dto := newAliasDTO(alias)
	if includes(r, "subcommands") {
		subs, err := alias.LoadSubcommands(ctx)
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "load subcommands", err)
			return
		}
		dto.Subcommands = make([]aliasDTO, 0, len(subs))
		for _, sc := range subs {
			dto.Subcommands = append(dto.Subcommands, newAliasDTO(sc))
		}
	}
	if includes(r, "parent") && alias.ParentID != nil {
		parent, err := alias.LoadParent(ctx)
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "load parent alias", err)
			return
		}
		p := newAliasDTO(parent)
		dto.Parent = &p
	}
	if includes(r, "collection") {
		// aliasFromPath already loaded the collection for the
		// visibility check.
		coll, err := alias.Collection()
		if err != nil {
			h.ErrLog.WriteStoreError(w, r, "load alias collection", err)
			return
		}
		c := newCollectionDTO(coll)
		dto.Collection = &c
	}

	apierrors.WriteJSON(w, http.StatusOK, dto)
}

// HandleDeleteAlias removes the path alias and its whole subcommand
// subtree.
func (h *Handler) HandleDeleteAlias(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete alias")
	defer cancel()

	alias, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete alias", err)
		return
	}
	if err := alias.Delete(ctx); err != nil {
		h.ErrLog.WriteStoreError(w, r, "delete alias", err)
		return
	}

	h.Log.Info("alias deleted",
		zap.String("alias_id", alias.ID.Hex()),
		zap.String("collection_id", alias.CollectionID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

type setCodeRequest struct {
	Code string `json:"code"`
}

// HandleSetAliasCode appends a new code version to the path alias and
// returns the created version.
func (h *Handler) HandleSetAliasCode(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeBodySize)

	var req setCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set alias code")
	defer cancel()

	alias, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set alias code", err)
		return
	}
	version, err := alias.SetCode(ctx, req.Code)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set alias code", err)
		return
	}

	h.Log.Info("alias code updated",
		zap.String("alias_id", alias.ID.Hex()),
		zap.Int("version", version.Version))
	apierrors.WriteJSON(w, http.StatusOK, version)
}

type setDocsRequest struct {
	Docs string `json:"docs"`
}

// HandleSetAliasDocs replaces the path alias's documentation.
func (h *Handler) HandleSetAliasDocs(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCodeBodySize)

	var req setDocsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set alias docs")
	defer cancel()

	alias, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "set alias docs", err)
		return
	}
	if err := alias.SetDocs(ctx, htmlsanitize.Sanitize(req.Docs)); err != nil {
		h.ErrLog.WriteStoreError(w, r, "set alias docs", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newAliasDTO(alias))
}

type entitlementRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Required   bool   `json:"required"`
}

// parseEntitlement validates an entitlement request body. The entity id
// arrives as a decimal string like every other snowflake-sized id.
func parseEntitlement(req entitlementRequest) (models.RequiredEntitlement, bool) {
	entityType := strings.TrimSpace(req.EntityType)
	if entityType == "" {
		return models.RequiredEntitlement{}, false
	}
	entityID, err := strconv.ParseInt(req.EntityID, 10, 64)
	if err != nil {
		return models.RequiredEntitlement{}, false
	}
	return models.RequiredEntitlement{
		EntityType: entityType,
		EntityID:   entityID,
		Required:   req.Required,
	}, true
}

// HandleAddAliasEntitlement attaches an entitlement requirement to the
// path alias and returns the updated entitlement list.
func (h *Handler) HandleAddAliasEntitlement(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add alias entitlement")
	defer cancel()

	alias, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "add alias entitlement", err)
		return
	}
	if err := alias.AddEntitlement(ctx, ent); err != nil {
		h.ErrLog.WriteStoreError(w, r, "add alias entitlement", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newEntitlementDTOs(alias.Entitlements))
}

// HandleRemoveAliasEntitlement detaches the entitlement named by the
// {entityType}/{entityID} path segments and returns the updated list.
func (h *Handler) HandleRemoveAliasEntitlement(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)

	entityType := chi.URLParam(r, "entityType")
	entityID, err := strconv.ParseInt(chi.URLParam(r, "entityID"), 10, 64)
	if err != nil {
		apierrors.BadRequest(w, "invalid entity id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove alias entitlement")
	defer cancel()

	alias, err := h.editableAlias(ctx, r, userID)
	if err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove alias entitlement", err)
		return
	}
	if err := alias.RemoveEntitlement(ctx, entityType, entityID); err != nil {
		h.ErrLog.WriteStoreError(w, r, "remove alias entitlement", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, newEntitlementDTOs(alias.Entitlements))
}
