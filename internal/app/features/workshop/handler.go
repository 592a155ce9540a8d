// internal/app/features/workshop/handler.go
package workshop

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	"github.com/dalemusser/scripthub/internal/app/store/events"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/app/system/auth"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Refusal messages for permission guards. Reasons are user-facing.
const (
	msgNotEditor = "You do not have permission to edit this collection."
	msgOwnerOnly = "Only the collection owner can do this."
)

// Handler serves the workshop content API: collections, aliases, snippets,
// subscriptions, and bindings.
type Handler struct {
	DB       *mongo.Database
	Workshop *workshopstore.Store
	Events   *events.Store
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler creates a workshop handler with its stores.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Workshop: workshopstore.New(db),
		Events:   events.New(db),
		ErrLog:   errLog,
		Log:      logger,
	}
}

// currentUserID returns the session user's snowflake, or 0 for anonymous
// requests. Routes behind RequireSignedIn always see a nonzero id.
func currentUserID(r *http.Request) int64 {
	if u, ok := auth.CurrentUser(r); ok {
		return u.ID
	}
	return 0
}

// includes reports whether the request's ?include= list names part.
func includes(r *http.Request, part string) bool {
	for _, p := range strings.Split(query.Get(r, "include"), ",") {
		if strings.TrimSpace(p) == part {
			return true
		}
	}
	return false
}

// collectionFromPath loads the collection named by the {id} URL parameter.
// Malformed ids read as missing collections.
func (h *Handler) collectionFromPath(ctx context.Context, r *http.Request) (*workshopstore.Collection, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, workshopstore.ErrCollectionNotFound
	}
	return h.Workshop.CollectionByID(ctx, id)
}

// viewableCollection loads the path collection and applies visibility:
// PRIVATE collections exist only for their owner and editors, everyone
// else gets the not-found sentinel so responses do not leak existence.
func (h *Handler) viewableCollection(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Collection, error) {
	coll, err := h.collectionFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := h.checkViewable(ctx, coll, userID); err != nil {
		return nil, err
	}
	return coll, nil
}

func (h *Handler) checkViewable(ctx context.Context, coll *workshopstore.Collection, userID int64) error {
	if coll.PublishState != models.StatePrivate || coll.IsOwner(userID) {
		return nil
	}
	isEditor, err := coll.IsEditor(ctx, userID)
	if err != nil {
		return err
	}
	if !isEditor {
		return workshopstore.ErrCollectionNotFound
	}
	return nil
}

// editableCollection loads the path collection and requires edit rights
// (owner or editor). Viewers without edit rights get NotAllowed; users the
// collection is invisible to get not-found.
func (h *Handler) editableCollection(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Collection, error) {
	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	canEdit, err := coll.CanEdit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, &workshopstore.NotAllowedError{Reason: msgNotEditor}
	}
	return coll, nil
}

// ownedCollection loads the path collection and requires ownership.
func (h *Handler) ownedCollection(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Collection, error) {
	coll, err := h.viewableCollection(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	if !coll.IsOwner(userID) {
		return nil, &workshopstore.NotAllowedError{Reason: msgOwnerOnly}
	}
	return coll, nil
}

// aliasFromPath loads the alias named by the {id} URL parameter together
// with its collection, applying collection visibility.
func (h *Handler) aliasFromPath(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Alias, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, workshopstore.ErrCollectableNotFound
	}
	alias, err := h.Workshop.AliasByID(ctx, id)
	if err != nil {
		return nil, err
	}
	coll, err := alias.LoadCollection(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.checkViewable(ctx, coll, userID); err != nil {
		return nil, err
	}
	return alias, nil
}

// editableAlias is aliasFromPath plus the edit-rights check on the
// alias's collection.
func (h *Handler) editableAlias(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Alias, error) {
	alias, err := h.aliasFromPath(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	coll, err := alias.Collection()
	if err != nil {
		return nil, err
	}
	canEdit, err := coll.CanEdit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, &workshopstore.NotAllowedError{Reason: msgNotEditor}
	}
	return alias, nil
}

// snippetFromPath mirrors aliasFromPath for snippets.
func (h *Handler) snippetFromPath(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Snippet, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, workshopstore.ErrCollectableNotFound
	}
	snippet, err := h.Workshop.SnippetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	coll, err := snippet.LoadCollection(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.checkViewable(ctx, coll, userID); err != nil {
		return nil, err
	}
	return snippet, nil
}

// editableSnippet mirrors editableAlias for snippets.
func (h *Handler) editableSnippet(ctx context.Context, r *http.Request, userID int64) (*workshopstore.Snippet, error) {
	snippet, err := h.snippetFromPath(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	coll, err := snippet.Collection()
	if err != nil {
		return nil, err
	}
	canEdit, err := coll.CanEdit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, &workshopstore.NotAllowedError{Reason: msgNotEditor}
	}
	return snippet, nil
}
