// internal/app/features/workshop/browse.go
package workshop

import (
	"maps"
	"net/http"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/app/system/paging"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/dalemusser/scripthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type browseResponse struct {
	Collections []collectionDTO `json:"collections"`
	Total       int64           `json:"total"`
	HasPrev     bool            `json:"has_prev"`
	HasNext     bool            `json:"has_next"`
	PrevCursor  string          `json:"prev_cursor"`
	NextCursor  string          `json:"next_cursor"`
}

// ServeBrowse handles GET /api/workshop/browse (with optional ?q= prefix
// search and ?tag= filter). Only PUBLISHED collections appear; keyset
// pagination runs on (name_ci, _id).
func (h *Handler) ServeBrowse(w http.ResponseWriter, r *http.Request) {
	q := query.Search(r, "q")
	tag := query.Get(r, "tag")
	after := query.Get(r, "after")
	before := query.Get(r, "before")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "browse collections")
	defer cancel()

	// Build base filter
	base := bson.M{"publish_state": models.StatePublished}
	var searchOr []bson.M
	if q != "" {
		fq := text.Fold(q)
		if fq != "" {
			hi := fq + "\uffff"
			searchOr = []bson.M{
				{"name_ci": bson.M{"$gte": fq, "$lt": hi}},
			}
			base["$or"] = searchOr
		}
	}
	if tag != "" {
		base["tags"] = tag
	}

	// Count total
	total, err := h.DB.Collection("workshop_collections").CountDocuments(ctx, base)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count published collections failed", err, "Unable to load collections.")
		return
	}

	// Clone base filter for pagination query
	f := maps.Clone(base)
	find := options.Find()
	sortField := "name_ci"

	cfg := paging.ConfigureKeyset(before, after)
	cfg.ApplyToFind(find, sortField)

	// Apply cursor conditions (handle $or clause specially)
	if ks := cfg.KeysetWindow(sortField); ks != nil {
		if len(searchOr) > 0 {
			f["$and"] = []bson.M{{"$or": searchOr}, ks}
			delete(f, "$or")
		} else {
			maps.Copy(f, ks)
		}
	}

	cur, err := h.DB.Collection("workshop_collections").Find(ctx, f, find)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "find published collections failed", err, "Unable to load collections.")
		return
	}
	defer cur.Close(ctx)

	var rows []models.Collection
	if err := cur.All(ctx, &rows); err != nil {
		h.ErrLog.LogServerError(w, r, "decode published collections failed", err, "Unable to load collections.")
		return
	}

	// Reverse if paging backwards
	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}

	page := paging.TrimPage(&rows, before, after)

	items := make([]collectionDTO, 0, len(rows))
	for _, row := range rows {
		wrapped := workshopstore.Collection{Collection: row}
		items = append(items, newCollectionDTO(&wrapped))
	}

	prevCur, nextCur := paging.BuildCursors(rows,
		func(c models.Collection) string { return c.NameCI },
		func(c models.Collection) primitive.ObjectID { return c.ID })

	apierrors.WriteJSON(w, http.StatusOK, browseResponse{
		Collections: items,
		Total:       total,
		HasPrev:     page.HasPrev,
		HasNext:     page.HasNext,
		PrevCursor:  prevCur,
		NextCursor:  nextCur,
	})
}
