// internal/app/features/bot/handler.go
package bot

import (
	"context"
	"net/http"
	"strconv"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the bot-facing workshop API. Requests on this surface
// carry an API token (botauth.Require in routes.go), act with system
// trust, and skip the dashboard's visibility rules: the bot resolves
// collections its subscribers already installed, private ones included.
type Handler struct {
	DB       *mongo.Database
	Workshop *workshopstore.Store
	ErrLog   *apierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler creates a bot API handler with its store.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Workshop: workshopstore.New(db),
		ErrLog:   errLog,
		Log:      logger,
	}
}

// collectionFromPath loads the collection named by the {id} URL
// parameter. Malformed ids read as missing collections.
func (h *Handler) collectionFromPath(ctx context.Context, r *http.Request) (*workshopstore.Collection, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return nil, workshopstore.ErrCollectionNotFound
	}
	return h.Workshop.CollectionByID(ctx, id)
}

// snowflakeParam parses the named URL parameter as a Discord snowflake.
func snowflakeParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}
