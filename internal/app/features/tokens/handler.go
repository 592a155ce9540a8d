// internal/app/features/tokens/handler.go
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/scripthub/internal/app/features/errors"
	tokenstore "github.com/dalemusser/scripthub/internal/app/store/tokens"
	"github.com/dalemusser/scripthub/internal/app/system/auth"
	"github.com/dalemusser/scripthub/internal/app/system/limits"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxNameLen bounds the label users attach to a token.
const maxNameLen = 100

// Handler serves API token management for the signed-in user.
type Handler struct {
	Tokens *tokenstore.Store
	ErrLog *apierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new tokens handler.
func NewHandler(store *tokenstore.Store, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tokens: store,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeList handles GET /api/me/tokens.
// Returns the caller's tokens, newest first, revoked ones included. Secret
// hashes never appear in the response.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tokens.ListByUser(ctx, user.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list api tokens failed", err, "A database error occurred.")
		return
	}
	if list == nil {
		list = []tokenstore.Token{}
	}

	apierrors.WriteJSON(w, http.StatusOK, list)
}

// createRequest is the body for POST /api/me/tokens.
type createRequest struct {
	Name string `json:"name"`
}

// createResponse carries the one-time plaintext alongside the stored record.
type createResponse struct {
	tokenstore.Token
	Plaintext string `json:"token"`
}

// HandleCreate handles POST /api/me/tokens.
// Issues a new token and returns its plaintext form. The plaintext is shown
// exactly once; only the bcrypt hash is stored.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	// Limit request body size
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.BadRequest(w, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apierrors.BadRequest(w, "token name is required")
		return
	}
	if len(name) > maxNameLen {
		apierrors.BadRequest(w, "token name is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	plaintext, tok, err := h.Tokens.Issue(ctx, user.ID, name)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue api token failed", err, "Unable to create token.")
		return
	}

	h.Log.Info("api token issued",
		zap.Int64("user_id", user.ID),
		zap.String("token_id", tok.TokenID),
		zap.String("name", name))

	apierrors.WriteJSON(w, http.StatusCreated, createResponse{Token: tok, Plaintext: plaintext})
}

// HandleRevoke handles DELETE /api/me/tokens/{id}.
// Revocation is permanent; a revoked token fails verification but stays
// listed so users can see what they disabled.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.BadRequest(w, "invalid token id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tokens.Revoke(ctx, id, user.ID); err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			apierrors.NotFound(w, "token not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "revoke api token failed", err, "Unable to revoke token.")
		return
	}

	h.Log.Info("api token revoked",
		zap.Int64("user_id", user.ID),
		zap.String("id", id.Hex()))

	w.WriteHeader(http.StatusNoContent)
}
