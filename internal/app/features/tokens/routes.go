// internal/app/features/tokens/routes.go
package tokens

import (
	"github.com/dalemusser/scripthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Token management is always tied to the signed-in session
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleRevoke)
	})

	return r
}
