// internal/app/features/authdiscord/routes.go
package authdiscord

import "github.com/go-chi/chi/v5"

// Routes returns the router for Discord OAuth endpoints.
// The login and callback routes are public; logout works for any session.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// GET /auth/discord - Initiate Discord OAuth flow
	r.Get("/discord", h.ServeLogin)

	// GET /auth/discord/callback - Handle Discord OAuth callback
	r.Get("/discord/callback", h.ServeCallback)

	// POST /auth/logout - Clear the session
	r.Post("/logout", h.ServeLogout)

	return r
}
