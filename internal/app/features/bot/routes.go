// internal/app/features/bot/routes.go
package bot

import (
	"github.com/dalemusser/scripthub/internal/app/system/botauth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, mw *botauth.Middleware) chi.Router {
	r := chi.NewRouter()

	// Every bot endpoint requires a bearer API token.
	r.Use(mw.Require)

	r.Get("/collection/{id}", h.ServeFullCollection)

	r.Put("/collection/{id}/guild/{guildID}", h.HandleActivate)
	r.Delete("/collection/{id}/guild/{guildID}", h.HandleDeactivate)
	r.Put("/collection/{id}/guild/{guildID}/alias_bindings", h.HandleSetGuildAliasBindings)
	r.Put("/collection/{id}/guild/{guildID}/snippet_bindings", h.HandleSetGuildSnippetBindings)

	r.Get("/guild/{guildID}/subscriptions", h.ServeGuildSubscriptions)
	r.Get("/user/{userID}/subscriptions", h.ServeUserSubscriptions)

	return r
}
