// internal/app/features/workshop/routes.go
package workshop

import (
	"github.com/dalemusser/scripthub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public reads. Collection visibility rules still apply, so private
	// collections read as 404 here.
	r.Get("/browse", h.ServeBrowse)
	r.Get("/collection/{id}", h.ServeCollection)
	r.Get("/alias/{id}", h.ServeAlias)
	r.Get("/snippet/{id}", h.ServeSnippet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// MINE
		pr.Get("/collections/me", h.ServeMyCollections)
		pr.Get("/subscriptions/me", h.ServeMySubscriptions)

		// COLLECTIONS
		pr.Post("/collection", h.HandleCreate)
		pr.Patch("/collection/{id}", h.HandlePatch)
		pr.Delete("/collection/{id}", h.HandleDelete)
		pr.Patch("/collection/{id}/state", h.HandleSetState)
		pr.Put("/collection/{id}/tags", h.HandleSetTags)
		pr.Get("/collection/{id}/stats", h.ServeStats)

		// SUBSCRIPTIONS + BINDINGS
		pr.Get("/collection/{id}/subscription", h.ServeSubscription)
		pr.Put("/collection/{id}/subscription", h.HandleSubscribe)
		pr.Delete("/collection/{id}/subscription", h.HandleUnsubscribe)
		pr.Put("/collection/{id}/subscription/alias_bindings", h.HandleSetAliasBindings)
		pr.Put("/collection/{id}/subscription/snippet_bindings", h.HandleSetSnippetBindings)

		// EDITORS
		pr.Get("/collection/{id}/editors", h.ServeEditors)
		pr.Put("/collection/{id}/editor/{userID}", h.HandleAddEditor)
		pr.Delete("/collection/{id}/editor/{userID}", h.HandleRemoveEditor)

		// ALIASES
		pr.Post("/collection/{id}/alias", h.HandleCreateAlias)
		pr.Post("/alias/{id}/subcommand", h.HandleCreateSubcommand)
		pr.Delete("/alias/{id}", h.HandleDeleteAlias)
		pr.Put("/alias/{id}/code", h.HandleSetAliasCode)
		pr.Put("/alias/{id}/docs", h.HandleSetAliasDocs)
		pr.Post("/alias/{id}/entitlements", h.HandleAddAliasEntitlement)
		pr.Delete("/alias/{id}/entitlements/{entityType}/{entityID}", h.HandleRemoveAliasEntitlement)

		// SNIPPETS
		pr.Post("/collection/{id}/snippet", h.HandleCreateSnippet)
		pr.Delete("/snippet/{id}", h.HandleDeleteSnippet)
		pr.Put("/snippet/{id}/code", h.HandleSetSnippetCode)
		pr.Put("/snippet/{id}/docs", h.HandleSetSnippetDocs)
		pr.Post("/snippet/{id}/entitlements", h.HandleAddSnippetEntitlement)
		pr.Delete("/snippet/{id}/entitlements/{entityType}/{entityID}", h.HandleRemoveSnippetEntitlement)
	})

	return r
}
