// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authdiscordfeature "github.com/dalemusser/scripthub/internal/app/features/authdiscord"
	botfeature "github.com/dalemusser/scripthub/internal/app/features/bot"
	errorsfeature "github.com/dalemusser/scripthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/scripthub/internal/app/features/health"
	tokensfeature "github.com/dalemusser/scripthub/internal/app/features/tokens"
	userinfofeature "github.com/dalemusser/scripthub/internal/app/features/userinfo"
	workshopfeature "github.com/dalemusser/scripthub/internal/app/features/workshop"
	oauthstatestore "github.com/dalemusser/scripthub/internal/app/store/oauthstate"
	tokenstore "github.com/dalemusser/scripthub/internal/app/store/tokens"
	"github.com/dalemusser/scripthub/internal/app/system/auth"
	"github.com/dalemusser/scripthub/internal/app/system/botauth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// ScriptHub serves two surfaces from one router: the dashboard JSON API
// under /api (session auth via Discord OAuth) and the bot API under /bot
// (bearer token auth). Everything is JSON; there is no server-rendered HTML.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ScriptHubMongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ScriptHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Discord OAuth sign-in for the dashboard
	authHandler := authdiscordfeature.NewHandler(
		sessionMgr,
		oauthstatestore.New(db),
		appCfg.DiscordClientID,
		appCfg.DiscordClientSecret,
		appCfg.BaseURL,
		logger,
	)
	r.Mount("/auth", authdiscordfeature.Routes(authHandler))

	// Session identity for the dashboard frontend
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Workshop dashboard API: collections, aliases, snippets, subscriptions
	workshopHandler := workshopfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/workshop", workshopfeature.Routes(workshopHandler, sessionMgr))

	// Personal API tokens for bot integrations
	tokensHandler := tokensfeature.NewHandler(tokenstore.New(db), errLog, logger)
	r.Mount("/api/me/tokens", tokensfeature.Routes(tokensHandler, sessionMgr))

	// Bot API: token-authenticated reads and guild lifecycle
	botAuth := botauth.New(tokenstore.New(db), logger)
	botHandler := botfeature.NewHandler(db, errLog, logger)
	r.Mount("/bot/workshop", botfeature.Routes(botHandler, botAuth))

	return r, nil
}
