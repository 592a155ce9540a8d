// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/scripthub/internal/app/store/oauthstate"
	workshopstore "github.com/dalemusser/scripthub/internal/app/store/workshop"
	"github.com/dalemusser/scripthub/internal/app/system/timeouts"
	"github.com/dalemusser/scripthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// maintenanceInterval is how often the background worker sweeps OAuth
// states and reconciles subscriber counters.
const maintenanceInterval = time.Hour

// maintenance holds the background worker between the startup and shutdown
// hooks, which share no other state.
var maintenance *workers.Maintenance

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to warm caches or perform any app-wide setup that depends on config
// and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Handler deadlines can be tuned per environment without a redeploy.
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("handler timeouts overridden from environment", zap.Int("count", n))
	}

	// The TTL monitor only runs once a minute and not at all while the app
	// is down, so sweep stale OAuth state docs once at startup.
	states := oauthstate.New(deps.ScriptHubMongoDatabase)
	if deleted, err := states.CleanupExpired(ctx); err != nil {
		logger.Warn("oauth state cleanup failed", zap.Error(err))
	} else if deleted > 0 {
		logger.Info("removed expired oauth states", zap.Int64("count", deleted))
	}

	maintenance = workers.NewMaintenance(states,
		workshopstore.New(deps.ScriptHubMongoDatabase), logger, maintenanceInterval)
	maintenance.Start()

	return nil
}
