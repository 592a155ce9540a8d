// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// The worker writes through the Mongo client, so it stops first.
	if maintenance != nil {
		maintenance.Stop()
	}

	if deps.ScriptHubMongoClient != nil {
		logger.Info("disconnecting ScriptHub MongoDB client")
		if err := deps.ScriptHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
