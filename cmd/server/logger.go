package main

import (
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/platform/metrics"
)

// setupLogging builds the transport facade from the configured transports
// and installs the application logger as the slog default. Transport
// panics are counted in the log transport failures metric.
func setupLogging(cfg *config.Config, provider config.Provider) (*logger.Facade, *slog.Logger) {
	facade := logger.NewFacade(provider, logger.WithFailureHook(func(kind logger.Kind, _ error) {
		metrics.IncLogTransportFailure(string(kind))
	}))
	facade.Initialize(logger.ParseKinds(cfg.Logger.Transports))

	log := logger.Setup(facade, cfg.Server.LogLevel)
	kinds := make([]string, 0, len(facade.Kinds()))
	for _, k := range facade.Kinds() {
		kinds = append(kinds, string(k))
	}
	log.Info("logging initialized",
		slog.Any("configured_transports", cfg.Logger.Transports),
		slog.Any("active_transports", kinds),
		slog.String("level", cfg.Server.LogLevel))
	return facade, log
}
