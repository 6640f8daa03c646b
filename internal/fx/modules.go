package fx

import (
	"siege-tracker/internal/config"
	"siege-tracker/internal/demo"
	"siege-tracker/internal/logger"
	"siege-tracker/internal/server"
	"siege-tracker/internal/service"
	"siege-tracker/internal/ubi"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// upstream access layer
	fx.Provide(ubi.NewHTTPClient),
	fx.Provide(ubi.NewSessionManager),
	fx.Provide(ubi.NewClient),
	// svc
	fx.Provide(demo.NewGenerator),
	fx.Provide(service.NewModeService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewSeasonalService),
	fx.Provide(service.NewBatchService),
	// server
	fx.Provide(server.New),
)
