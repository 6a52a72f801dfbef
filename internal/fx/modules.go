package fx

import (
	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/config"
	"overwatch-tracker/internal/database"
	"overwatch-tracker/internal/logger"
	"overwatch-tracker/internal/notify"
	"overwatch-tracker/internal/repository"
	"overwatch-tracker/internal/server"
	"overwatch-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewSnapshotRepository),
	// api client + sink
	fx.Provide(api.NewOWClient),
	fx.Provide(notify.NewWebhookSink),
	// svc
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewTrackerService),
	fx.Provide(service.NewScheduler),
	// server
	fx.Provide(server.New),
)
