package router

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rosterhq/roster/config"
	"github.com/rosterhq/roster/internal/application"
	"github.com/rosterhq/roster/internal/infrastructure/postgres"
	handlers "github.com/rosterhq/roster/internal/interface/http"
	"github.com/rosterhq/roster/internal/router/modules"
)

// Deps carries every collaborator the route modules need. main builds it
// once at startup and hands it in, so nothing here reaches for globals.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	Pub    application.Publisher
}

// InitModules wires repositories, services and handlers from deps and adds
// the resulting modules to the registry. Call once during startup, then
// Registry.RegisterAll mounts the routes.
func InitModules(r *Registry, deps Deps) {
	userRepo := postgres.NewUserRepository(deps.Pool)
	userSvc := application.NewService(
		userRepo,
		deps.Redis,
		deps.Logger,
		deps.ES,
		deps.Cfg.ESUsersIndex,
		deps.Pub,
		deps.Cfg.MailSendEnabled,
	)
	userHandler := handlers.NewUserHandler(userSvc, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Redis)

	r.Add(modules.NewUserModule(userHandler, deps.Redis))
	r.Add(modules.NewHealthModule(healthHandler))
	if deps.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(deps.Redis))
	}
}
