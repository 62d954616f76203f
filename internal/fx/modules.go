package fx

import (
	"database/sql"
	"progression-engine/internal/api"
	"progression-engine/internal/catalog"
	"progression-engine/internal/config"
	"progression-engine/internal/database"
	"progression-engine/internal/db"
	"progression-engine/internal/domain"
	"progression-engine/internal/listening"
	"progression-engine/internal/logger"
	"progression-engine/internal/repository"
	"progression-engine/internal/server"
	"progression-engine/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// ProvidePlaySource puts the TTL cache in front of the listening client.
func ProvidePlaySource(client *api.ListeningClient, cfg *config.Config, logger zerolog.Logger) (listening.PlaySource, error) {
	return listening.NewCache(client, cfg, logger)
}

// Storage is everything up to the repositories. The CLI uses it on its own.
var Storage = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(domain.NewSystemClock),
	fx.Provide(catalog.New),
	// repos
	fx.Provide(repository.NewTxRunner),
	fx.Provide(repository.NewQuestRepository),
	fx.Provide(repository.NewStateRepository),
	fx.Provide(repository.NewBadgeRepository),
	fx.Provide(repository.NewLeaderboardRepository),
	fx.Provide(repository.NewRewardRepository),
	fx.Provide(repository.NewProfileRepository),
)

var Module = fx.Options(
	Storage,
	// api client
	fx.Provide(api.NewListeningClient),
	fx.Provide(ProvidePlaySource),
	// svc
	fx.Provide(service.NewUserLocks),
	fx.Provide(service.NewPeriodGenerator),
	fx.Provide(service.NewLedgerService),
	fx.Provide(service.NewRewardService),
	fx.Provide(service.NewStreakService),
	fx.Provide(service.NewQuestService),
	fx.Provide(service.NewVerificationService),
	// server
	fx.Provide(server.NewProgressionServer),
)
