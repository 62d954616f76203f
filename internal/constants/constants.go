package constants

import "time"

const (
	ListeningCacheTTL  = 2 * time.Minute
	ListeningCacheSize = 1024
	ListeningPageSize  = 200
	ListeningMaxPages  = 5
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBusyTimeoutMS   = 5000
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// StateSaveAttempts bounds optimistic retries of a game state write.
	StateSaveAttempts      = 3
	AnomalyLegendaryPerDay = 3
	AnomalyWindow          = 24 * time.Hour
	LeaderboardDefaultSize = 25
	LeaderboardMaxSize     = 100
)

// ConsolationDust is granted when a rarity is rolled but the catalog has no
// item for it.
var ConsolationDust = map[string]int64{
	"common":    5,
	"rare":      15,
	"epic":      50,
	"legendary": 150,
}
