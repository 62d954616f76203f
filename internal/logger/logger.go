package logger

import (
	"os"
	"progression-engine/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// ApplyLevel sets the process-wide level from LOG_LEVEL.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(ApplyLevel),
)
