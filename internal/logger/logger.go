package logger

import (
	"io"
	"os"
	"strings"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/constants"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/natefinch/lumberjack.v2"
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

// Configure rebuilds the logger once config is known: the configured level
// and, when LogFile is set, a rotating file next to stdout.
func Configure(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    constants.LogFileMaxSizeMB,
			MaxBackups: constants.LogFileMaxBackups,
			MaxAge:     constants.LogFileMaxAgeDays,
			Compress:   true,
		})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Str("service", constants.ServiceName).
		Logger().
		Level(level)
}

var Module = fx.Provide(Configure)
