package logger

import (
	"io"
	"os"
	"time"

	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/rs/zerolog"
)

// Setup builds the root logger from runtime configuration and applies
// the zerolog globals (level, timestamp format). An unparseable
// LOG_LEVEL falls back to info instead of failing startup.
//
// LOG_FORMAT "pretty" selects human-readable console output for dev;
// anything else emits JSON lines.
func Setup(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var writer io.Writer = os.Stdout
	if cfg.LogFormat == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
