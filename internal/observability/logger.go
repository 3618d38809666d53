package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func InitLogger(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// SetLevel applies a named level to the global logger; unknown names keep
// the current level.
func SetLevel(name string) {
	if lvl, err := zerolog.ParseLevel(name); err == nil && name != "" {
		zerolog.SetGlobalLevel(lvl)
	}
}
