package logging

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// New builds the root logger. Components derive their own loggers via
// Component so every line carries a stable "component" field.
func New(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: parse level %q: %w", level, err)
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(lvl)
	return logger, nil
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
