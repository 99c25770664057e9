package cli

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the console logger used by every command. Logs go to
// stderr so stdout stays clean for report output.
func newLogger(levelStr string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger().
		Level(level)
}
