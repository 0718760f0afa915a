// Package logging builds the zerolog loggers used by the toast CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func init() {
	zerolog.TimeFieldFormat = consoleTimeFormat
	zerolog.ErrorFieldName = "err"
}

// Config selects level and sinks.
type Config struct {
	// Level is trace, debug, info, warn or error. Unknown values mean warn.
	Level string
	// JSON writes structured lines instead of the console format.
	JSON bool
	// NoColor disables console colors.
	NoColor bool
	// File, when set, also appends JSON lines to this path.
	File string
}

// New builds a logger writing to w. The returned closer releases the log
// file, if any.
func New(cfg Config, w io.Writer) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = w
	if !cfg.JSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat, NoColor: cfg.NoColor}
	}

	closer := io.Closer(nopCloser{})
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file %q: %w", path, err)
		}
		out = zerolog.MultiLevelWriter(out, zerolog.SyncWriter(f))
		closer = f
	}

	l := zerolog.New(out).Level(ParseLevel(cfg.Level, zerolog.WarnLevel)).With().Timestamp().Logger()
	return l, closer, nil
}

// ParseLevel maps a level name to a zerolog level, falling back to def.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "OFF", "DISABLED":
		return zerolog.Disabled
	default:
		return def
	}
}

// Component returns l tagged with a component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("comp", name).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
