package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig selects the level, format and destination of the logger.
type LoggerConfig struct {
	Level  string
	Format string // console or json
	Out    io.Writer
}

// NewLogger builds a zerolog logger. Output defaults to stderr so stdout
// stays free for command output.
func NewLogger(cfg LoggerConfig) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case "", "console":
		cw := zerolog.NewConsoleWriter()
		cw.Out = out
		cw.TimeFormat = time.DateTime
		out = cw
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q: must be console or json", cfg.Format)
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", "tdeck").
		Logger(), nil
}
