// Package logger builds the charmbracelet logger used by the sqltypes tool.
// Library packages never log; only the command and the self-check do.
package logger

import (
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/arkilian/sqltypes/internal/config"
)

// Level converts a configured level name into a charm log level. Unknown
// names fall back to info.
func Level(name string) charmlog.Level {
	level, err := charmlog.ParseLevel(name)
	if err != nil {
		return charmlog.InfoLevel
	}
	return level
}

// New creates a logger writing to out, or to stderr when out is nil.
func New(cfg config.LogConfig, out io.Writer) *charmlog.Logger {
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           Level(cfg.Level),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *charmlog.Logger {
	return charmlog.NewWithOptions(io.Discard, charmlog.Options{Level: charmlog.FatalLevel})
}
