// Package logging builds the application logger.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/artistmusic/internal/config"
)

// Component prefixes.
const (
	Store = "store"
	Audio = "audio"
	UI    = "ui"
)

// New returns a logger configured from cfg and a function releasing its
// output. With cfg.File set, entries go to a size-rotated logfmt file;
// otherwise they go to w, which defaults to [os.Stderr].
func New(cfg config.LogConfig, w io.Writer) (*log.Logger, func() error) {
	closeFn := func() error { return nil }
	opts := log.Options{ReportTimestamp: true}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = rotator
		closeFn = rotator.Close
		opts.Formatter = log.LogfmtFormatter
	}
	if w == nil {
		w = os.Stderr
	}

	l := log.NewWithOptions(w, opts)
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	l.SetLevel(level)
	return l, closeFn
}

// For returns a child logger tagged with a component prefix.
func For(l *log.Logger, component string) *log.Logger {
	return l.WithPrefix(component)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
