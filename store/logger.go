package store

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// logger returns the logger of the store, falling back to the package logger.
func (s *Store) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return slogger()
}

// SetLogger sets the package logger. Nil restores the default, which
// discards everything.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}
