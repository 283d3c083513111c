package animkit

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/animkit/ingest"
	"github.com/gogpu/animkit/matte"
	"github.com/gogpu/animkit/store"
)

var (
	discard   = slog.New(slog.DiscardHandler)
	loggerPtr atomic.Pointer[slog.Logger]
)

func init() {
	loggerPtr.Store(discard)
}

// SetLogger routes the log output of animkit and its store, matte and
// ingest packages to l. Nil restores the default, which discards
// everything. Safe for concurrent use.
//
// Levels:
//   - [slog.LevelDebug]: frame loads, cache evictions, backend output
//   - [slog.LevelInfo]: animations committed, deleted or ingested
//   - [slog.LevelWarn]: failed cleanup and catalog writes
//
//	animkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discard
	}
	loggerPtr.Store(l)

	store.SetLogger(l)
	matte.SetLogger(l)
	ingest.SetLogger(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
