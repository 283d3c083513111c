package store

import (
	"log/slog"
	"time"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/internal/parallel"
)

// DefaultCacheSize is the default budget of the decoded frame cache in bytes.
const DefaultCacheSize = 256 << 20

// Option configures a Store.
type Option func(*options)

type options struct {
	cacheSize int64
	pool      *parallel.WorkerPool
	format    imgutil.Format
	delay     time.Duration
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{
		cacheSize: DefaultCacheSize,
		format:    imgutil.FormatPNG,
		delay:     frame.DefaultDelay,
	}
}

// WithCacheSize sets the decoded frame cache budget in bytes. Zero or less
// disables the cache.
func WithCacheSize(bytes int64) Option {
	return func(o *options) {
		o.cacheSize = bytes
	}
}

// WithPool sets the worker pool used to encode frames in parallel. Without
// a pool frames are written sequentially.
func WithPool(p *parallel.WorkerPool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithFormat sets the file format of committed frames.
func WithFormat(f imgutil.Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithDelay sets the frame delay used when a commit does not declare one.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.delay = d
		}
	}
}

// WithLogger sets the logger of this store. Without one the store logs
// through the package logger set by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
