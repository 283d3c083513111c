package animkit

import (
	"log/slog"
	"time"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/matte"
	"github.com/gogpu/animkit/store"
)

// Option configures a Pipeline during creation.
//
// Example:
//
//	p, err := animkit.New("animations",
//	    animkit.WithWorkers(4),
//	    animkit.WithMatter(matte.Command{Args: []string{"rembg", "i"}}),
//	)
type Option func(*options)

// options holds optional configuration for Pipeline creation.
type options struct {
	workers     int
	epsilon     uint8
	delay       time.Duration
	format      string
	matter      matte.Matter
	catalogPath *string
	cacheSize   int64
	logger      *slog.Logger
}

// defaultOptions returns the default pipeline options.
func defaultOptions() options {
	return options{
		workers:   0, // GOMAXPROCS
		delay:     frame.DefaultDelay,
		format:    imgutil.FormatPNG.String(),
		matter:    matte.ColorKey{},
		cacheSize: store.DefaultCacheSize,
	}
}

// WithWorkers sets the number of goroutines used for per-frame work.
// Zero or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithEpsilon sets the alpha at or below which a pixel counts as
// transparent when computing crop boxes. The default is 0.
func WithEpsilon(alpha uint8) Option {
	return func(o *options) {
		o.epsilon = alpha
	}
}

// WithDelay sets the frame delay of new animations when a request does not
// declare one. The default is 30ms.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithFormat sets the file format of written frames: "png" (default) or
// "tiff". Other readable formats lose alpha or colors and are rejected.
func WithFormat(name string) Option {
	return func(o *options) {
		o.format = name
	}
}

// WithMatter sets the background removal backend. The default is a
// [matte.ColorKey] keyed on the top-left pixel.
func WithMatter(m matte.Matter) Option {
	return func(o *options) {
		o.matter = m
	}
}

// WithCatalog sets the provenance catalog file. An empty path disables the
// catalog. The default is [catalog.FileName] inside the root.
func WithCatalog(path string) Option {
	return func(o *options) {
		o.catalogPath = &path
	}
}

// WithCacheSize sets the decoded frame cache budget in bytes. Zero disables
// the cache.
func WithCacheSize(bytes int64) Option {
	return func(o *options) {
		o.cacheSize = bytes
	}
}

// WithLogger sets the logger of one Pipeline: its own events and those of
// its store. The matte and ingest packages have no per-pipeline state and
// always log through the logger installed by [SetLogger]. The default is
// [Logger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
