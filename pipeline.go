package animkit

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gogpu/animkit/catalog"
	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/internal/parallel"
	"github.com/gogpu/animkit/matte"
	"github.com/gogpu/animkit/palette"
	"github.com/gogpu/animkit/store"
)

// Pipeline runs frame transforms against an animation store. It is safe for
// concurrent use.
type Pipeline struct {
	store   *store.Store
	writer  *store.Writer
	catalog *catalog.Catalog
	pool    *parallel.WorkerPool
	matter  matte.Matter
	epsilon uint8
	delay   time.Duration
	log     *slog.Logger
}

// New opens a pipeline on the store rooted at root.
func New(root string, opts ...Option) (*Pipeline, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	format, err := imgutil.ParseFormat(o.format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !format.CanEncode() {
		return nil, fmt.Errorf("%w: cannot write %s frames", ErrValidation, format)
	}
	if o.delay <= 0 {
		return nil, fmt.Errorf("%w: delay must be positive, got %v", ErrValidation, o.delay)
	}
	if o.matter == nil {
		return nil, fmt.Errorf("%w: no background removal backend", ErrValidation)
	}

	pool := parallel.NewWorkerPool(o.workers)
	st, err := store.Open(root,
		store.WithPool(pool),
		store.WithFormat(format),
		store.WithDelay(o.delay),
		store.WithCacheSize(o.cacheSize),
		store.WithLogger(o.logger),
	)
	if err != nil {
		pool.Close()
		return nil, err
	}

	p := &Pipeline{
		store:   st,
		writer:  st.Writer(),
		pool:    pool,
		matter:  o.matter,
		epsilon: o.epsilon,
		delay:   o.delay,
		log:     o.logger,
	}

	catalogPath := filepath.Join(st.Root(), catalog.FileName)
	if o.catalogPath != nil {
		catalogPath = *o.catalogPath
	}
	if catalogPath != "" {
		p.catalog, err = catalog.Open(catalogPath)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	p.logger().Debug("animkit: pipeline opened",
		"root", st.Root(), "workers", pool.Workers(), "format", format, "catalog", catalogPath)
	return p, nil
}

// Close releases the worker pool and the catalog.
func (p *Pipeline) Close() error {
	p.pool.Close()
	if p.catalog != nil {
		return p.catalog.Close()
	}
	return nil
}

// Store returns the underlying animation store.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

func (p *Pipeline) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return Logger()
}

// List returns every stored animation.
func (p *Pipeline) List() ([]store.Summary, error) {
	return p.store.List()
}

// Info describes one animation.
func (p *Pipeline) Info(name string) (store.Summary, error) {
	return p.store.Info(name)
}

// Delete removes an animation and its provenance.
func (p *Pipeline) Delete(name string) error {
	if err := p.writer.Delete(name); err != nil {
		return err
	}
	if p.catalog != nil {
		if n, err := store.ValidateName(name); err == nil {
			if err := p.catalog.Delete(n); err != nil {
				p.logger().Warn("animkit: delete catalog record", "name", n, "err", err)
			}
		}
	}
	return nil
}

// History returns the provenance records of an animation, oldest first.
func (p *Pipeline) History(name string) ([]catalog.Record, error) {
	if p.catalog == nil {
		return nil, fmt.Errorf("%w: catalog disabled", ErrNotFound)
	}
	n, err := store.ValidateName(name)
	if err != nil {
		return nil, err
	}
	return p.catalog.History(n)
}

// Provenance returns the latest provenance record of an animation.
func (p *Pipeline) Provenance(name string) (catalog.Record, error) {
	if p.catalog == nil {
		return catalog.Record{}, fmt.Errorf("%w: catalog disabled", ErrNotFound)
	}
	n, err := store.ValidateName(name)
	if err != nil {
		return catalog.Record{}, err
	}
	return p.catalog.Get(n)
}

// Catalogued returns the sorted names of every animation with provenance.
// Animations written outside the pipeline have none.
func (p *Pipeline) Catalogued() ([]string, error) {
	if p.catalog == nil {
		return nil, nil
	}
	return p.catalog.Names()
}

// Colors returns the distinct colors of an animation by descending pixel
// count. An empty region covers the whole frame.
func (p *Pipeline) Colors(ctx context.Context, name string, region image.Rectangle) ([]palette.ColorCount, error) {
	seq, err := p.loadFrames(ctx, name)
	if err != nil {
		return nil, err
	}
	if region.Empty() {
		return palette.ExtractFrames(seq).Sorted(), nil
	}
	return palette.ExtractRegion(region, seq.Images()...).Sorted(), nil
}

// SaveSpriteImage stores a single externally rendered sprite. See
// [store.Writer.SaveSpriteImage].
func (p *Pipeline) SaveSpriteImage(name, frameName string, data []byte) (string, error) {
	return p.writer.SaveSpriteImage(name, frameName, data)
}

// checkTarget validates the name of a new animation and rejects taken names
// before any work is done.
func (p *Pipeline) checkTarget(name string) (string, error) {
	n, err := store.ValidateName(name)
	if err != nil {
		return "", err
	}
	if p.store.Exists(n) {
		return "", fmt.Errorf("animation %q: %w", n, ErrDuplicateName)
	}
	return n, nil
}

// load decodes every frame of src on the pool.
func (p *Pipeline) load(ctx context.Context, src frame.Source) (frame.Sequence, error) {
	seq := make(frame.Sequence, src.Len())
	err := parallel.ForEach(ctx, p.pool, len(seq), func(_ context.Context, i int) error {
		f, err := src.Frame(i)
		if err != nil {
			return err
		}
		seq[i] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func (p *Pipeline) loadFrames(ctx context.Context, name string) (frame.Sequence, error) {
	anim, err := p.store.Animation(name)
	if err != nil {
		return nil, err
	}
	return p.load(ctx, anim)
}

func (p *Pipeline) loadSprites(ctx context.Context, name string) (frame.Sequence, error) {
	sprites, err := p.store.Sprites(name)
	if err != nil {
		return nil, err
	}
	return p.load(ctx, sprites)
}

// record stores provenance. Failures are logged, not returned: the
// animation is already published.
func (p *Pipeline) record(r catalog.Record) {
	if p.catalog == nil {
		return
	}
	if err := p.catalog.Put(r); err != nil {
		p.logger().Warn("animkit: write catalog record", "name", r.Name, "op", r.Op, "err", err)
	}
}

// commit publishes a new animation and records its provenance.
func (p *Pipeline) commit(ctx context.Context, req store.CommitRequest, r catalog.Record) (store.Summary, error) {
	sum, err := p.writer.Commit(ctx, req)
	if err != nil {
		return store.Summary{}, err
	}
	r.Name = sum.Name
	r.FrameCount = sum.FrameCount
	r.SpriteCount = len(sum.Sprites)
	p.record(r)
	return sum, nil
}
