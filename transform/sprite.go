package transform

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/animkit/frame"
	"github.com/gogpu/animkit/internal/blend"
	"github.com/gogpu/animkit/internal/parallel"
	"github.com/gogpu/animkit/palette"
)

// SpriteOptions controls sprite compositing.
type SpriteOptions struct {
	// Opacity scales the alpha of mapped pixels, within [0, 1].
	Opacity float64

	// ShowFrame keeps the original frame beneath the sprite layer instead
	// of leaving non-sprite pixels transparent.
	ShowFrame bool
}

// Validate checks the opacity range.
func (o SpriteOptions) Validate() error {
	if math.IsNaN(o.Opacity) || o.Opacity < 0 || o.Opacity > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidOpacity, o.Opacity)
	}
	return nil
}

// BuildSprite builds the overlay for one frame. A pixel whose original color
// is a key of t becomes the mapped color with alpha scaled by the opacity.
// Other pixels are transparent, or, with ShowFrame, the original pixel with
// the sprite composited over it.
func BuildSprite(img *image.NRGBA, t palette.Table, opts SpriteOptions) (*image.NRGBA, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return palette.Map(img, func(orig color.NRGBA) color.NRGBA {
		to, isSprite := t.Lookup(orig)
		switch {
		case isSprite && opts.ShowFrame:
			return blend.Over(orig, blend.ScaleAlpha(to, opts.Opacity))
		case isSprite:
			return blend.ScaleAlpha(to, opts.Opacity)
		case opts.ShowFrame:
			return orig
		}
		return color.NRGBA{}
	}), nil
}

// BuildSprites builds the overlay for every frame of seq on the pool,
// keeping indices and delays. A nil pool builds sequentially.
func BuildSprites(ctx context.Context, pool *parallel.WorkerPool, seq frame.Sequence, t palette.Table, opts SpriteOptions) (frame.Sequence, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := make(frame.Sequence, len(seq))
	err := parallel.ForEach(ctx, pool, len(seq), func(_ context.Context, i int) error {
		img, err := BuildSprite(seq[i].Image, t, opts)
		if err != nil {
			return err
		}
		out[i] = seq[i].WithImage(img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
