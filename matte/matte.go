// Package matte removes image backgrounds.
//
// The matting itself is delegated to a [Matter], an opaque image-in,
// image-out capability that may fail. [Remove] applies a Matter to a batch
// of frames with bounded concurrency and keeps only the alpha channel of
// its result: dimensions and RGB of every pixel are preserved.
package matte

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/animkit/frame"
	"github.com/gogpu/animkit/internal/parallel"
)

// ErrDimensionMismatch is returned when a backend changes the image size.
var ErrDimensionMismatch = fmt.Errorf("%w: matte: backend changed image dimensions", frame.ErrIO)

// Matter computes an alpha matte. The returned image must have the same
// dimensions as the input; only its alpha channel is used.
type Matter interface {
	Matte(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error)
}

// MatterFunc adapts a function to the Matter interface.
type MatterFunc func(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error)

// Matte implements Matter.
func (f MatterFunc) Matte(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	return f(ctx, img)
}

// RemoveImage mattes a single image and returns a new image with the
// original RGB and the backend's alpha.
func RemoveImage(ctx context.Context, m Matter, img *image.NRGBA) (*image.NRGBA, error) {
	res, err := m.Matte(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: matte: %w", frame.ErrIO, err)
	}
	if res == nil || res.Rect.Dx() != img.Rect.Dx() || res.Rect.Dy() != img.Rect.Dy() {
		var got image.Point
		if res != nil {
			got = res.Rect.Size()
		}
		return nil, fmt.Errorf("%w: got %v, want %v", ErrDimensionMismatch, got, img.Rect.Size())
	}
	return withAlpha(img, res), nil
}

// withAlpha returns a copy of rgb whose alpha channel is taken from alpha.
func withAlpha(rgb, alpha *image.NRGBA) *image.NRGBA {
	w, h := rgb.Rect.Dx(), rgb.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		si := rgb.PixOffset(rgb.Rect.Min.X, rgb.Rect.Min.Y+y)
		ai := alpha.PixOffset(alpha.Rect.Min.X, alpha.Rect.Min.Y+y)
		di := y * out.Stride
		copy(out.Pix[di:di+w*4], rgb.Pix[si:si+w*4])
		for x := range w {
			out.Pix[di+x*4+3] = alpha.Pix[ai+x*4+3]
		}
	}
	return out
}

// Remove mattes every frame of seq on the pool. Either all frames succeed or
// the first failure is returned and no output is produced. Output frames
// keep their index and delay.
func Remove(ctx context.Context, pool *parallel.WorkerPool, seq frame.Sequence, m Matter) (frame.Sequence, error) {
	out := make(frame.Sequence, len(seq))
	err := parallel.ForEach(ctx, pool, len(seq), func(ctx context.Context, i int) error {
		f := seq[i]
		img, err := RemoveImage(ctx, m, f.Image)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f.Index, err)
		}
		slogger().Debug("matte: frame done", "index", f.Index)
		out[i] = f.WithImage(img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
