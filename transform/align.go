package transform

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
)

// Range is the half-open frame range [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of frames in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Validate checks 0 <= Start < End <= count.
func (r Range) Validate(count int) error {
	if r.Start < 0 || r.Start >= r.End || r.End > count {
		return fmt.Errorf("%w: [%d, %d) of %d frames", ErrInvalidRange, r.Start, r.End, count)
	}
	return nil
}

// Alignment limits. Offsets beyond MaxOffset on either axis, and batches
// whose grown canvas exceeds MaxCanvasSide, are rejected with
// ErrInvalidOffset.
const (
	MaxOffset     = 1 << 12
	MaxCanvasSide = 1 << 15
)

// Offset is a center displacement in pixels. Positive X moves content
// right, positive Y moves it down.
type Offset struct {
	X, Y int
}

// Offsets holds explicit center offsets keyed by source frame index. A frame
// without an entry inherits the nearest preceding entry, or zero.
type Offsets map[int]Offset

// Validate rejects negative frame indices and offsets beyond MaxOffset.
func (o Offsets) Validate() error {
	for i, v := range o {
		if i < 0 {
			return fmt.Errorf("%w: frame index %d", ErrInvalidOffset, i)
		}
		if v.X < -MaxOffset || v.X > MaxOffset || v.Y < -MaxOffset || v.Y > MaxOffset {
			return fmt.Errorf("%w: frame %d offset (%d,%d) exceeds %d pixels", ErrInvalidOffset, i, v.X, v.Y, MaxOffset)
		}
	}
	return nil
}

// Resolve returns the effective offset of every frame in [start, end),
// carrying the current offset forward across a single pass.
func (o Offsets) Resolve(start, end int) []Offset {
	keys := make([]int, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]Offset, 0, max(end-start, 0))
	var current Offset
	k := 0
	for i := start; i < end; i++ {
		for k < len(keys) && keys[k] <= i {
			current = o[keys[k]]
			k++
		}
		out = append(out, current)
	}
	return out
}

// Layout is the shared canvas and per-frame placement of an aligned batch.
type Layout struct {
	Width, Height int
	Origins       []image.Point
}

// Plan computes the layout for frames of the given sizes and effective offsets.
func Plan(sizes []image.Point, offsets []Offset) Layout {
	var maxW, maxH, maxDX, maxDY int
	for i, s := range sizes {
		maxW = max(maxW, s.X)
		maxH = max(maxH, s.Y)
		maxDX = max(maxDX, abs(offsets[i].X))
		maxDY = max(maxDY, abs(offsets[i].Y))
	}

	l := Layout{
		Width:   maxW + 2*maxDX,
		Height:  maxH + 2*maxDY,
		Origins: make([]image.Point, len(sizes)),
	}
	for i, s := range sizes {
		l.Origins[i] = image.Pt(
			maxDX+offsets[i].X+(maxW-s.X)/2,
			maxDY+offsets[i].Y+(maxH-s.Y)/2,
		)
	}
	return l
}

// Align loads frames r of src and places each on a common transparent
// canvas so that its center is shifted by its effective offset. Output
// frames keep their source index and delay.
func Align(ctx context.Context, src frame.Source, r Range, offsets Offsets) (frame.Sequence, error) {
	if err := r.Validate(src.Len()); err != nil {
		return nil, err
	}
	if err := offsets.Validate(); err != nil {
		return nil, err
	}

	in, err := frame.Collect(ctx, src, r.Start, r.End)
	if err != nil {
		return nil, err
	}

	sizes := make([]image.Point, len(in))
	for i, f := range in {
		sizes[i] = image.Pt(f.Width(), f.Height())
	}
	layout := Plan(sizes, offsets.Resolve(r.Start, r.End))
	if layout.Width > MaxCanvasSide || layout.Height > MaxCanvasSide {
		return nil, fmt.Errorf("%w: aligned canvas %dx%d exceeds %d pixels",
			ErrInvalidOffset, layout.Width, layout.Height, MaxCanvasSide)
	}

	out := make(frame.Sequence, len(in))
	for i, f := range in {
		canvas, err := imgutil.NewCanvas(layout.Width, layout.Height)
		if err != nil {
			return nil, fmt.Errorf("transform: align frame %d: %w", f.Index, err)
		}
		imgutil.Copy(canvas, layout.Origins[i], f.Image, image.Rect(0, 0, f.Width(), f.Height()))
		out[i] = f.WithImage(canvas)
	}
	return out, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
