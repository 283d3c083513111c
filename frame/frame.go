// Package frame defines the vocabulary shared by every stage of the
// animation pipeline: frames, ordered frame sequences, the on-disk frame
// file naming scheme and the error taxonomy.
//
// A Frame is immutable once constructed. Transforms never modify the pixel
// buffer of a Frame they receive; they allocate a new one.
package frame

import (
	"context"
	"fmt"
	"image"
	"time"
)

// Frame is one raster image of an animation plus its position and delay.
type Frame struct {
	// Index is the zero-based position within the owning animation.
	Index int

	// Delay is how long the frame is displayed.
	Delay time.Duration

	// Image holds non-premultiplied RGBA pixels. Bounds always start at (0, 0).
	Image *image.NRGBA
}

// New creates a frame.
func New(index int, delay time.Duration, img *image.NRGBA) *Frame {
	return &Frame{Index: index, Delay: delay, Image: img}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.Image.Rect.Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.Image.Rect.Dy()
}

// WithImage returns a new frame with the same index and delay but different pixels.
func (f *Frame) WithImage(img *image.NRGBA) *Frame {
	return &Frame{Index: f.Index, Delay: f.Delay, Image: img}
}

// Source is random access to an ordered frame sequence. Implementations may
// load frames lazily, so Frame can fail.
type Source interface {
	// Len returns the number of frames.
	Len() int

	// Frame returns the frame at position i, 0 <= i < Len().
	Frame(i int) (*Frame, error)
}

// Sequence is an in-memory Source.
type Sequence []*Frame

// Len implements Source.
func (s Sequence) Len() int {
	return len(s)
}

// Frame implements Source.
func (s Sequence) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(s) {
		return nil, fmt.Errorf("%w: frame %d of %d", ErrNotFound, i, len(s))
	}
	return s[i], nil
}

// Images returns the pixel buffers of the sequence in order.
func (s Sequence) Images() []*image.NRGBA {
	imgs := make([]*image.NRGBA, len(s))
	for i, f := range s {
		imgs[i] = f.Image
	}
	return imgs
}

// Renumber returns a copy of s whose frames are indexed 0..len(s)-1 in slice
// order. Pixel buffers are shared, not copied.
func Renumber(s Sequence) Sequence {
	out := make(Sequence, len(s))
	for i, f := range s {
		out[i] = &Frame{Index: i, Delay: f.Delay, Image: f.Image}
	}
	return out
}

// Collect loads frames [start, end) of src into memory.
func Collect(ctx context.Context, src Source, start, end int) (Sequence, error) {
	if start < 0 || end > src.Len() || start > end {
		return nil, fmt.Errorf("%w: range [%d, %d) of %d frames", ErrValidation, start, end, src.Len())
	}
	out := make(Sequence, 0, end-start)
	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := src.Frame(i)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
