package transform

import (
	"image"
	"image/color"
	"time"

	"github.com/gogpu/animkit/frame"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// patterned returns a w x h image whose pixels all differ, so any shift or
// corruption is visible.
func patterned(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x) + seed, G: uint8(y), B: seed, A: 200})
		}
	}
	return img
}

// sequence returns n frames of size w x h with distinct content.
func sequence(n, w, h int) frame.Sequence {
	seq := make(frame.Sequence, n)
	for i := range seq {
		seq[i] = frame.New(i, time.Duration(i+1)*time.Millisecond, patterned(w, h, uint8(i)))
	}
	return seq
}

// dot returns a transparent w x h image with a single pixel set.
func dot(w, h, x, y int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(x, y, c)
	return img
}
