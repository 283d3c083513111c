package matte

import (
	"context"
	"image"
	"image/color"
)

// ColorKey is a built-in Matter for flat backgrounds. Pixels connected to
// the image border whose color is within Tolerance of the key become
// transparent. Enclosed regions of the key color are kept.
type ColorKey struct {
	// Key is the background color. When nil the top-left pixel is used.
	Key *color.NRGBA

	// Tolerance is the largest per-channel difference still matching the key.
	Tolerance uint8
}

// Matte implements Matter.
func (k ColorKey) Matte(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		si := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], img.Pix[si:si+w*4])
	}
	if w == 0 || h == 0 {
		return out, nil
	}

	key := out.NRGBAAt(0, 0)
	if k.Key != nil {
		key = *k.Key
	}

	seen := make([]bool, w*h)
	queue := make([]image.Point, 0, 2*(w+h))
	push := func(x, y int) {
		i := y*w + x
		if seen[i] || !k.matches(out.NRGBAAt(x, y), key) {
			return
		}
		seen[i] = true
		queue = append(queue, image.Pt(x, y))
	}
	for x := range w {
		push(x, 0)
		push(x, h-1)
	}
	for y := range h {
		push(0, y)
		push(w-1, y)
	}

	for n := 0; len(queue) > 0; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		out.Pix[out.PixOffset(p.X, p.Y)+3] = 0

		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return out, nil
}

func (k ColorKey) matches(c, key color.NRGBA) bool {
	return diff(c.R, key.R) <= k.Tolerance &&
		diff(c.G, key.G) <= k.Tolerance &&
		diff(c.B, key.B) <= k.Tolerance &&
		diff(c.A, key.A) <= k.Tolerance
}

func diff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
