package matte

import (
	"context"
	"image"
	"image/color"
	"testing"

	imgutil "github.com/gogpu/animkit/internal/image"
)

var (
	bg    = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	ink   = color.NRGBA{R: 20, A: 255}
	nearb = color.NRGBA{R: 247, G: 252, B: 250, A: 255}
)

// ring draws a 7x7 background with a ring of ink enclosing a background pixel.
func ring() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 7, 7))
	imgutil.Fill(img, bg)
	for i := 2; i <= 4; i++ {
		img.SetNRGBA(i, 2, ink)
		img.SetNRGBA(i, 4, ink)
		img.SetNRGBA(2, i, ink)
		img.SetNRGBA(4, i, ink)
	}
	img.SetNRGBA(6, 6, nearb)
	return img
}

func TestColorKey(t *testing.T) {
	tests := []struct {
		name      string
		key       ColorKey
		corner    uint8 // alpha at (6, 6)
		enclosed  uint8 // alpha at (3, 3)
		border    uint8 // alpha at (0, 0)
		inkRemain uint8 // alpha at (2, 2)
	}{
		{"exact", ColorKey{}, 255, 255, 0, 255},
		{"tolerance", ColorKey{Tolerance: 3}, 0, 255, 0, 255},
		{"explicit key", ColorKey{Key: &ink}, 255, 255, 255, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.key.Matte(context.Background(), ring())
			if err != nil {
				t.Fatal(err)
			}
			checks := []struct {
				x, y int
				want uint8
			}{
				{6, 6, tt.corner},
				{3, 3, tt.enclosed},
				{0, 0, tt.border},
				{2, 2, tt.inkRemain},
			}
			for _, c := range checks {
				if got := imgutil.At(out, c.x, c.y).A; got != c.want {
					t.Errorf("alpha at (%d, %d) = %d, want %d", c.x, c.y, got, c.want)
				}
			}
		})
	}
}

func TestColorKey_Empty(t *testing.T) {
	out, err := ColorKey{}.Matte(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	if err != nil || out == nil {
		t.Fatalf("Matte(empty) = %v, %v", out, err)
	}
}
