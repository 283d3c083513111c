package image

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewCanvas(t *testing.T) {
	img, err := NewCanvas(4, 3)
	if err != nil {
		t.Fatalf("NewCanvas: %v", err)
	}
	if img.Rect.Dx() != 4 || img.Rect.Dy() != 3 {
		t.Errorf("size = %v, want 4x3", img.Rect)
	}
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d, want 0", i, v)
		}
	}

	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 5}} {
		if _, err := NewCanvas(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewCanvas(%d, %d) error = %v, want ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
}

func TestClone_SubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	img.SetNRGBA(3, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	sub := img.SubImage(image.Rect(2, 2, 5, 6)).(*image.NRGBA)
	c := Clone(sub)
	if c.Rect != image.Rect(0, 0, 3, 4) {
		t.Fatalf("Clone rect = %v, want origin-based 3x4", c.Rect)
	}
	if got := At(c, 1, 2); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("At(1, 2) = %v", got)
	}
	if !Equal(c, sub) {
		t.Error("Equal(clone, sub) = false")
	}

	c.SetNRGBA(0, 0, color.NRGBA{A: 255})
	if img.NRGBAAt(2, 2).A != 0 {
		t.Error("Clone shares pixels with its source")
	}
}

func TestEqual(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if !Equal(a, b) {
		t.Error("Equal(blank, blank) = false")
	}
	b.SetNRGBA(1, 1, color.NRGBA{R: 9})
	if Equal(a, b) {
		t.Error("Equal ignores transparent RGB difference")
	}
	if Equal(a, image.NewNRGBA(image.Rect(0, 0, 2, 3))) {
		t.Error("Equal ignores size difference")
	}
}

func TestSetAt_Bounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if err := Set(img, 2, 0, color.NRGBA{}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set out of bounds error = %v", err)
	}
	if got := At(img, -1, 0); got != (color.NRGBA{}) {
		t.Errorf("At out of bounds = %v", got)
	}
	want := color.NRGBA{R: 10, G: 20, B: 30, A: 40}
	if err := Set(img, 1, 1, want); err != nil {
		t.Fatal(err)
	}
	if got := At(img, 1, 1); got != want {
		t.Errorf("At(1, 1) = %v, want %v", got, want)
	}
}

func TestFill(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	c := color.NRGBA{R: 200, A: 255}
	Fill(img, c)
	for y := range 2 {
		for x := range 3 {
			if got := At(img, x, y); got != c {
				t.Fatalf("At(%d, %d) = %v, want %v", x, y, got, c)
			}
		}
	}
}
