package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// NewCanvas returns a fully transparent NRGBA image of the given size.
func NewCanvas(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return image.NewNRGBA(image.Rect(0, 0, width, height)), nil
}

// Clone creates a deep copy of img, rebased to the origin.
func Clone(img *image.NRGBA) *image.NRGBA {
	b := img.Rect
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowBytes := b.Dx() * 4
	for y := range b.Dy() {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+rowBytes], img.Pix[src:src+rowBytes])
	}
	return out
}

// Equal reports whether a and b have the same size and byte-identical pixels.
func Equal(a, b *image.NRGBA) bool {
	if a.Rect.Dx() != b.Rect.Dx() || a.Rect.Dy() != b.Rect.Dy() {
		return false
	}
	rowBytes := a.Rect.Dx() * 4
	for y := range a.Rect.Dy() {
		ao := a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y)
		bo := b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y)
		if !bytes.Equal(a.Pix[ao:ao+rowBytes], b.Pix[bo:bo+rowBytes]) {
			return false
		}
	}
	return true
}

// At returns the pixel at (x, y) relative to the image origin.
// Returns the zero color if coordinates are out of bounds.
func At(img *image.NRGBA, x, y int) color.NRGBA {
	p := image.Pt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	if !p.In(img.Rect) {
		return color.NRGBA{}
	}
	i := img.PixOffset(p.X, p.Y)
	s := img.Pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// Set writes the pixel at (x, y) relative to the image origin.
// Returns ErrOutOfBounds if coordinates are outside image bounds.
func Set(img *image.NRGBA, x, y int, c color.NRGBA) error {
	p := image.Pt(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	if !p.In(img.Rect) {
		return ErrOutOfBounds
	}
	i := img.PixOffset(p.X, p.Y)
	s := img.Pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
	return nil
}

// Fill sets every pixel of img to c.
func Fill(img *image.NRGBA, c color.NRGBA) {
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
