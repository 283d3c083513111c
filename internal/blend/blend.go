package blend

import (
	"image/color"
	"math"
)

// Premultiply converts a straight-alpha color to premultiplied channels.
func Premultiply(c color.NRGBA) (r, g, b, a byte) {
	return mulDiv255(c.R, c.A), mulDiv255(c.G, c.A), mulDiv255(c.B, c.A), c.A
}

// Unpremultiply converts premultiplied channels back to straight alpha.
// Fully transparent input yields transparent black.
func Unpremultiply(r, g, b, a byte) color.NRGBA {
	if a == 0 {
		return color.NRGBA{}
	}
	if a == 255 {
		return color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return color.NRGBA{R: unpremul(r, a), G: unpremul(g, a), B: unpremul(b, a), A: a}
}

func unpremul(c, a byte) byte {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Over composites src over dst. An opaque source replaces dst exactly and a
// fully transparent source leaves dst untouched.
func Over(dst, src color.NRGBA) color.NRGBA {
	switch src.A {
	case 255:
		return src
	case 0:
		return dst
	}
	if dst.A == 0 {
		return src
	}
	sr, sg, sb, sa := Premultiply(src)
	dr, dg, db, da := Premultiply(dst)
	return Unpremultiply(blendSourceOver(sr, sg, sb, sa, dr, dg, db, da))
}

// ScaleAlpha multiplies the alpha of c by opacity in [0, 1], rounding to the
// nearest integer. RGB is unchanged.
func ScaleAlpha(c color.NRGBA, opacity float64) color.NRGBA {
	switch {
	case opacity <= 0:
		c.A = 0
	case opacity < 1:
		c.A = uint8(math.Round(float64(c.A) * opacity))
	}
	return c
}
