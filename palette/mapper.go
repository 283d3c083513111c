package palette

import (
	"image"
	"image/color"
	"sort"

	"github.com/gogpu/animkit/frame"
)

// Counts maps each distinct color to the number of pixels having it.
type Counts map[color.NRGBA]int

// ColorCount is one entry of a sorted color listing.
type ColorCount struct {
	Color color.NRGBA
	Count int
}

// Extract counts the colors of every pixel of every image in one pass.
func Extract(imgs ...*image.NRGBA) Counts {
	counts := make(Counts)
	for _, img := range imgs {
		extractRect(counts, img, img.Rect)
	}
	return counts
}

// ExtractRegion counts colors inside region only. region is relative to the
// image origin and clipped to each image.
func ExtractRegion(region image.Rectangle, imgs ...*image.NRGBA) Counts {
	counts := make(Counts)
	for _, img := range imgs {
		r := region.Add(img.Rect.Min).Intersect(img.Rect)
		extractRect(counts, img, r)
	}
	return counts
}

func extractRect(counts Counts, img *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			s := img.Pix[i : i+4 : i+4]
			counts[color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}]++
			i += 4
		}
	}
}

// Total returns the number of pixels counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Sorted lists the colors by descending count, ties broken by color value.
func (c Counts) Sorted() []ColorCount {
	out := make([]ColorCount, 0, len(c))
	for col, n := range c {
		out = append(out, ColorCount{Color: col, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return packColor(out[i].Color) < packColor(out[j].Color)
	})
	return out
}

// Map returns a new origin-based image whose pixels are fn applied to the
// pixels of img.
func Map(img *image.NRGBA, fn func(c color.NRGBA) color.NRGBA) *image.NRGBA {
	b := img.Rect
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		si := img.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * out.Stride
		for range b.Dx() {
			s := img.Pix[si : si+4 : si+4]
			c := fn(color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]})
			d := out.Pix[di : di+4 : di+4]
			d[0], d[1], d[2], d[3] = c.R, c.G, c.B, c.A
			si += 4
			di += 4
		}
	}
	return out
}

// Apply returns a copy of img in which every pixel exactly matching a table
// key is replaced by its target. All other pixels are copied unchanged.
func Apply(img *image.NRGBA, t Table) *image.NRGBA {
	return Map(img, func(c color.NRGBA) color.NRGBA {
		if to, ok := t.Lookup(c); ok {
			return to
		}
		return c
	})
}

// ExtractFrames counts the colors of a frame sequence.
func ExtractFrames(seq frame.Sequence) Counts {
	return Extract(seq.Images()...)
}
