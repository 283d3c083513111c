package palette

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
)

// scenarioFrame has 40 red pixels and 200 pixels of assorted other colors.
func scenarioFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 15))
	n := 0
	for y := range 15 {
		for x := range 16 {
			var c color.NRGBA
			if n < 40 {
				c = red
			} else {
				c = color.NRGBA{R: uint8(n), G: uint8(x * 9), B: uint8(y * 13), A: uint8(255 - n%7)}
			}
			img.SetNRGBA(x, y, c)
			n++
		}
	}
	return img
}

func TestApply_RedToGreen(t *testing.T) {
	src := scenarioFrame()
	tbl, _ := NewTable(Pair{From: red, To: green})

	out := Apply(src, tbl)

	before := Extract(src)
	after := Extract(out)
	if after[red] != 0 {
		t.Errorf("red pixels after mapping = %d, want 0", after[red])
	}
	if after[green] != 40+before[green] {
		t.Errorf("green pixels after mapping = %d, want %d", after[green], 40+before[green])
	}

	for y := range 15 {
		for x := range 16 {
			s := imgutil.At(src, x, y)
			d := imgutil.At(out, x, y)
			if s == red {
				continue
			}
			if s != d {
				t.Fatalf("unmapped pixel (%d, %d) changed: %v -> %v", x, y, s, d)
			}
		}
	}
	if src.NRGBAAt(0, 0) != red {
		t.Error("Apply modified its input")
	}
}

func TestApply_AlphaIsPartOfIdentity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	halfRed := color.NRGBA{R: 255, A: 128}
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, halfRed)

	out := Apply(img, Table{red: green})
	if out.NRGBAAt(0, 0) != green {
		t.Errorf("opaque red = %v, want green", out.NRGBAAt(0, 0))
	}
	if out.NRGBAAt(1, 0) != halfRed {
		t.Errorf("half red = %v, want unchanged", out.NRGBAAt(1, 0))
	}
}

func TestApply_Idempotent(t *testing.T) {
	src := scenarioFrame()
	tbl := Table{
		red:                              green,
		{R: 45, G: 45, B: 13, A: 252}:     blue,
		{R: 0x11, G: 0x22, B: 0x33, A: 1}: {R: 9, A: 9},
	}
	if !tbl.Disjoint() {
		t.Fatal("test table must be disjoint")
	}
	once := Apply(src, tbl)
	twice := Apply(once, tbl)
	if !imgutil.Equal(once, twice) {
		t.Error("Apply(Apply(f, T), T) != Apply(f, T)")
	}
}

func TestApply_EmptyTable(t *testing.T) {
	src := scenarioFrame()
	if !imgutil.Equal(Apply(src, nil), src) {
		t.Error("empty table changed pixels")
	}
}

func TestExtract_CountSum(t *testing.T) {
	a := scenarioFrame()
	b := image.NewNRGBA(image.Rect(0, 0, 7, 3))
	sub := a.SubImage(image.Rect(3, 3, 8, 9)).(*image.NRGBA)

	counts := Extract(a, b, sub)
	want := 16*15 + 7*3 + 5*6
	if counts.Total() != want {
		t.Errorf("Total() = %d, want %d", counts.Total(), want)
	}
	if counts[color.NRGBA{}] < 21 {
		t.Errorf("transparent count = %d, want >= 21", counts[color.NRGBA{}])
	}
}

func TestExtractRegion(t *testing.T) {
	img := scenarioFrame()
	// The first 40 pixels are red, so rows 0 and 1 are entirely red.
	counts := ExtractRegion(image.Rect(0, 0, 16, 2), img)
	if counts[red] != 32 || counts.Total() != 32 {
		t.Errorf("region counts = %v", counts)
	}
	// Region partly outside the image is clipped.
	counts = ExtractRegion(image.Rect(10, 10, 100, 100), img)
	if counts.Total() != 6*5 {
		t.Errorf("clipped total = %d, want 30", counts.Total())
	}
}

func TestSorted(t *testing.T) {
	counts := Counts{red: 3, green: 10, blue: 3}
	got := counts.Sorted()
	if got[0].Color != green || got[1].Color != blue || got[2].Color != red {
		t.Errorf("Sorted() = %v", got)
	}
}

func TestExtractFrames(t *testing.T) {
	seq := frame.Sequence{
		frame.New(4, 50*time.Millisecond, scenarioFrame()),
		frame.New(5, 50*time.Millisecond, Apply(scenarioFrame(), Table{red: green})),
	}
	counts := ExtractFrames(seq)
	if counts[red] != 40 {
		t.Errorf("red = %d, want 40", counts[red])
	}
	if counts.Total() != 2*scenarioFrame().Rect.Dx()*scenarioFrame().Rect.Dy() {
		t.Errorf("Total() = %d", counts.Total())
	}
}

func TestMap_SubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(2, 1, red)
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)

	out := Map(sub, func(c color.NRGBA) color.NRGBA {
		if c == red {
			return blue
		}
		return c
	})
	if out.Rect != image.Rect(0, 0, 2, 2) {
		t.Fatalf("Rect = %v, want origin based 2x2", out.Rect)
	}
	if got := out.NRGBAAt(1, 0); got != blue {
		t.Errorf("mapped pixel = %v, want %v", got, blue)
	}
	if img.NRGBAAt(2, 1) != red {
		t.Error("Map modified its input")
	}
}
