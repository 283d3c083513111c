package store

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	imgutil.Fill(img, c)
	return img
}

// frames returns n 3x2 frames with indices starting at first and a
// distinct red value per frame.
func frames(n, first int) frame.Sequence {
	seq := make(frame.Sequence, n)
	for i := range seq {
		seq[i] = frame.New(first+i, frame.DefaultDelay, solid(3, 2, color.NRGBA{R: uint8(10 * i), G: 1, A: 255}))
	}
	return seq
}

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func mustCommit(t *testing.T, s *Store, name string, n int) Summary {
	t.Helper()
	sum, err := s.Writer().Commit(context.Background(), CommitRequest{Name: name, Frames: frames(n, 0)})
	if err != nil {
		t.Fatalf("Commit(%q) error = %v", name, err)
	}
	return sum
}

// writeFile writes a frame image directly, bypassing the writer.
func writeFile(t *testing.T, dir, name string, img *image.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imgutil.Save(filepath.Join(dir, name), img, imgutil.FormatPNG); err != nil {
		t.Fatal(err)
	}
}

// hiddenEntries returns the names of dot entries in dir.
func hiddenEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, e := range entries {
		if e.Name()[0] == '.' {
			out = append(out, e.Name())
		}
	}
	return out
}
