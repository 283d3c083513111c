package store

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/internal/parallel"
)

func TestCommit_Renumbers(t *testing.T) {
	pool := parallel.NewWorkerPool(3)
	defer pool.Close()
	s := openStore(t, WithPool(pool))

	in := frames(7, 40)
	sum, err := s.Writer().Commit(context.Background(), CommitRequest{
		Name:   "walk",
		Frames: in,
		Delay:  50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if sum.FrameCount != 7 {
		t.Fatalf("FrameCount = %d, want 7", sum.FrameCount)
	}
	for i, name := range sum.Frames {
		if want := frame.FileName(i, 50*time.Millisecond, ".png"); name != want {
			t.Errorf("frame %d file = %q, want %q", i, name, want)
		}
	}

	anim, err := s.Animation("walk")
	if err != nil {
		t.Fatal(err)
	}
	got, err := anim.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range got {
		if f.Index != i {
			t.Errorf("frame %d index = %d", i, f.Index)
		}
		if !imgutil.Equal(f.Image, in[i].Image) {
			t.Errorf("frame %d pixels differ after round trip", i)
		}
	}
	if h := hiddenEntries(t, s.Root()); len(h) != 0 {
		t.Errorf("leftover temporary entries: %v", h)
	}
}

func TestCommit_DefaultDelayAndFormat(t *testing.T) {
	s := openStore(t, WithFormat(imgutil.FormatTIFF), WithDelay(100*time.Millisecond))
	in := frames(2, 0)
	in[1] = in[1].WithImage(solid(3, 2, color.NRGBA{R: 9, G: 8, B: 7, A: 6}))

	sum, err := s.Writer().Commit(context.Background(), CommitRequest{Name: "tiff", Frames: in})
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if want := "frame_000_delay-0.1s.tiff"; sum.Frames[0] != want {
		t.Errorf("file = %q, want %q", sum.Frames[0], want)
	}
	anim, _ := s.Animation("tiff")
	f, err := anim.Frame(1)
	if err != nil {
		t.Fatal(err)
	}
	if !imgutil.Equal(f.Image, in[1].Image) {
		t.Errorf("tiff round trip = %v, want %v", imgutil.At(f.Image, 0, 0), imgutil.At(in[1].Image, 0, 0))
	}
}

func TestCommit_FormatsKeepAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	img.SetNRGBA(1, 0, color.NRGBA{R: 9, G: 8, B: 7, A: 0})
	img.SetNRGBA(2, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	for f := imgutil.FormatPNG; f.IsValid(); f++ {
		if !f.CanEncode() {
			if _, err := Open(t.TempDir(), WithFormat(f)); err == nil {
				t.Errorf("Open() with read-only format %v succeeded", f)
			}
			continue
		}
		t.Run(f.String(), func(t *testing.T) {
			s := openStore(t, WithFormat(f))
			in := frame.Sequence{frame.New(0, frame.DefaultDelay, img)}
			if _, err := s.Writer().Commit(context.Background(), CommitRequest{Name: "alpha", Frames: in}); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}
			anim, err := s.Animation("alpha")
			if err != nil {
				t.Fatal(err)
			}
			got, err := anim.Frame(0)
			if err != nil {
				t.Fatal(err)
			}
			for x := range 3 {
				if g, w := imgutil.At(got.Image, x, 0), imgutil.At(img, x, 0); g != w {
					t.Errorf("pixel %d = %v, want %v", x, g, w)
				}
			}
		})
	}
}

func TestCommit_Duplicate(t *testing.T) {
	s := openStore(t)
	mustCommit(t, s, "walk", 3)

	_, err := s.Writer().Commit(context.Background(), CommitRequest{Name: "walk", Frames: frames(5, 0)})
	if !errors.Is(err, frame.ErrDuplicateName) {
		t.Fatalf("Commit() error = %v, want ErrDuplicateName", err)
	}
	sum, err := s.Info("walk")
	if err != nil {
		t.Fatal(err)
	}
	if sum.FrameCount != 3 {
		t.Errorf("FrameCount = %d after rejected commit, want 3", sum.FrameCount)
	}
}

func TestCommit_ConcurrentSameName(t *testing.T) {
	s := openStore(t)
	const n = 8

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Writer().Commit(context.Background(), CommitRequest{Name: "race", Frames: frames(i+1, 0)})
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case !errors.Is(err, frame.ErrDuplicateName):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("%d commits succeeded, want exactly 1", wins)
	}
	if h := hiddenEntries(t, s.Root()); len(h) != 0 {
		t.Errorf("leftover temporary entries: %v", h)
	}
}

func TestCommit_Validation(t *testing.T) {
	s := openStore(t)
	tests := []struct {
		name string
		req  CommitRequest
		want error
	}{
		{"empty", CommitRequest{Name: "x"}, frame.ErrEmptyAnimation},
		{"bad name", CommitRequest{Name: "a/b", Frames: frames(1, 0)}, ErrInvalidName},
		{"negative delay", CommitRequest{Name: "x", Frames: frames(1, 0), Delay: -time.Second}, ErrInvalidDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Writer().Commit(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Commit() error = %v, want %v", err, tt.want)
			}
		})
	}
	if list, _ := s.List(); len(list) != 0 {
		t.Errorf("List() = %v after failed commits", list)
	}
}

func TestCommit_FailureCleansUp(t *testing.T) {
	s := openStore(t)
	in := frames(4, 0)
	in[2] = in[2].WithImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)))

	_, err := s.Writer().Commit(context.Background(), CommitRequest{Name: "broken", Frames: in})
	if !errors.Is(err, frame.ErrIO) {
		t.Fatalf("Commit() error = %v, want ErrIO", err)
	}
	if s.Exists("broken") {
		t.Error("failed commit is visible")
	}
	if h := hiddenEntries(t, s.Root()); len(h) != 0 {
		t.Errorf("leftover temporary entries: %v", h)
	}
}

func TestCommit_Canceled(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Writer().Commit(ctx, CommitRequest{Name: "x", Frames: frames(2, 0)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Commit() error = %v, want context.Canceled", err)
	}
	if s.Exists("x") {
		t.Error("canceled commit is visible")
	}
}

func TestCommit_WithSprites(t *testing.T) {
	s := openStore(t)
	sum, err := s.Writer().Commit(context.Background(), CommitRequest{
		Name:    "both",
		Frames:  frames(3, 0),
		Sprites: frames(3, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Sprites) != 3 {
		t.Fatalf("Sprites = %v, want 3 files", sum.Sprites)
	}
	sprites, err := s.Sprites("both")
	if err != nil {
		t.Fatal(err)
	}
	if sprites.Len() != 3 {
		t.Errorf("sprite Len() = %d, want 3", sprites.Len())
	}
}

func TestSaveSprites_Replaces(t *testing.T) {
	s := openStore(t)
	mustCommit(t, s, "walk", 3)
	w := s.Writer()

	if _, err := w.SaveSprites(context.Background(), "walk", frames(3, 0)); err != nil {
		t.Fatalf("SaveSprites() error = %v", err)
	}
	sprites, _ := s.Sprites("walk")
	if _, err := sprites.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	repl := frames(2, 0)
	repl[0] = repl[0].WithImage(solid(3, 2, color.NRGBA{B: 200, A: 255}))
	sum, err := w.SaveSprites(context.Background(), "walk", repl)
	if err != nil {
		t.Fatalf("SaveSprites() error = %v", err)
	}
	if len(sum.Sprites) != 2 || sum.FrameCount != 3 {
		t.Fatalf("summary = %+v, want 2 sprites and 3 frames", sum)
	}

	sprites, _ = s.Sprites("walk")
	f, err := sprites.Frame(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := imgutil.At(f.Image, 0, 0); got.B != 200 {
		t.Errorf("sprite 0 = %v, stale cache or old file", got)
	}
	if h := hiddenEntries(t, filepath.Join(s.Root(), "walk")); len(h) != 0 {
		t.Errorf("leftover temporary entries: %v", h)
	}
}

func TestSaveSpriteImage(t *testing.T) {
	s := openStore(t)
	mustCommit(t, s, "walk", 1)

	want := solid(2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	raw, err := imgutil.EncodeToBytes(want)
	if err != nil {
		t.Fatal(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name      string
		frameName string
		data      []byte
		file      string
	}{
		{"raw", "frame_000_delay-0.03s", raw, "frame_000_delay-0.03s.png"},
		{"data url with extension", "frame_001_delay-0.03s.gif", []byte(dataURL), "frame_001_delay-0.03s.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := s.Writer().SaveSpriteImage("walk", tt.frameName, tt.data)
			if err != nil {
				t.Fatalf("SaveSpriteImage() error = %v", err)
			}
			if file != tt.file {
				t.Errorf("file = %q, want %q", file, tt.file)
			}
			got, err := imgutil.Load(filepath.Join(s.Root(), "walk", SpritesDir, file))
			if err != nil {
				t.Fatal(err)
			}
			if !imgutil.Equal(got, want) {
				t.Error("stored sprite differs")
			}
		})
	}

	if _, err := s.Writer().SaveSpriteImage("walk", "x", []byte("not an image")); !errors.Is(err, frame.ErrValidation) {
		t.Errorf("bad data error = %v, want ErrValidation", err)
	}
	if _, err := s.Writer().SaveSpriteImage("walk", "../x", raw); !errors.Is(err, ErrInvalidName) {
		t.Errorf("bad frame name error = %v, want ErrInvalidName", err)
	}
	if _, err := s.Writer().SaveSpriteImage("nope", "x", raw); !errors.Is(err, frame.ErrNotFound) {
		t.Errorf("missing animation error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	mustCommit(t, s, "walk", 2)
	anim, _ := s.Animation("walk")
	if _, err := anim.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Writer().Delete("walk"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Exists("walk") {
		t.Error("animation still exists")
	}
	if st := s.CacheStats(); st.Len != 0 {
		t.Errorf("cache holds %d frames of a deleted animation", st.Len)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "walk")); !os.IsNotExist(err) {
		t.Errorf("folder still present: %v", err)
	}
	if h := hiddenEntries(t, s.Root()); len(h) != 0 {
		t.Errorf("leftover temporary entries: %v", h)
	}
	if err := s.Writer().Delete("walk"); !errors.Is(err, frame.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	// The name is free again.
	mustCommit(t, s, "walk", 1)
}
