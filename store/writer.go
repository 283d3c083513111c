package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/internal/parallel"
)

// ErrInvalidDelay is returned for a negative frame delay.
var ErrInvalidDelay = fmt.Errorf("%w: frame delay must be positive", frame.ErrValidation)

// Writer creates and removes animations. It is safe for concurrent use;
// operations on the same name are serialized.
type Writer struct {
	store *Store
}

// Writer returns the writer of the store.
func (s *Store) Writer() *Writer {
	return &Writer{store: s}
}

// CommitRequest describes a new animation.
type CommitRequest struct {
	Name   string
	Frames frame.Sequence

	// Sprites is an optional sprite layer written to the sprites folder.
	// Sprite i is named after frame i.
	Sprites frame.Sequence

	// Delay applies to every frame. Zero selects the store default.
	Delay time.Duration
}

// Commit writes a new animation and publishes it atomically. Frames are
// renumbered 0..N-1 in slice order. It fails with frame.ErrDuplicateName if
// the name is taken and frame.ErrEmptyAnimation for zero frames; in every
// failure case nothing is left behind.
func (w *Writer) Commit(ctx context.Context, req CommitRequest) (Summary, error) {
	s := w.store
	name, err := ValidateName(req.Name)
	if err != nil {
		return Summary{}, err
	}
	if len(req.Frames) == 0 {
		return Summary{}, fmt.Errorf("store: commit %q: %w", name, frame.ErrEmptyAnimation)
	}
	delay := req.Delay
	switch {
	case delay < 0:
		return Summary{}, fmt.Errorf("%w: %v", ErrInvalidDelay, delay)
	case delay == 0:
		delay = s.opts.delay
	}
	if s.Exists(name) {
		return Summary{}, fmt.Errorf("store: commit %q: %w", name, frame.ErrDuplicateName)
	}

	tmp, err := os.MkdirTemp(s.root, tempPrefix+name+"-")
	if err != nil {
		return Summary{}, fmt.Errorf("%w: store: commit %q: %w", frame.ErrIO, name, err)
	}
	published := false
	defer func() {
		if !published {
			s.removeTemp(tmp)
		}
	}()

	if err := w.writeFrames(ctx, tmp, req.Frames, delay); err != nil {
		return Summary{}, fmt.Errorf("store: commit %q: %w", name, err)
	}
	if len(req.Sprites) > 0 {
		spriteDir := filepath.Join(tmp, SpritesDir)
		if err := os.Mkdir(spriteDir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("%w: store: commit %q: %w", frame.ErrIO, name, err)
		}
		if err := w.writeFrames(ctx, spriteDir, req.Sprites, delay); err != nil {
			return Summary{}, fmt.Errorf("store: commit %q sprites: %w", name, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	if err := w.publish(tmp, name); err != nil {
		return Summary{}, err
	}
	published = true

	s.logger().Info("store: animation committed",
		"name", name, "frames", len(req.Frames), "sprites", len(req.Sprites), "delay", delay)
	return s.summary(name)
}

// publish renames tmp to the animation folder under the name lock. Renaming
// onto an existing non-empty folder fails, which also guards against other
// processes sharing the root.
func (w *Writer) publish(tmp, name string) error {
	s := w.store
	s.locks.lock(name)
	defer s.locks.unlock(name)

	final := filepath.Join(s.root, name)
	if _, err := os.Lstat(final); err == nil {
		return fmt.Errorf("store: commit %q: %w", name, frame.ErrDuplicateName)
	}
	if err := os.Rename(tmp, final); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("store: commit %q: %w", name, frame.ErrDuplicateName)
		}
		return fmt.Errorf("%w: store: publish %q: %w", frame.ErrIO, name, err)
	}
	return nil
}

// writeFrames encodes seq into dir, renumbered from 0, on the store pool.
func (w *Writer) writeFrames(ctx context.Context, dir string, seq frame.Sequence, delay time.Duration) error {
	format := w.store.opts.format
	ext := format.Ext()
	seq = frame.Renumber(seq)
	return parallel.ForEach(ctx, w.store.opts.pool, len(seq), func(_ context.Context, i int) error {
		f := seq[i]
		path := filepath.Join(dir, frame.FileName(f.Index, delay, ext))
		if err := imgutil.Save(path, f.Image, format); err != nil {
			return fmt.Errorf("%w: frame %d: %w", frame.ErrIO, f.Index, err)
		}
		return nil
	})
}

func (s *Store) removeTemp(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.logger().Warn("store: remove temporary folder", "dir", dir, "err", err)
	}
}

// Delete removes the named animation, including its sprites.
func (w *Writer) Delete(name string) error {
	s := w.store
	dir, err := s.dir(name)
	if err != nil {
		return err
	}
	name = filepath.Base(dir)

	s.locks.lock(name)
	defer s.locks.unlock(name)

	// Move aside first so the animation disappears in one step.
	trash, err := os.MkdirTemp(s.root, tempPrefix+"del-")
	if err != nil {
		return fmt.Errorf("%w: store: delete %q: %w", frame.ErrIO, name, err)
	}
	defer s.removeTemp(trash)
	if err := os.Rename(dir, filepath.Join(trash, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: animation %q", frame.ErrNotFound, name)
		}
		return fmt.Errorf("%w: store: delete %q: %w", frame.ErrIO, name, err)
	}
	s.evict(dir)

	s.logger().Info("store: animation deleted", "name", name)
	return nil
}

// SaveSprites replaces the sprite layer of an existing animation. Sprite i
// is named after frame i of the animation, or renumbered from 0 when the
// counts differ.
func (w *Writer) SaveSprites(ctx context.Context, name string, sprites frame.Sequence) (Summary, error) {
	s := w.store
	anim, err := s.Animation(name)
	if err != nil {
		return Summary{}, err
	}
	name = anim.Name()
	if len(sprites) == 0 {
		return Summary{}, fmt.Errorf("store: save sprites %q: %w", name, frame.ErrEmptyAnimation)
	}

	tmp, err := os.MkdirTemp(anim.dir, tempPrefix+SpritesDir+"-")
	if err != nil {
		return Summary{}, fmt.Errorf("%w: store: save sprites %q: %w", frame.ErrIO, name, err)
	}
	defer s.removeTemp(tmp)

	format := s.opts.format
	files := anim.Files()
	err = parallel.ForEach(ctx, s.opts.pool, len(sprites), func(_ context.Context, i int) error {
		delay := s.opts.delay
		if len(files) == len(sprites) {
			delay = files[i].Delay
		}
		path := filepath.Join(tmp, frame.FileName(i, delay, format.Ext()))
		if err := imgutil.Save(path, sprites[i].Image, format); err != nil {
			return fmt.Errorf("%w: sprite %d: %w", frame.ErrIO, i, err)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("store: save sprites %q: %w", name, err)
	}

	s.locks.lock(name)
	defer s.locks.unlock(name)

	spriteDir := filepath.Join(anim.dir, SpritesDir)
	old := tmp + ".old"
	hadOld := false
	if err := os.Rename(spriteDir, old); err == nil {
		hadOld = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Summary{}, fmt.Errorf("%w: store: save sprites %q: %w", frame.ErrIO, name, err)
	}
	if err := os.Rename(tmp, spriteDir); err != nil {
		if hadOld {
			_ = os.Rename(old, spriteDir)
		}
		return Summary{}, fmt.Errorf("%w: store: save sprites %q: %w", frame.ErrIO, name, err)
	}
	if hadOld {
		s.removeTemp(old)
	}
	s.evict(spriteDir)

	s.logger().Info("store: sprites saved", "name", name, "sprites", len(sprites))
	return s.summary(name)
}

// SaveSpriteImage decodes data (raw image bytes, base64 or a data URL) and
// stores it as PNG sprites/<frameName>.png of an existing animation. A known
// image extension on frameName is dropped first. It returns the file name.
func (w *Writer) SaveSpriteImage(name, frameName string, data []byte) (string, error) {
	s := w.store
	dir, err := s.dir(name)
	if err != nil {
		return "", err
	}
	name = filepath.Base(dir)

	if ext := filepath.Ext(frameName); imgutil.IsImageExt(ext) {
		frameName = strings.TrimSuffix(frameName, ext)
	}
	stem, err := ValidateName(frameName)
	if err != nil {
		return "", fmt.Errorf("sprite name: %w", err)
	}

	img, err := imgutil.DecodeBytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: store: sprite image: %w", frame.ErrValidation, err)
	}

	s.locks.lock(name)
	defer s.locks.unlock(name)

	spriteDir := filepath.Join(dir, SpritesDir)
	if err := os.MkdirAll(spriteDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}
	file := stem + imgutil.FormatPNG.Ext()
	path := filepath.Join(spriteDir, file)

	tmp, err := os.CreateTemp(spriteDir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	if err := imgutil.Save(tmpPath, img, imgutil.FormatPNG); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}
	s.frames.Delete(path)

	s.logger().Debug("store: sprite saved", "name", name, "file", file)
	return file, nil
}
