package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gogpu/animkit/frame"
)

// Animation is a lazily loaded stored frame sequence. It implements
// frame.Source. Frames are decoded on first access and cached by the Store.
type Animation struct {
	store *Store
	name  string
	dir   string
	files []frame.FileInfo
}

// Name returns the animation name.
func (a *Animation) Name() string {
	return a.name
}

// Files returns the frame files in frame order.
func (a *Animation) Files() []frame.FileInfo {
	return a.files
}

// Len implements frame.Source.
func (a *Animation) Len() int {
	return len(a.files)
}

// Frame implements frame.Source. The frame index is its position in the
// animation, regardless of gaps in the stored file names.
func (a *Animation) Frame(i int) (*frame.Frame, error) {
	if i < 0 || i >= len(a.files) {
		return nil, fmt.Errorf("%w: frame %d of %q (%d frames)", frame.ErrNotFound, i, a.name, len(a.files))
	}
	fi := a.files[i]
	img, err := a.store.load(filepath.Join(a.dir, fi.Name))
	if err != nil {
		return nil, fmt.Errorf("animation %q frame %d: %w", a.name, i, err)
	}
	return frame.New(i, fi.Delay, img), nil
}

// Load decodes every frame.
func (a *Animation) Load(ctx context.Context) (frame.Sequence, error) {
	return frame.Collect(ctx, a, 0, a.Len())
}
