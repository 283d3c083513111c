// Package store persists animations on disk.
//
// Every animation is a folder under the store root named after the
// animation. The folder holds one file per frame, named
// frame_<index>_delay-<seconds>s.<ext>, and an optional sprites subfolder
// with the same layout. Frame order always comes from the index encoded in
// the file name, never from directory order.
//
// [Store] is the read side. [Writer] is the only component that creates,
// replaces or removes animation folders. New animations are assembled in a
// hidden temporary folder and published with a single rename, so readers
// never observe a partially written animation.
package store

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogpu/animkit/frame"
	"github.com/gogpu/animkit/internal/cache"
	imgutil "github.com/gogpu/animkit/internal/image"
)

// SpritesDir is the name of the sprite subfolder of an animation.
const SpritesDir = "sprites"

// tempPrefix starts the name of in-progress commit folders.
const tempPrefix = ".tmp-"

// Store reads animations from a root folder.
type Store struct {
	root   string
	opts   options
	frames *cache.Cache[string, *image.NRGBA]
	locks  nameLocks
}

// Open opens the store rooted at root, creating the folder if needed.
func Open(root string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.format.CanEncode() {
		return nil, fmt.Errorf("%w: store: cannot write %s frames", frame.ErrValidation, o.format)
	}

	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}

	s := &Store{
		root: root,
		opts: o,
		frames: cache.New[string](o.cacheSize, func(img *image.NRGBA) int64 {
			return int64(len(img.Pix))
		}),
	}
	s.logger().Debug("store: opened", "root", root, "cache_bytes", o.cacheSize)
	return s, nil
}

// Root returns the root folder.
func (s *Store) Root() string {
	return s.root
}

// CacheStats reports decoded frame cache statistics.
func (s *Store) CacheStats() cache.Stats {
	return s.frames.Stats()
}

// Summary describes a stored animation.
type Summary struct {
	Name       string
	FrameCount int
	Frames     []string // frame file names in frame order
	Sprites    []string // sprite file names in frame order
}

// List returns every animation in the store sorted by name. Hidden folders,
// including in-progress commits, are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: store: list: %w", frame.ErrIO, err)
	}
	var out []Summary
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		sum, err := s.summary(e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

// Info describes the named animation.
func (s *Store) Info(name string) (Summary, error) {
	dir, err := s.dir(name)
	if err != nil {
		return Summary{}, err
	}
	return s.summary(filepath.Base(dir))
}

// Exists reports whether an animation folder with the given name exists.
func (s *Store) Exists(name string) bool {
	dir, err := s.dir(name)
	return err == nil && dir != ""
}

func (s *Store) summary(name string) (Summary, error) {
	dir := filepath.Join(s.root, name)
	frames, err := scan(dir)
	if err != nil {
		return Summary{}, err
	}
	sprites, err := scan(filepath.Join(dir, SpritesDir))
	if err != nil && !errors.Is(err, frame.ErrNotFound) {
		return Summary{}, err
	}
	return Summary{
		Name:       name,
		FrameCount: len(frames),
		Frames:     fileNames(frames),
		Sprites:    fileNames(sprites),
	}, nil
}

// dir returns the folder of an existing animation.
func (s *Store) dir(name string) (string, error) {
	n, err := ValidateName(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.root, n)
	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: animation %q", frame.ErrNotFound, n)
	case err != nil:
		return "", fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	case !st.IsDir():
		return "", fmt.Errorf("%w: animation %q is not a folder", frame.ErrNotFound, n)
	}
	return dir, nil
}

// scan lists the image files of dir in frame order. Files following the
// frame naming scheme sort by their encoded index; other image files follow
// in name order with the default delay.
func scan(dir string) ([]frame.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: folder %q", frame.ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}

	var named, other []frame.FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imgutil.IsImageExt(ext) {
			continue
		}
		if fi, err := frame.ParseFileName(e.Name()); err == nil {
			named = append(named, fi)
			continue
		}
		other = append(other, frame.FileInfo{Name: e.Name(), Index: -1, Delay: frame.DefaultDelay, Ext: ext})
	}

	sort.SliceStable(named, func(i, j int) bool {
		if named[i].Index != named[j].Index {
			return named[i].Index < named[j].Index
		}
		return named[i].Name < named[j].Name
	})
	sort.Slice(other, func(i, j int) bool { return other[i].Name < other[j].Name })
	return append(named, other...), nil
}

func fileNames(files []frame.FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// Animation opens the frames of the named animation for reading.
func (s *Store) Animation(name string) (*Animation, error) {
	dir, err := s.dir(name)
	if err != nil {
		return nil, err
	}
	files, err := scan(dir)
	if err != nil {
		return nil, err
	}
	return &Animation{store: s, name: filepath.Base(dir), dir: dir, files: files}, nil
}

// Sprites opens the sprite layer of the named animation. An animation
// without a sprites folder has an empty sprite layer.
func (s *Store) Sprites(name string) (*Animation, error) {
	dir, err := s.dir(name)
	if err != nil {
		return nil, err
	}
	spriteDir := filepath.Join(dir, SpritesDir)
	files, err := scan(spriteDir)
	if err != nil && !errors.Is(err, frame.ErrNotFound) {
		return nil, err
	}
	return &Animation{store: s, name: filepath.Base(dir), dir: spriteDir, files: files}, nil
}

// load decodes a frame file through the cache.
func (s *Store) load(path string) (*image.NRGBA, error) {
	if img, ok := s.frames.Get(path); ok {
		return img, nil
	}
	img, err := imgutil.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: store: %w", frame.ErrIO, err)
	}
	s.frames.Set(path, img)
	return img, nil
}

// evict drops cached frames below dir.
func (s *Store) evict(dir string) {
	prefix := dir + string(filepath.Separator)
	n := s.frames.DeleteFunc(func(path string) bool {
		return strings.HasPrefix(path, prefix)
	})
	if n > 0 {
		s.logger().Debug("store: evicted cached frames", "dir", dir, "count", n)
	}
}
