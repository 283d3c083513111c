package transform

import (
	"context"
	"fmt"
	"image"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/internal/parallel"
)

// DefaultEpsilon is the alpha at or below which a pixel counts as transparent.
const DefaultEpsilon uint8 = 0

// Box is an inclusive pixel bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the box width in pixels.
func (b Box) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns the box height in pixels.
func (b Box) Height() int {
	return b.MaxY - b.MinY + 1
}

// Rect returns the box as a half-open image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// ContentBox returns the bounding box of pixels with alpha above epsilon,
// relative to the image origin. ok is false for fully transparent images.
func ContentBox(img *image.NRGBA, epsilon uint8) (box Box, ok bool) {
	b := img.Rect
	box = Box{MinX: b.Dx(), MinY: b.Dy(), MaxX: -1, MaxY: -1}
	for y := range b.Dy() {
		i := img.PixOffset(b.Min.X, b.Min.Y+y) + 3
		for x := range b.Dx() {
			if img.Pix[i] > epsilon {
				box.MinX = min(box.MinX, x)
				box.MaxX = max(box.MaxX, x)
				box.MinY = min(box.MinY, y)
				box.MaxY = max(box.MaxY, y)
			}
			i += 4
		}
	}
	return box, box.MaxX >= 0
}

// UnionBoxes merges per-frame results from ContentBox. Entries with ok
// false are ignored; if none is ok the union is ErrEmptyContent.
func UnionBoxes(boxes []Box, oks []bool) (Box, error) {
	var (
		union Box
		found bool
	)
	for i, b := range boxes {
		if !oks[i] {
			continue
		}
		if !found {
			union, found = b, true
			continue
		}
		union = union.Union(b)
	}
	if !found {
		return Box{}, fmt.Errorf("transform: bounding box: %w", frame.ErrEmptyContent)
	}
	return union, nil
}

// BoundingBox returns the tightest box containing every pixel with alpha
// above epsilon in any image of any layer. Layers are typically a frame
// sequence and its sprite sequence. Per-frame boxes are computed on the
// pool and unioned once all are known.
func BoundingBox(ctx context.Context, pool *parallel.WorkerPool, epsilon uint8, layers ...frame.Sequence) (Box, error) {
	var all frame.Sequence
	for _, layer := range layers {
		all = append(all, layer...)
	}
	boxes := make([]Box, len(all))
	oks := make([]bool, len(all))
	err := parallel.ForEach(ctx, pool, len(all), func(_ context.Context, i int) error {
		boxes[i], oks[i] = ContentBox(all[i].Image, epsilon)
		return nil
	})
	if err != nil {
		return Box{}, err
	}
	return UnionBoxes(boxes, oks)
}

// Crop slices every frame of seq to box. All output frames are box-sized;
// parts of the box outside a frame are transparent.
func Crop(ctx context.Context, pool *parallel.WorkerPool, seq frame.Sequence, box Box) (frame.Sequence, error) {
	if box.Width() <= 0 || box.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty box %v", ErrInvalidMargins, box)
	}
	out := make(frame.Sequence, len(seq))
	err := parallel.ForEach(ctx, pool, len(seq), func(_ context.Context, i int) error {
		out[i] = seq[i].WithImage(CropImage(seq[i].Image, box))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CropImage returns the box region of img as a new image.
func CropImage(img *image.NRGBA, box Box) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, box.Width(), box.Height()))
	imgutil.Copy(out, image.Point{}, img, box.Rect())
	return out
}

// Margins trims a fixed number of pixels from each side.
type Margins struct {
	Left, Right, Top, Bottom int
}

// Box converts margins to a box for a width x height canvas.
func (m Margins) Box(width, height int) (Box, error) {
	if m.Left < 0 || m.Right < 0 || m.Top < 0 || m.Bottom < 0 {
		return Box{}, fmt.Errorf("%w: %+v", ErrInvalidMargins, m)
	}
	b := Box{MinX: m.Left, MinY: m.Top, MaxX: width - m.Right - 1, MaxY: height - m.Bottom - 1}
	if b.Width() <= 0 || b.Height() <= 0 {
		return Box{}, fmt.Errorf("%w: %+v leaves no area of %dx%d", ErrInvalidMargins, m, width, height)
	}
	return b, nil
}

// MaxSize returns the largest width and height over all frames of the layers.
func MaxSize(layers ...frame.Sequence) (width, height int) {
	for _, layer := range layers {
		for _, f := range layer {
			width = max(width, f.Width())
			height = max(height, f.Height())
		}
	}
	return width, height
}
