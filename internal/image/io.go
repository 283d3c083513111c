package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// Load loads an image file, auto-detecting the format from its content.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// Decode decodes an image from the given reader, auto-detecting the format.
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return ToNRGBA(img), nil
}

// DecodeBytes decodes raw image bytes, base64 text or a data URL
// ("data:image/png;base64,...").
func DecodeBytes(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	if img, err := Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	text := strings.TrimSpace(string(data))
	if i := strings.IndexByte(text, ','); i >= 0 && strings.HasPrefix(text, "data:") {
		text = text[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("image: decode base64: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *image.NRGBA, format Format) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("image: encode %s: %w", format, err)
	}
	return nil
}

// Save writes img to path in the given format. The file is synced before
// it is closed.
func Save(path string, img *image.NRGBA, format Format) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}

	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("image: sync file: %w", err)
	}
	return f.Close()
}

// EncodeToBytes encodes the image to PNG format and returns the bytes.
func EncodeToBytes(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToNRGBA converts any image to a non-premultiplied RGBA image whose bounds
// start at the origin. NRGBA input is copied byte for byte so that exact
// color values, including the RGB of transparent pixels, are preserved.
func ToNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()

	// Fast path for NRGBA images
	if nrgba, ok := img.(*image.NRGBA); ok {
		return Clone(nrgba)
	}

	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Rect, img, bounds.Min, draw.Src)
	return out
}

// Copy copies the rectangle sr of src to dst with sr.Min landing on dp.
// Both images are addressed relative to their origin. Parts falling outside
// either image are skipped. Pixels are copied byte for byte.
func Copy(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	// Clip the source rectangle to src.
	srcBounds := image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy())
	clipped := sr.Intersect(srcBounds)
	dp = dp.Add(clipped.Min.Sub(sr.Min))
	sr = clipped

	// Clip the destination rectangle to dst.
	dstRect := sr.Sub(sr.Min).Add(dp)
	dstBounds := image.Rect(0, 0, dst.Rect.Dx(), dst.Rect.Dy())
	visible := dstRect.Intersect(dstBounds)
	if visible.Empty() {
		return
	}
	sr = visible.Sub(dp).Add(sr.Min)
	dp = visible.Min

	rowBytes := sr.Dx() * 4
	for y := range sr.Dy() {
		so := src.PixOffset(src.Rect.Min.X+sr.Min.X, src.Rect.Min.Y+sr.Min.Y+y)
		do := dst.PixOffset(dst.Rect.Min.X+dp.X, dst.Rect.Min.Y+dp.Y+y)
		copy(dst.Pix[do:do+rowBytes], src.Pix[so:so+rowBytes])
	}
}
