// Package image provides frame image I/O and pixel buffer helpers for animkit.
//
// All pixel data handled by the pipeline is non-premultiplied RGBA
// (*image.NRGBA) with bounds starting at the origin, so that exact RGBA
// values survive every transform untouched.
package image

import (
	"fmt"
	"strings"
)

// Format identifies an image file format.
type Format uint8

const (
	// FormatPNG is lossless with full alpha. This is the default output format.
	FormatPNG Format = iota

	// FormatBMP is read-only: the encoder drops alpha.
	FormatBMP

	// FormatTIFF is TIFF with associated alpha (golang.org/x/image/tiff).
	FormatTIFF

	// FormatGIF is read-only: writing would quantize colors.
	FormatGIF

	// FormatJPEG is read-only: no alpha channel.
	FormatJPEG

	// FormatWebP is read-only (golang.org/x/image/webp has no encoder).
	FormatWebP

	// formatCount is the number of formats (for internal use).
	formatCount
)

// FormatInfo contains metadata about a file format.
type FormatInfo struct {
	// Name is the lower-case name used in configuration.
	Name string

	// Exts lists file extensions, the first one is used when writing.
	Exts []string

	// CanEncode indicates that frames can be written in this format.
	CanEncode bool
}

// formatInfoTable contains metadata for each format.
var formatInfoTable = [formatCount]FormatInfo{
	FormatPNG:  {Name: "png", Exts: []string{".png"}, CanEncode: true},
	FormatBMP:  {Name: "bmp", Exts: []string{".bmp"}},
	FormatTIFF: {Name: "tiff", Exts: []string{".tiff", ".tif"}, CanEncode: true},
	FormatGIF:  {Name: "gif", Exts: []string{".gif"}},
	FormatJPEG: {Name: "jpeg", Exts: []string{".jpg", ".jpeg"}},
	FormatWebP: {Name: "webp", Exts: []string{".webp"}},
}

// Info returns the FormatInfo for this format.
func (f Format) Info() FormatInfo {
	if f >= formatCount {
		return FormatInfo{}
	}
	return formatInfoTable[f]
}

// Ext returns the canonical file extension, with leading dot.
func (f Format) Ext() string {
	info := f.Info()
	if len(info.Exts) == 0 {
		return ""
	}
	return info.Exts[0]
}

// CanEncode reports whether frames can be written in this format.
func (f Format) CanEncode() bool {
	return f.Info().CanEncode
}

// IsValid returns true if the format is a valid known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// String returns the configuration name of the format.
func (f Format) String() string {
	if !f.IsValid() {
		return "unknown"
	}
	return f.Info().Name
}

// ParseFormat returns the format with the given configuration name.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	if name == "jpg" {
		name = "jpeg"
	}
	if name == "tif" {
		name = "tiff"
	}
	for f := Format(0); f < formatCount; f++ {
		if formatInfoTable[f].Name == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromExt returns the format for a file extension such as ".png".
func FormatFromExt(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	for f := Format(0); f < formatCount; f++ {
		for _, e := range formatInfoTable[f].Exts {
			if e == ext {
				return f, true
			}
		}
	}
	return 0, false
}

// IsImageExt reports whether ext is a readable image extension.
func IsImageExt(ext string) bool {
	_, ok := FormatFromExt(ext)
	return ok
}
