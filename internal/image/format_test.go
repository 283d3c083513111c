package image

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"png", FormatPNG},
		{"PNG", FormatPNG},
		{".bmp", FormatBMP},
		{"tif", FormatTIFF},
		{"jpg", FormatJPEG},
		{"webp", FormatWebP},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := ParseFormat("psd"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(psd) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFormat_CanEncode(t *testing.T) {
	for f := Format(0); f < formatCount; f++ {
		want := f == FormatPNG || f == FormatTIFF
		if f.CanEncode() != want {
			t.Errorf("%v.CanEncode() = %v, want %v", f, f.CanEncode(), want)
		}
	}
}

func TestFormatFromExt(t *testing.T) {
	if f, ok := FormatFromExt(".GIF"); !ok || f != FormatGIF {
		t.Errorf("FormatFromExt(.GIF) = %v, %v", f, ok)
	}
	if f, ok := FormatFromExt(".tif"); !ok || f != FormatTIFF {
		t.Errorf("FormatFromExt(.tif) = %v, %v", f, ok)
	}
	if IsImageExt(".txt") {
		t.Error("IsImageExt(.txt) = true")
	}
	if FormatPNG.Ext() != ".png" {
		t.Errorf("FormatPNG.Ext() = %q", FormatPNG.Ext())
	}
}
