package animkit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/animkit/catalog"
	"github.com/gogpu/animkit/matte"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.delay != 30*time.Millisecond {
		t.Errorf("delay = %v, want 30ms", o.delay)
	}
	if o.format != "png" {
		t.Errorf("format = %q, want png", o.format)
	}
	if _, ok := o.matter.(matte.ColorKey); !ok {
		t.Errorf("matter = %T, want matte.ColorKey", o.matter)
	}
	if o.catalogPath != nil {
		t.Error("catalog path set by default")
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"unknown format", WithFormat("xcf")},
		{"read-only format", WithFormat("gif")},
		{"alpha-dropping format", WithFormat("bmp")},
		{"zero delay", WithDelay(0)},
		{"nil matter", WithMatter(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(t.TempDir(), tt.opt)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("New() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestNew_Catalog(t *testing.T) {
	root := t.TempDir()
	p, err := New(root, WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	if p.catalog == nil || p.catalog.Path() != filepath.Join(root, catalog.FileName) {
		t.Errorf("default catalog not opened in root")
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	p, err = New(t.TempDir(), WithCatalog(""))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if p.catalog != nil {
		t.Error("catalog opened although disabled")
	}
	if _, err := p.History("x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("History() error = %v, want ErrNotFound", err)
	}
}
