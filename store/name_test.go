package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/animkit/frame"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "walk_cycle", "walk_cycle", true},
		{"spaces trimmed", "  run  ", "run", true},
		{"inner dot", "walk.v2", "walk.v2", true},
		{"nfc", "cafe\u0301", "caf\u00e9", true},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"hidden", ".walk", "", false},
		{"dot dot", "..", "", false},
		{"trailing dot", "walk.", "", false},
		{"slash", "a/b", "", false},
		{"backslash", `a\b`, "", false},
		{"colon", "a:b", "", false},
		{"control", "a\x00b", "", false},
		{"reserved", SpritesDir, "", false},
		{"too long", strings.Repeat("a", 256), "", false},
		{"invalid utf8", "a\xffb", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateName(tt.input)
			if !tt.ok {
				if !errors.Is(err, ErrInvalidName) || !errors.Is(err, frame.ErrValidation) {
					t.Fatalf("ValidateName(%q) error = %v, want ErrInvalidName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateName(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
