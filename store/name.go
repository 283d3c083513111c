package store

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/animkit/frame"
)

// ErrInvalidName is returned for names that are empty or not safe to use as
// a single path element.
var ErrInvalidName = fmt.Errorf("%w: invalid name", frame.ErrValidation)

// maxNameBytes is the common file name limit of Linux, macOS and Windows file systems.
const maxNameBytes = 255

// ValidateName checks that name can be used as an animation or sprite file
// name and returns its NFC normalized form, which is the name stored on
// disk.
func ValidateName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidName)
	}
	n := norm.NFC.String(strings.TrimSpace(name))
	switch {
	case n == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	case len(n) > maxNameBytes:
		return "", fmt.Errorf("%w: %q longer than %d bytes", ErrInvalidName, n, maxNameBytes)
	case n[0] == '.':
		return "", fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, n)
	case strings.HasSuffix(n, "."):
		return "", fmt.Errorf("%w: %q ends with a dot", ErrInvalidName, n)
	case n == SpritesDir:
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, n)
	}
	for _, r := range n {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidName, n, r)
		}
	}
	return n, nil
}
