// Package palette implements exact-color extraction and recoloring of frames.
//
// Colors are compared as exact non-premultiplied RGBA values: two pixels
// that differ only in alpha are different colors.
package palette

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/animkit/frame"
)

// ErrDuplicateColor is returned when a color table lists a source color twice.
var ErrDuplicateColor = fmt.Errorf("%w: duplicate source color", frame.ErrValidation)

// ErrInvalidColor is returned for unparsable color strings.
var ErrInvalidColor = fmt.Errorf("%w: invalid color", frame.ErrValidation)

// Table maps source colors to target colors.
type Table map[color.NRGBA]color.NRGBA

// Pair is a single source to target entry.
type Pair struct {
	From color.NRGBA
	To   color.NRGBA
}

// NewTable builds a table from pairs, rejecting repeated source colors.
func NewTable(pairs ...Pair) (Table, error) {
	t := make(Table, len(pairs))
	for _, p := range pairs {
		if _, dup := t[p.From]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColor, FormatColor(p.From))
		}
		t[p.From] = p.To
	}
	return t, nil
}

// Lookup returns the target of c, if c is a key of the table.
func (t Table) Lookup(c color.NRGBA) (color.NRGBA, bool) {
	to, ok := t[c]
	return to, ok
}

// Pairs returns the entries sorted by source color, for stable output.
func (t Table) Pairs() []Pair {
	pairs := make([]Pair, 0, len(t))
	for from, to := range t {
		pairs = append(pairs, Pair{From: from, To: to})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return packColor(pairs[i].From) < packColor(pairs[j].From)
	})
	return pairs
}

// Disjoint reports whether no target color is also a source color. Mapping
// with a disjoint table is idempotent.
func (t Table) Disjoint() bool {
	for _, to := range t {
		if _, ok := t[to]; ok {
			return false
		}
	}
	return true
}

// ParseColor parses "#RRGGBB", "#RRGGBBAA", "RRGGBB" or "RRGGBBAA".
// Six-digit colors are opaque.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ParsePair parses "SRC=DST" or "SRC:DST".
func ParsePair(s string) (Pair, error) {
	from, to, ok := strings.Cut(s, "=")
	if !ok {
		from, to, ok = strings.Cut(s, ":")
	}
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q is not SRC=DST", ErrInvalidColor, s)
	}
	src, err := ParseColor(from)
	if err != nil {
		return Pair{}, err
	}
	dst, err := ParseColor(to)
	if err != nil {
		return Pair{}, err
	}
	return Pair{From: src, To: dst}, nil
}

// FormatColor formats c as "#RRGGBBAA".
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func packColor(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}
