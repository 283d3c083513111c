package frame

import "errors"

// Error categories shared by every pipeline stage. Stage-specific errors wrap
// one of these, so callers can classify a failure with errors.Is without
// knowing which stage produced it.
var (
	// ErrValidation is returned for rejected input: bad ranges, bad
	// opacity, bad names. No state is mutated.
	ErrValidation = errors.New("invalid argument")

	// ErrDuplicateName is returned when an animation name is already taken.
	ErrDuplicateName = errors.New("animation already exists")

	// ErrEmptyContent is returned when an operation's output would be
	// meaningless, e.g. cropping a fully transparent animation.
	ErrEmptyContent = errors.New("no visible content")

	// ErrEmptyAnimation is returned when committing zero frames.
	ErrEmptyAnimation = errors.New("animation has no frames")

	// ErrNotFound is returned for unknown animations or frame indices.
	ErrNotFound = errors.New("not found")

	// ErrIO covers storage and backend failures (disk full, permission
	// denied, matting backend unavailable).
	ErrIO = errors.New("i/o failure")
)

// categories is ordered from most to least specific.
var categories = []error{
	ErrDuplicateName,
	ErrEmptyAnimation,
	ErrEmptyContent,
	ErrNotFound,
	ErrValidation,
	ErrIO,
}

// Category returns the category sentinel err belongs to, or nil when err is
// nil or unclassified.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
