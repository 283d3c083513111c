package animkit

import (
	"github.com/gogpu/animkit/frame"
)

// Error categories. Every error returned by a Pipeline matches at most one
// of them with errors.Is.
var (
	ErrValidation     = frame.ErrValidation
	ErrDuplicateName  = frame.ErrDuplicateName
	ErrEmptyContent   = frame.ErrEmptyContent
	ErrEmptyAnimation = frame.ErrEmptyAnimation
	ErrNotFound       = frame.ErrNotFound
	ErrIO             = frame.ErrIO
)

// Kind is the stable name of an error category.
type Kind string

// Error kinds.
const (
	KindNone           Kind = ""
	KindValidation     Kind = "validation"
	KindDuplicateName  Kind = "duplicate_name"
	KindEmptyContent   Kind = "empty_content"
	KindEmptyAnimation Kind = "empty_animation"
	KindNotFound       Kind = "not_found"
	KindIO             Kind = "io"
	KindUnknown        Kind = "unknown"
)

var kinds = map[error]Kind{
	frame.ErrValidation:     KindValidation,
	frame.ErrDuplicateName:  KindDuplicateName,
	frame.ErrEmptyContent:   KindEmptyContent,
	frame.ErrEmptyAnimation: KindEmptyAnimation,
	frame.ErrNotFound:       KindNotFound,
	frame.ErrIO:             KindIO,
}

// Classify returns the category of err. It returns KindNone for nil and
// KindUnknown for errors outside the taxonomy, such as context cancellation.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if k, ok := kinds[frame.Category(err)]; ok {
		return k
	}
	return KindUnknown
}
