// Package transform implements the pure frame transforms of the pipeline:
// center alignment, sprite compositing and cropping.
//
// Every function returns new pixel buffers and leaves its input untouched.
// None of them write to storage.
//
// # Alignment padding
//
// Align grows the canvas rather than clipping. For a batch whose
// horizontal offsets are o_0..o_n-1 the padding is P = 2*max|o_i|, every
// output frame is maxWidth+P wide, and frame i receives P/2 + o_i
// transparent columns on the left (plus half the width difference when
// source frames differ in size). A positive offset therefore moves content
// to the right. Vertical offsets follow the same rule on rows. With all
// offsets zero the output is pixel-identical to the input.
package transform

import (
	"fmt"

	"github.com/gogpu/animkit/frame"
)

// Validation errors.
var (
	// ErrInvalidRange is returned for a frame range that is empty or outside the animation.
	ErrInvalidRange = fmt.Errorf("%w: invalid frame range", frame.ErrValidation)

	// ErrInvalidOffset is returned for center offsets keyed by a negative
	// frame index or too large to place on a canvas.
	ErrInvalidOffset = fmt.Errorf("%w: invalid center offset", frame.ErrValidation)

	// ErrInvalidOpacity is returned for an opacity outside [0, 1].
	ErrInvalidOpacity = fmt.Errorf("%w: opacity must be within [0, 1]", frame.ErrValidation)

	// ErrInvalidMargins is returned for negative crop margins or margins
	// that leave no area.
	ErrInvalidMargins = fmt.Errorf("%w: invalid crop margins", frame.ErrValidation)
)
