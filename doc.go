// Package animkit builds derivative sprite animations from extracted frame
// images.
//
// # Overview
//
// An animation is a folder of frame images under a store root. A
// [Pipeline] opens the root and turns existing animations into new ones:
//
//   - CreateFromRange selects a frame range and re-centers a moving subject
//     with per-frame offsets.
//   - SaveSprites recolors selected colors into a sprite overlay layer.
//   - Crop trims an animation and its sprites to their shared content box.
//   - RemoveBackground mattes every frame through a pluggable backend.
//   - Ingest samples a video file into a new source animation.
//
// Every operation writes a new animation (or a new sprite layer). Outputs
// are assembled off to the side and published with a single rename, so a
// failed operation leaves nothing behind.
//
// # Quick Start
//
//	p, err := animkit.New("animations")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	_, err = p.CreateFromRange(ctx, animkit.CreateRequest{
//	    Source:  "walk_raw",
//	    Name:    "walk",
//	    Range:   transform.Range{Start: 10, End: 20},
//	    Offsets: transform.Offsets{10: {X: 5}},
//	})
//
// # Errors
//
// Failures are classified by category: [ErrValidation], [ErrDuplicateName],
// [ErrEmptyContent], [ErrEmptyAnimation], [ErrNotFound] and [ErrIO]. Use
// errors.Is or [Classify].
//
// # Architecture
//
//   - frame: frames, sequences, file naming, error categories
//   - palette: color tables, color extraction and remapping
//   - transform: alignment, sprite compositing, cropping
//   - matte: background removal backends
//   - store: animation folders, atomic commits
//   - catalog: provenance database
//   - ingest: video frame extraction
package animkit

// Version is the current version of the library.
const Version = "0.1.0"
