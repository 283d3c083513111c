// Package ingest builds source animations from video files.
//
// Frames are extracted with ffmpeg (through github.com/u2takey/ffmpeg-go)
// as a PNG image2pipe stream and decoded in process, so no intermediate
// files are written.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
)

// DefaultFPS is the sampling rate used when Options.FPS is zero.
const DefaultFPS = 10

// ErrInvalidOptions is returned for negative sampling parameters.
var ErrInvalidOptions = fmt.Errorf("%w: ingest: invalid options", frame.ErrValidation)

// Options controls frame extraction.
type Options struct {
	// FPS is the number of frames sampled per second of video.
	FPS int

	// MaxWidth scales frames down to at most this width, keeping the aspect
	// ratio. Zero keeps the source size.
	MaxWidth int
}

func (o Options) withDefaults() (Options, error) {
	if o.FPS < 0 || o.MaxWidth < 0 {
		return o, fmt.Errorf("%w: fps %d, max width %d", ErrInvalidOptions, o.FPS, o.MaxWidth)
	}
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	return o, nil
}

// Delay returns the frame delay matching the sampling rate.
func (o Options) Delay() time.Duration {
	if o.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(o.FPS)
}

func (o Options) outputArgs() ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"format": "image2pipe",
		"vcodec": "png",
		"r":      strconv.Itoa(o.FPS),
	}
	if o.MaxWidth > 0 {
		args["vf"] = fmt.Sprintf("scale='min(%d,iw)':-1", o.MaxWidth)
	}
	return args
}

// Extract samples frames from the video at path. It requires the ffmpeg
// binary on PATH.
func Extract(ctx context.Context, path string, opts Options) (frame.Sequence, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: video %q", frame.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: ingest: %w", frame.ErrIO, err)
	}

	r, w := io.Pipe()
	var stderr bytes.Buffer
	stream := ffmpeg.Input(path).
		Output("pipe:1", opts.outputArgs()).
		WithOutput(w).
		WithErrorOutput(&stderr)
	stream.Context = ctx

	slogger().Debug("ingest: running ffmpeg", "args", strings.Join(stream.GetArgs(), " "))

	done := make(chan error, 1)
	go func() {
		err := stream.Run()
		_ = w.CloseWithError(err)
		done <- err
	}()

	seq, decodeErr := DecodeStream(r, opts.Delay())
	// Unblock ffmpeg if decoding stopped early.
	_ = r.CloseWithError(io.ErrClosedPipe)
	runErr := <-done

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case runErr != nil:
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
			msg = msg[i+1:]
		}
		return nil, fmt.Errorf("%w: ingest: ffmpeg: %w: %s", frame.ErrIO, runErr, msg)
	case decodeErr != nil:
		return nil, decodeErr
	}

	slogger().Info("ingest: frames extracted", "video", path, "frames", len(seq), "fps", opts.FPS)
	return seq, nil
}

// DecodeStream decodes a concatenation of PNG images, as produced by
// ffmpeg's image2pipe muxer, into frames with the given delay.
func DecodeStream(r io.Reader, delay time.Duration) (frame.Sequence, error) {
	br := bufio.NewReader(r)
	var seq frame.Sequence
	for {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: ingest: read frame %d: %w", frame.ErrIO, len(seq), err)
		}
		img, err := png.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("%w: ingest: decode frame %d: %w", frame.ErrIO, len(seq), err)
		}
		seq = append(seq, frame.New(len(seq), delay, imgutil.ToNRGBA(img)))
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("ingest: %w", frame.ErrEmptyAnimation)
	}
	return seq, nil
}
