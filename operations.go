package animkit

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gogpu/animkit/catalog"
	"github.com/gogpu/animkit/frame"
	"github.com/gogpu/animkit/ingest"
	"github.com/gogpu/animkit/matte"
	"github.com/gogpu/animkit/palette"
	"github.com/gogpu/animkit/store"
	"github.com/gogpu/animkit/transform"
)

// CreateRequest selects and re-centers a frame range of an existing
// animation.
type CreateRequest struct {
	Source string
	Name   string
	Range  transform.Range

	// Offsets are keyed by source frame index.
	Offsets transform.Offsets

	// Delay applies to every new frame. Zero selects the pipeline default.
	Delay time.Duration
}

// CreateFromRange aligns frames [Range.Start, Range.End) of the source and
// commits them, renumbered from 0, as a new animation.
func (p *Pipeline) CreateFromRange(ctx context.Context, req CreateRequest) (store.Summary, error) {
	name, err := p.checkTarget(req.Name)
	if err != nil {
		return store.Summary{}, err
	}
	anim, err := p.store.Animation(req.Source)
	if err != nil {
		return store.Summary{}, err
	}

	aligned, err := transform.Align(ctx, anim, req.Range, req.Offsets)
	if err != nil {
		return store.Summary{}, err
	}

	return p.commit(ctx, store.CommitRequest{Name: name, Frames: aligned, Delay: req.Delay}, catalog.Record{
		Op:     catalog.OpCreate,
		Source: anim.Name(),
		Params: map[string]string{
			"start":   strconv.Itoa(req.Range.Start),
			"end":     strconv.Itoa(req.Range.End),
			"offsets": formatOffsets(req.Offsets),
		},
	})
}

func formatOffsets(o transform.Offsets) string {
	keys := make([]int, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d:%d:%d", k, o[k].X, o[k].Y)
	}
	return strings.Join(parts, ",")
}

// SpriteRequest recolors an animation into a sprite layer.
type SpriteRequest struct {
	Name      string
	Table     palette.Table
	Opacity   float64
	ShowFrame bool
}

func (r SpriteRequest) options() transform.SpriteOptions {
	return transform.SpriteOptions{Opacity: r.Opacity, ShowFrame: r.ShowFrame}
}

// PreviewSprites builds the sprite layer of an animation without storing it.
func (p *Pipeline) PreviewSprites(ctx context.Context, req SpriteRequest) (frame.Sequence, error) {
	opts := req.options()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seq, err := p.loadFrames(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return transform.BuildSprites(ctx, p.pool, seq, req.Table, opts)
}

// SaveSprites builds the sprite layer of an animation and replaces its
// stored sprites.
func (p *Pipeline) SaveSprites(ctx context.Context, req SpriteRequest) (store.Summary, error) {
	sprites, err := p.PreviewSprites(ctx, req)
	if err != nil {
		return store.Summary{}, err
	}
	sum, err := p.writer.SaveSprites(ctx, req.Name, sprites)
	if err != nil {
		return store.Summary{}, err
	}

	pairs := req.Table.Pairs()
	colors := make([]string, len(pairs))
	for i, pr := range pairs {
		colors[i] = palette.FormatColor(pr.From) + "=" + palette.FormatColor(pr.To)
	}
	p.record(catalog.Record{
		Name:        sum.Name,
		Op:          catalog.OpSprites,
		Source:      sum.Name,
		FrameCount:  sum.FrameCount,
		SpriteCount: len(sum.Sprites),
		Params: map[string]string{
			"colors":     strings.Join(colors, ","),
			"opacity":    strconv.FormatFloat(req.Opacity, 'f', -1, 64),
			"show_frame": strconv.FormatBool(req.ShowFrame),
		},
	})
	return sum, nil
}

// Layer selects the sequences that contribute to a crop box.
type Layer uint8

// Crop layers.
const (
	LayerFrames Layer = 1 << iota
	LayerSprites

	LayerAll = LayerFrames | LayerSprites
)

// ParseLayers parses a comma separated list of "frames" and "sprites".
func ParseLayers(s string) (Layer, error) {
	var l Layer
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "frames":
			l |= LayerFrames
		case "sprites":
			l |= LayerSprites
		case "":
		default:
			return 0, fmt.Errorf("%w: unknown crop layer %q", ErrValidation, part)
		}
	}
	if l == 0 {
		return 0, fmt.Errorf("%w: no crop layer in %q", ErrValidation, s)
	}
	return l, nil
}

// CropRequest crops an animation and its sprites into a new animation.
type CropRequest struct {
	Source string
	Name   string

	// Layers contribute to the computed box. Zero means LayerAll.
	Layers Layer

	// Margins, when set, replace the computed box.
	Margins *transform.Margins
}

// Crop cuts every frame and sprite of the source to one shared box and
// commits the result as a new animation. The box is the union of the
// content of the selected layers, or the given margins.
func (p *Pipeline) Crop(ctx context.Context, req CropRequest) (store.Summary, error) {
	name, err := p.checkTarget(req.Name)
	if err != nil {
		return store.Summary{}, err
	}
	frames, err := p.loadFrames(ctx, req.Source)
	if err != nil {
		return store.Summary{}, err
	}
	sprites, err := p.loadSprites(ctx, req.Source)
	if err != nil {
		return store.Summary{}, err
	}

	var box transform.Box
	params := map[string]string{}
	if req.Margins != nil {
		w, h := transform.MaxSize(frames, sprites)
		if box, err = req.Margins.Box(w, h); err != nil {
			return store.Summary{}, err
		}
		m := req.Margins
		params["margins"] = fmt.Sprintf("%d,%d,%d,%d", m.Left, m.Right, m.Top, m.Bottom)
	} else {
		layers := req.Layers
		if layers == 0 {
			layers = LayerAll
		}
		var sets []frame.Sequence
		if layers&LayerFrames != 0 {
			sets = append(sets, frames)
		}
		if layers&LayerSprites != 0 {
			sets = append(sets, sprites)
		}
		if box, err = transform.BoundingBox(ctx, p.pool, p.epsilon, sets...); err != nil {
			return store.Summary{}, err
		}
		params["layers"] = layers.String()
	}
	params["box"] = box.String()

	croppedFrames, err := transform.Crop(ctx, p.pool, frames, box)
	if err != nil {
		return store.Summary{}, err
	}
	croppedSprites, err := transform.Crop(ctx, p.pool, sprites, box)
	if err != nil {
		return store.Summary{}, err
	}
	return p.commit(ctx, store.CommitRequest{
		Name:    name,
		Frames:  croppedFrames,
		Sprites: croppedSprites,
		Delay:   delayOf(frames),
	}, catalog.Record{Op: catalog.OpCrop, Source: req.Source, Params: params})
}

func (l Layer) String() string {
	var parts []string
	if l&LayerFrames != 0 {
		parts = append(parts, "frames")
	}
	if l&LayerSprites != 0 {
		parts = append(parts, "sprites")
	}
	return strings.Join(parts, ",")
}

// MatteRequest removes the background of an animation into a new one.
type MatteRequest struct {
	Source string
	Name   string
}

// RemoveBackground mattes every frame and sprite of the source with the
// pipeline's backend and commits the result as a new animation. Any frame
// failure fails the whole operation.
func (p *Pipeline) RemoveBackground(ctx context.Context, req MatteRequest) (store.Summary, error) {
	name, err := p.checkTarget(req.Name)
	if err != nil {
		return store.Summary{}, err
	}
	frames, err := p.loadFrames(ctx, req.Source)
	if err != nil {
		return store.Summary{}, err
	}
	sprites, err := p.loadSprites(ctx, req.Source)
	if err != nil {
		return store.Summary{}, err
	}

	matted, err := matte.Remove(ctx, p.pool, frames, p.matter)
	if err != nil {
		return store.Summary{}, fmt.Errorf("remove background of %q: %w", req.Source, err)
	}
	mattedSprites, err := matte.Remove(ctx, p.pool, sprites, p.matter)
	if err != nil {
		return store.Summary{}, fmt.Errorf("remove background of %q sprites: %w", req.Source, err)
	}

	return p.commit(ctx, store.CommitRequest{
		Name:    name,
		Frames:  matted,
		Sprites: mattedSprites,
		Delay:   delayOf(frames),
	}, catalog.Record{
		Op:     catalog.OpMatte,
		Source: req.Source,
		Params: map[string]string{"backend": fmt.Sprintf("%T", p.matter)},
	})
}

// IngestRequest creates a source animation from a video file.
type IngestRequest struct {
	Video    string
	Name     string
	FPS      int
	MaxWidth int
}

// Ingest samples the video and commits the frames as a new animation.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (store.Summary, error) {
	name, err := p.checkTarget(req.Name)
	if err != nil {
		return store.Summary{}, err
	}
	opts := ingest.Options{FPS: req.FPS, MaxWidth: req.MaxWidth}
	seq, err := ingest.Extract(ctx, req.Video, opts)
	if err != nil {
		return store.Summary{}, err
	}
	return p.commit(ctx, store.CommitRequest{Name: name, Frames: seq, Delay: opts.Delay()}, catalog.Record{
		Op:     catalog.OpIngest,
		Source: req.Video,
		Params: map[string]string{
			"fps":       strconv.Itoa(req.FPS),
			"max_width": strconv.Itoa(req.MaxWidth),
		},
	})
}

// delayOf returns the delay of the first frame, or zero for an empty sequence.
func delayOf(seq frame.Sequence) time.Duration {
	if len(seq) == 0 {
		return 0
	}
	return seq[0].Delay
}
