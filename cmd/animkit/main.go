// Command animkit builds derivative sprite animations from frame folders.
//
// Usage:
//
//	animkit [-config file] [-root dir] [-v] <command> [flags]
//
// Commands: list, info, delete, create, colors, sprites, crop, rembg,
// ingest, history. Run "animkit <command> -h" for command flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gogpu/animkit"
	"github.com/gogpu/animkit/palette"
	"github.com/gogpu/animkit/store"
	"github.com/gogpu/animkit/transform"
)

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, p *animkit.Pipeline, args []string) error
}

var commands = []command{
	{"list", "list animations", runList},
	{"info", "describe an animation", runInfo},
	{"delete", "delete an animation", runDelete},
	{"create", "create an aligned animation from a frame range", runCreate},
	{"colors", "list the colors of an animation", runColors},
	{"sprites", "build and save the sprite layer", runSprites},
	{"crop", "crop an animation to its content", runCrop},
	{"rembg", "remove the background of an animation", runRemoveBackground},
	{"ingest", "create an animation from a video", runIngest},
	{"history", "show how an animation was produced", runHistory},
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		root       = flag.String("root", "", "animation root folder (overrides config)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg := animkit.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = animkit.LoadConfig(*configPath); err != nil {
			fatal(err)
		}
	}
	if *root != "" {
		cfg.Root = *root
	}
	level, err := cfg.Level()
	if err != nil {
		fatal(err)
	}
	if *verbose {
		level = slog.LevelDebug
	}
	animkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	name, args := flag.Arg(0), flag.Args()[1:]
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "animkit: unknown command %q\n", name)
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := cfg.Open()
	if err != nil {
		fatal(err)
	}
	err = cmd.run(ctx, p, args)
	if cerr := p.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: animkit [-config file] [-root dir] [-v] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(os.Stderr, "\nGlobal flags:\n")
	flag.PrintDefaults()
}

// fatal prints err with its category and exits with a category specific code.
func fatal(err error) {
	kind := animkit.Classify(err)
	fmt.Fprintf(os.Stderr, "animkit: %v (%s)\n", err, kind)
	switch kind {
	case animkit.KindValidation, animkit.KindDuplicateName, animkit.KindEmptyAnimation, animkit.KindEmptyContent:
		os.Exit(2)
	case animkit.KindNotFound:
		os.Exit(3)
	}
	os.Exit(1)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("animkit "+name, flag.ExitOnError)
}

func required(fs *flag.FlagSet, names ...string) error {
	for _, n := range names {
		if fs.Lookup(n).Value.String() == "" {
			return fmt.Errorf("%w: -%s is required", animkit.ErrValidation, n)
		}
	}
	return nil
}

func printSummary(s store.Summary) {
	fmt.Printf("%s\t%d frames\t%d sprites\n", s.Name, s.FrameCount, len(s.Sprites))
}

func runList(_ context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("list")
	_ = fs.Parse(args)
	list, err := p.List()
	if err != nil {
		return err
	}
	for _, s := range list {
		printSummary(s)
	}
	return nil
}

func runInfo(_ context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("info")
	name := fs.String("name", "", "animation name")
	_ = fs.Parse(args)
	if err := required(fs, "name"); err != nil {
		return err
	}
	s, err := p.Info(*name)
	if err != nil {
		return err
	}
	printSummary(s)
	if r, err := p.Provenance(s.Name); err == nil {
		fmt.Printf("origin\t%s from %s at %s\n", r.Op, r.Source, r.Created.Format("2006-01-02 15:04:05"))
	}
	for _, f := range s.Frames {
		fmt.Println("frame\t" + f)
	}
	for _, f := range s.Sprites {
		fmt.Println("sprite\t" + f)
	}
	return nil
}

func runDelete(_ context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("delete")
	name := fs.String("name", "", "animation name")
	_ = fs.Parse(args)
	if err := required(fs, "name"); err != nil {
		return err
	}
	return p.Delete(*name)
}

// offsetFlag collects -offset idx:dx[:dy] values.
type offsetFlag transform.Offsets

func (o offsetFlag) String() string { return fmt.Sprint(transform.Offsets(o)) }

func (o offsetFlag) Set(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("want idx:dx[:dy], got %q", s)
	}
	vals := make([]int, 3)
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("offset %q: %w", s, err)
		}
		vals[i] = v
	}
	o[vals[0]] = transform.Offset{X: vals[1], Y: vals[2]}
	return nil
}

func runCreate(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("create")
	var (
		source  = fs.String("source", "", "source animation")
		name    = fs.String("name", "", "new animation name")
		start   = fs.Int("start", 0, "first frame (inclusive)")
		end     = fs.Int("end", -1, "last frame (exclusive), default all")
		delay   = fs.Duration("delay", 0, "frame delay, default from config")
		offsets = offsetFlag{}
	)
	fs.Var(offsets, "offset", "center offset idx:dx[:dy], repeatable")
	_ = fs.Parse(args)
	if err := required(fs, "source", "name"); err != nil {
		return err
	}
	if *end < 0 {
		info, err := p.Info(*source)
		if err != nil {
			return err
		}
		*end = info.FrameCount
	}

	s, err := p.CreateFromRange(ctx, animkit.CreateRequest{
		Source:  *source,
		Name:    *name,
		Range:   transform.Range{Start: *start, End: *end},
		Offsets: transform.Offsets(offsets),
		Delay:   *delay,
	})
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

func runColors(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("colors")
	var (
		name   = fs.String("name", "", "animation name")
		region = fs.String("region", "", "x0,y0,x1,y1 region, default whole frame")
		limit  = fs.Int("n", 0, "print at most n colors")
	)
	_ = fs.Parse(args)
	if err := required(fs, "name"); err != nil {
		return err
	}
	var r image.Rectangle
	if *region != "" {
		v, err := parseInts(*region, 4)
		if err != nil {
			return err
		}
		r = image.Rect(v[0], v[1], v[2], v[3])
	}
	colors, err := p.Colors(ctx, *name, r)
	if err != nil {
		return err
	}
	for i, c := range colors {
		if *limit > 0 && i == *limit {
			break
		}
		fmt.Printf("%s\t%d\n", palette.FormatColor(c.Color), c.Count)
	}
	return nil
}

// pairFlag collects -map SRC=DST values.
type pairFlag []palette.Pair

func (p *pairFlag) String() string { return fmt.Sprint(*p) }

func (p *pairFlag) Set(s string) error {
	pair, err := palette.ParsePair(s)
	if err != nil {
		return err
	}
	*p = append(*p, pair)
	return nil
}

func runSprites(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("sprites")
	var (
		name      = fs.String("name", "", "animation name")
		opacity   = fs.Float64("opacity", 1, "sprite opacity in [0, 1]")
		showFrame = fs.Bool("show-frame", false, "composite sprites over the frame")
		pairs     pairFlag
	)
	fs.Var(&pairs, "map", "color mapping RRGGBB[AA]=RRGGBB[AA], repeatable")
	_ = fs.Parse(args)
	if err := required(fs, "name"); err != nil {
		return err
	}
	tbl, err := palette.NewTable(pairs...)
	if err != nil {
		return err
	}
	s, err := p.SaveSprites(ctx, animkit.SpriteRequest{
		Name:      *name,
		Table:     tbl,
		Opacity:   *opacity,
		ShowFrame: *showFrame,
	})
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

func runCrop(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("crop")
	var (
		source  = fs.String("source", "", "source animation")
		name    = fs.String("name", "", "new animation name")
		layers  = fs.String("layers", "frames,sprites", "layers that define the crop box")
		margins = fs.String("margins", "", "explicit left,right,top,bottom margins")
	)
	_ = fs.Parse(args)
	if err := required(fs, "source", "name"); err != nil {
		return err
	}
	req := animkit.CropRequest{Source: *source, Name: *name}
	if *margins != "" {
		v, err := parseInts(*margins, 4)
		if err != nil {
			return err
		}
		req.Margins = &transform.Margins{Left: v[0], Right: v[1], Top: v[2], Bottom: v[3]}
	} else {
		l, err := animkit.ParseLayers(*layers)
		if err != nil {
			return err
		}
		req.Layers = l
	}
	s, err := p.Crop(ctx, req)
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

func runRemoveBackground(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("rembg")
	var (
		source = fs.String("source", "", "source animation")
		name   = fs.String("name", "", "new animation name")
	)
	_ = fs.Parse(args)
	if err := required(fs, "source", "name"); err != nil {
		return err
	}
	s, err := p.RemoveBackground(ctx, animkit.MatteRequest{Source: *source, Name: *name})
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

func runIngest(ctx context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("ingest")
	var (
		video = fs.String("video", "", "video file")
		name  = fs.String("name", "", "new animation name")
		fps   = fs.Int("fps", 0, "frames sampled per second")
		width = fs.Int("width", 0, "maximum frame width")
	)
	_ = fs.Parse(args)
	if err := required(fs, "video", "name"); err != nil {
		return err
	}
	s, err := p.Ingest(ctx, animkit.IngestRequest{Video: *video, Name: *name, FPS: *fps, MaxWidth: *width})
	if err != nil {
		return err
	}
	printSummary(s)
	return nil
}

func runHistory(_ context.Context, p *animkit.Pipeline, args []string) error {
	fs := newFlagSet("history")
	name := fs.String("name", "", "animation name, default lists every recorded animation")
	_ = fs.Parse(args)
	if *name == "" {
		names, err := p.Catalogued()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}
	records, err := p.History(*name)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s\t%s\t%s\t%d frames\t%v\n", r.Created.Format("2006-01-02 15:04:05"), r.Op, r.Source, r.FrameCount, r.Params)
	}
	return nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d comma separated integers, got %q", animkit.ErrValidation, n, s)
	}
	out := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", animkit.ErrValidation, s, err)
		}
		out[i] = v
	}
	return out, nil
}

