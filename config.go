package animkit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/gogpu/animkit/frame"
	imgutil "github.com/gogpu/animkit/internal/image"
	"github.com/gogpu/animkit/matte"
	"github.com/gogpu/animkit/palette"
	"github.com/gogpu/animkit/store"
)

// Config is the YAML configuration of a pipeline.
//
//	root: animations
//	workers: 4
//	delay: 30ms
//	format: png
//	matte:
//	  backend: command
//	  command: [rembg, i]
type Config struct {
	Root      string        `yaml:"root"`
	Workers   int           `yaml:"workers"`
	Epsilon   uint8         `yaml:"epsilon"`
	Delay     time.Duration `yaml:"delay"`
	Format    string        `yaml:"format"`
	CacheSize int64         `yaml:"cache_size"`
	LogLevel  string        `yaml:"log_level"`

	// Catalog is the provenance database path. Empty selects the default
	// file inside the root; "off" disables it.
	Catalog string `yaml:"catalog"`

	Matte MatteConfig `yaml:"matte"`
}

// MatteConfig selects the background removal backend.
type MatteConfig struct {
	// Backend is "colorkey" (default) or "command".
	Backend string `yaml:"backend"`

	// Key and Tolerance configure the colorkey backend. An empty key uses
	// the top-left pixel of every frame.
	Key       string `yaml:"key"`
	Tolerance uint8  `yaml:"tolerance"`

	// Command configures the command backend.
	Command []string `yaml:"command"`
}

// Matte backends.
const (
	BackendColorKey = "colorkey"
	BackendCommand  = "command"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Root:      "animations",
		Delay:     frame.DefaultDelay,
		Format:    imgutil.FormatPNG.String(),
		CacheSize: store.DefaultCacheSize,
		LogLevel:  "warn",
		Matte:     MatteConfig{Backend: BackendColorKey},
	}
}

// LoadConfig reads a YAML configuration file. Fields missing from the file
// keep their defaults. A relative root is resolved against the directory of
// the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("%w: config: %w", ErrIO, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	if cfg.Catalog != "" && cfg.Catalog != "off" && !filepath.IsAbs(cfg.Catalog) {
		cfg.Catalog = filepath.Join(filepath.Dir(path), cfg.Catalog)
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration data over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: config: %w", ErrValidation, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("%w: config: root is required", ErrValidation)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: config: workers must not be negative", ErrValidation)
	}
	if c.Delay <= 0 {
		return fmt.Errorf("%w: config: delay must be positive", ErrValidation)
	}
	f, err := imgutil.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("%w: config: %w", ErrValidation, err)
	}
	if !f.CanEncode() {
		return fmt.Errorf("%w: config: cannot write %s frames", ErrValidation, f)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	_, err = c.Matte.Matter()
	return err
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: config: log_level: %w", ErrValidation, err)
	}
	return l, nil
}

// Matter builds the configured backend.
func (m MatteConfig) Matter() (matte.Matter, error) {
	switch strings.ToLower(m.Backend) {
	case "", BackendColorKey:
		k := matte.ColorKey{Tolerance: m.Tolerance}
		if m.Key != "" {
			c, err := palette.ParseColor(m.Key)
			if err != nil {
				return nil, fmt.Errorf("config: matte key: %w", err)
			}
			k.Key = &c
		}
		return k, nil
	case BackendCommand:
		if len(m.Command) == 0 {
			return nil, fmt.Errorf("%w: config: matte command is empty", ErrValidation)
		}
		return matte.Command{Args: m.Command}, nil
	default:
		return nil, fmt.Errorf("%w: config: unknown matte backend %q", ErrValidation, m.Backend)
	}
}

// Options converts the configuration to pipeline options.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m, err := c.Matte.Matter()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithWorkers(c.Workers),
		WithEpsilon(c.Epsilon),
		WithDelay(c.Delay),
		WithFormat(c.Format),
		WithCacheSize(c.CacheSize),
		WithMatter(m),
	}
	switch c.Catalog {
	case "":
	case "off":
		opts = append(opts, WithCatalog(""))
	default:
		opts = append(opts, WithCatalog(c.Catalog))
	}
	return opts, nil
}

// Open creates a pipeline from the configuration.
func (c Config) Open() (*Pipeline, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return New(c.Root, opts...)
}
