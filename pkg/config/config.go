package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "dotedit.toml"

const envPrefix = "DOTEDIT_"

// Config holds all configuration for the application
type Config struct {
	Document  string         `koanf:"document"`
	Port      int            `koanf:"port"`
	Watch     bool           `koanf:"watch"`
	Verbosity string         `koanf:"verbosity"`
	Log       LogConfig      `koanf:"log"`
	Viewport  ViewportConfig `koanf:"viewport"`
	Layout    LayoutConfig   `koanf:"layout"`
	Stencils  StencilConfig  `koanf:"stencils"`
}

type LogConfig struct {
	JSON bool `koanf:"json"`
}

// ViewportConfig is the visible drawing area used when fitting layouts.
type ViewportConfig struct {
	Width  float64 `koanf:"width"`
	Height float64 `koanf:"height"`
}

type LayoutConfig struct {
	Iterations int     `koanf:"iterations"`
	NodeSep    float64 `koanf:"nodesep"`
}

// StencilConfig names the stencils given to new elements.
type StencilConfig struct {
	Node string `koanf:"node"`
	Edge string `koanf:"edge"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// An empty path means DefaultFile, which may be missing. A path given
// explicitly must exist. Flag names map to keys by replacing dashes with
// dots, so --viewport-width sets viewport.width.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: DOTEDIT_ (e.g., DOTEDIT_VIEWPORT_WIDTH=1024)
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			key := strings.ReplaceAll(fl.Name, "-", ".")
			if !k.Exists(key) {
				return "", nil // not a config flag
			}
			return key, posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"document":  "",
		"port":      8080,
		"watch":     false,
		"verbosity": "info",
		"log":       map[string]interface{}{"json": false},
		"viewport":  map[string]interface{}{"width": 800.0, "height": 600.0},
		"layout":    map[string]interface{}{"iterations": 20, "nodesep": 20.0},
		"stencils":  map[string]interface{}{"node": "circle", "edge": "line"},
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport %vx%v must be positive", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Layout.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("layout.iterations must be positive, got %d", c.Layout.Iterations))
	}
	if c.Layout.NodeSep <= 0 {
		errs = append(errs, fmt.Errorf("layout.nodesep must be positive, got %v", c.Layout.NodeSep))
	}
	return errors.Join(errs...)
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
