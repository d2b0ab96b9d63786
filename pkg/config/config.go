// Package config loads rnaviz settings from a TOML file.
//
// Every key is optional; omitted keys keep their defaults:
//
//	layout_mode    = "force_directed"   # or "circular"
//	max_iterations = 200
//	tolerance      = 1e-4
//	seed           = 42
//
//	[node_colors]
//	A = "lightblue"
//	U = "red"
//	G = "lightgreen"
//	C = "yellow"
//
//	[backbone_style]
//	color = "black"
//	width = 1.0
//
//	[pairing_style]
//	color = "red"
//	width = 1.2
//
//	[viewport]
//	width  = 800
//	height = 600
//	margin = 40
//
//	[cache]
//	backend = "file"                    # file, none, redis, mongo
//	ttl     = "168h"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rnaviz/pkg/cache"
	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/structure"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// FileName is the configuration file looked up in the user config dir.
const FileName = "config.toml"

// DefaultAddr is the default listen address of the HTTP API.
const DefaultAddr = ":8080"

// Config holds every setting the CLI and the API read from file.
type Config struct {
	LayoutMode    string            `toml:"layout_mode"`
	MaxIterations int               `toml:"max_iterations"`
	Tolerance     float64           `toml:"tolerance"`
	Seed          uint64            `toml:"seed"`
	NodeColors    map[string]string `toml:"node_colors"`
	BackboneStyle style.Stroke      `toml:"backbone_style"`
	PairingStyle  style.Stroke      `toml:"pairing_style"`
	LabelColor    string            `toml:"label_color,omitempty"`
	Viewport      render.Viewport   `toml:"viewport"`
	Cache         CacheConfig       `toml:"cache"`
	Server        ServerConfig      `toml:"server"`
}

// CacheConfig selects and configures the artifact cache backend.
type CacheConfig struct {
	Backend    string   `toml:"backend"`
	Dir        string   `toml:"dir,omitempty"`
	TTL        Duration `toml:"ttl"`
	RedisURL   string   `toml:"redis_url,omitempty"`
	MongoURI   string   `toml:"mongo_uri,omitempty"`
	MongoDB    string   `toml:"mongo_database,omitempty"`
	Collection string   `toml:"mongo_collection,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	MaxSequenceLen int      `toml:"max_sequence_length"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct{ time.Duration }

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	p := style.Default()
	colors := make(map[string]string, len(p.NodeColors))
	for b, c := range p.NodeColors {
		colors[b.String()] = c
	}
	return Config{
		LayoutMode:    string(layout.DefaultMode),
		MaxIterations: layout.DefaultMaxIterations,
		Tolerance:     layout.DefaultTolerance,
		Seed:          layout.DefaultSeed,
		NodeColors:    colors,
		BackboneStyle: p.Backbone,
		PairingStyle:  p.Pairing,
		Viewport:      render.DefaultViewport(),
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{cache.TTLArtifact},
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxSequenceLen: 5000,
			RequestTimeout: Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns the per-user configuration file path.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rnaviz", FileName), nil
}

// Load reads the file at path on top of [Default] and validates the result.
// An empty path loads [DefaultPath] if it exists and the defaults otherwise.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, rnaerrors.Wrap(rnaerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of [Default]. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	defaults := cfg.NodeColors
	cfg.NodeColors = nil

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, rnaerrors.Wrap(rnaerrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}

	colors := make(map[string]string, len(defaults))
	for k, v := range defaults {
		colors[k] = v
	}
	for k, v := range cfg.NodeColors {
		colors[strings.ToUpper(k)] = v
	}
	cfg.NodeColors = colors

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if _, err := layout.ParseMode(c.LayoutMode); err != nil {
		return err
	}
	if c.MaxIterations <= 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Tolerance <= 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "tolerance must be positive, got %g", c.Tolerance)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if err := c.Viewport.Validate(); err != nil {
		return err
	}
	if _, err := c.Cache.Options(); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Server.MaxSequenceLen < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "max_sequence_length must not be negative")
	}
	return nil
}

// LayoutOptions returns the layout engine settings.
func (c Config) LayoutOptions() (layout.Options, error) {
	mode, err := layout.ParseMode(c.LayoutMode)
	if err != nil {
		return layout.Options{}, err
	}
	return layout.Options{
		Mode:          mode,
		MaxIterations: c.MaxIterations,
		Tolerance:     c.Tolerance,
		Seed:          c.Seed,
	}, nil
}

// Policy builds and validates the style policy.
func (c Config) Policy() (style.Policy, error) {
	p := style.Policy{
		NodeColors: make(map[structure.Base]string, len(c.NodeColors)),
		Backbone:   c.BackboneStyle,
		Pairing:    c.PairingStyle,
		LabelColor: c.LabelColor,
	}
	for k, v := range c.NodeColors {
		if len(k) != 1 || !structure.Base(k[0]).Valid() {
			return style.Policy{}, rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "node_colors: unknown base %q", k)
		}
		p.NodeColors[structure.Base(k[0])] = v
	}
	if err := p.Validate(); err != nil {
		return style.Policy{}, err
	}
	return p, nil
}

// Options converts the section into cache backend options.
func (c CacheConfig) Options() (cache.Options, error) {
	backend := strings.ToLower(c.Backend)
	if backend == "" {
		backend = cache.BackendFile
	}
	switch backend {
	case cache.BackendFile, cache.BackendNone, cache.BackendRedis, cache.BackendMongo:
	default:
		return cache.Options{}, rnaerrors.New(rnaerrors.ErrCodeInvalidConfig,
			"unknown cache backend %q (must be file, none, redis or mongo)", c.Backend)
	}
	return cache.Options{
		Backend:    backend,
		Dir:        c.Dir,
		RedisURL:   c.RedisURL,
		MongoURI:   c.MongoURI,
		Database:   c.MongoDB,
		Collection: c.Collection,
	}, nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
