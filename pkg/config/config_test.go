package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	opts, err := cfg.LayoutOptions()
	if err != nil {
		t.Fatal(err)
	}
	want := layout.Options{Mode: layout.ForceDirected, MaxIterations: 200, Tolerance: 1e-4, Seed: 42}
	if opts != want {
		t.Errorf("LayoutOptions() = %+v, want %+v", opts, want)
	}

	p, err := cfg.Policy()
	if err != nil {
		t.Fatal(err)
	}
	if got := p.NodeColor(structure.Guanine); got != "lightgreen" {
		t.Errorf("G color = %q, want lightgreen", got)
	}
	if p.Pairing.Width != 1.2 || p.Backbone.Color != "black" {
		t.Errorf("strokes = %+v / %+v", p.Backbone, p.Pairing)
	}
	if cfg.Viewport.Width != 800 || cfg.Viewport.Height != 600 || cfg.Viewport.Margin != 40 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
layout_mode = "circular"
max_iterations = 50
seed = 7

[node_colors]
a = "#336699"

[pairing_style]
color = "blue"
width = 2.5

[viewport]
width = 1024
height = 768
margin = 10

[cache]
backend = "none"
ttl = "1h30m"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LayoutMode != "circular" || cfg.MaxIterations != 50 || cfg.Seed != 7 {
		t.Errorf("layout settings = %q %d %d", cfg.LayoutMode, cfg.MaxIterations, cfg.Seed)
	}
	if cfg.Tolerance != layout.DefaultTolerance {
		t.Errorf("tolerance = %g, want default", cfg.Tolerance)
	}
	if cfg.NodeColors["A"] != "#336699" {
		t.Errorf("A color = %q, lowercase key not normalized", cfg.NodeColors["A"])
	}
	if cfg.NodeColors["U"] != "red" {
		t.Errorf("U color = %q, want default red", cfg.NodeColors["U"])
	}
	if cfg.PairingStyle.Color != "blue" || cfg.PairingStyle.Width != 2.5 {
		t.Errorf("pairing style = %+v", cfg.PairingStyle)
	}
	if cfg.BackboneStyle.Color != "black" {
		t.Errorf("backbone style lost defaults: %+v", cfg.BackboneStyle)
	}
	if cfg.Viewport.Width != 1024 || cfg.Viewport.Margin != 10 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Cache.Backend != "none" || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code rnaerrors.Code
	}{
		{"syntax", `layout_mode = `, rnaerrors.ErrCodeInvalidConfig},
		{"unknown key", `colour = "red"`, rnaerrors.ErrCodeInvalidConfig},
		{"unknown mode", `layout_mode = "spiral"`, rnaerrors.ErrCodeInvalidLayoutMode},
		{"zero iterations", `max_iterations = 0`, rnaerrors.ErrCodeInvalidConfig},
		{"negative tolerance", `tolerance = -1.0`, rnaerrors.ErrCodeInvalidConfig},
		{"unknown color", "[node_colors]\nG = \"sparkly\"", rnaerrors.ErrCodeInvalidColor},
		{"unknown base", "[node_colors]\nT = \"red\"", rnaerrors.ErrCodeInvalidConfig},
		{"zero width", "[backbone_style]\nwidth = 0.0", rnaerrors.ErrCodeInvalidConfig},
		{"bad viewport", "[viewport]\nwidth = -5", rnaerrors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"", rnaerrors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"", rnaerrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if code := rnaerrors.GetCode(err); code != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", code, tt.code, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("seed = 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.Seed)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !rnaerrors.Is(err, rnaerrors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file: err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if cfg.Seed != layout.DefaultSeed {
		t.Errorf("seed = %d, want default", cfg.Seed)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	want := Default()
	want.LayoutMode = "circular"
	want.NodeColors["C"] = "orange"
	want.Cache.TTL = Duration{2 * time.Hour}

	var buf bytes.Buffer
	if err := want.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(Encode()) = %v\n%s", err, buf.String())
	}
	if got.LayoutMode != "circular" || got.NodeColors["C"] != "orange" || got.Cache.TTL.Duration != 2*time.Hour {
		t.Errorf("round trip lost settings:\n%s", buf.String())
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "config.toml"))
	if err != nil {
		t.Fatalf("examples/config.toml: %v", err)
	}
	if cfg.MaxIterations != 300 || cfg.Viewport.Width != 1024 || cfg.Server.MaxSequenceLen != 2000 {
		t.Errorf("example settings not applied: %+v", cfg)
	}
	if cfg.Cache.TTL.Duration != 72*time.Hour || cfg.Server.RequestTimeout.Duration != 20*time.Second {
		t.Errorf("durations = %v / %v", cfg.Cache.TTL, cfg.Server.RequestTimeout)
	}
}
