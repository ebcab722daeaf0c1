package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flavioheleno/ledmatrix"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Display.Width != DefaultWidth || cfg.Display.RefreshRate != DefaultRefreshRate {
		t.Fatalf("Display = %+v", cfg.Display)
	}
	if len(cfg.Scrollers) != 1 || cfg.Scrollers[0].Text != DefaultText {
		t.Fatalf("Scrollers = %+v", cfg.Scrollers)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
display:
  width: 64
  height: 32
  rotation: 180
scrollers:
  - text: "hello"
    mode: wrap-forward
    speed: 60
    color: "#ff8000"
    bounds: [0, 0, 63, 15]
  - ring_capacity: 128
    delimiter: "|"
    font: 7x13
    loops: 2
feed:
  listen: ""
  scroller: 1
`)
	l := NewLoader()
	l.SetConfigFile(path)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if l.ConfigFileUsed() != path {
		t.Errorf("ConfigFileUsed() = %q, want %q", l.ConfigFileUsed(), path)
	}
	if cfg.Display.Width != 64 || cfg.Display.Height != 32 || cfg.Display.Rotation != 180 {
		t.Fatalf("Display = %+v", cfg.Display)
	}
	if cfg.Display.RefreshRate != DefaultRefreshRate {
		t.Errorf("RefreshRate = %d, want default", cfg.Display.RefreshRate)
	}
	if len(cfg.Scrollers) != 2 {
		t.Fatalf("len(Scrollers) = %d, want 2", len(cfg.Scrollers))
	}

	s0 := cfg.Scrollers[0]
	if s0.Mode != "wrap-forward" || s0.Speed != 60 || s0.Color != "#ff8000" {
		t.Errorf("Scrollers[0] = %+v", s0)
	}
	if len(s0.Bounds) != 4 || s0.Bounds[2] != 63 {
		t.Errorf("Scrollers[0].Bounds = %v", s0.Bounds)
	}
	if s0.Loops != ledmatrix.Forever || s0.Font != DefaultFont {
		t.Errorf("Scrollers[0] defaults not filled: %+v", s0)
	}

	s1 := cfg.Scrollers[1]
	if s1.RingCapacity != 128 || s1.Delimiter != "|" || s1.Font != "7x13" || s1.Loops != 2 {
		t.Errorf("Scrollers[1] = %+v", s1)
	}
	if s1.Mode != DefaultMode || s1.Speed != DefaultSpeed {
		t.Errorf("Scrollers[1] defaults not filled: %+v", s1)
	}
	if cfg.Feed.Listen != "" || cfg.Feed.Scroller != 1 {
		t.Errorf("Feed = %+v", cfg.Feed)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("LEDMATRIX_DISPLAY_WIDTH", "96")
	t.Setenv("LEDMATRIX_PANEL_LATCH", "GPIO24")

	cfg, err := NewLoader().Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Display.Width != 96 {
		t.Errorf("Width = %d, want 96", cfg.Display.Width)
	}
	if cfg.Panel.Latch != "GPIO24" {
		t.Errorf("Latch = %q, want GPIO24", cfg.Panel.Latch)
	}
}

func TestLoadFromConfigDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	if err := os.MkdirAll(DefaultConfigDir(), 0o700); err != nil {
		t.Fatal(err)
	}
	body := []byte("display:\n  width: 48\n")
	if err := os.WriteFile(DefaultConfigPath(), body, 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLoader()
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Display.Width != 48 {
		t.Errorf("Width = %d, want 48", cfg.Display.Width)
	}
	if got := l.ConfigFileUsed(); got != DefaultConfigPath() {
		t.Errorf("ConfigFileUsed() = %q, want %q", got, DefaultConfigPath())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "display:\n  rotation: 45\n")
	l := NewLoader()
	l.SetConfigFile(path)
	if _, err := l.Load(); err == nil || !strings.Contains(err.Error(), "rotation") {
		t.Fatalf("Load() = %v, want rotation error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"zero width", func(c *Config) { c.Display.Width = 0 }, "display size"},
		{"bad background", func(c *Config) { c.Display.Background = "nope" }, "background"},
		{"no scrollers", func(c *Config) { c.Scrollers = nil }, "scrollers"},
		{"bad mode", func(c *Config) { c.Scrollers[0].Mode = "sideways" }, "scrollers[0]"},
		{"zero speed", func(c *Config) { c.Scrollers[0].Speed = 0 }, "speed"},
		{"unknown font", func(c *Config) { c.Scrollers[0].Font = "3x3" }, "scrollers[0]"},
		{"bad color", func(c *Config) { c.Scrollers[0].Color = "#12" }, "scrollers[0]"},
		{"short bounds", func(c *Config) { c.Scrollers[0].Bounds = []int{1, 2} }, "bounds"},
		{"negative ring", func(c *Config) { c.Scrollers[0].RingCapacity = -1 }, "ring_capacity"},
		{"long delimiter", func(c *Config) { c.Scrollers[0].Delimiter = "ab" }, "delimiter"},
		{"brightness", func(c *Config) { c.Panel.Brightness = 300 }, "brightness"},
		{"feed scroller", func(c *Config) { c.Feed.Scroller = 1 }, "feed.scroller"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}
