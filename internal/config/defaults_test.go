package config

import (
	"path/filepath"
	"testing"

	"github.com/flavioheleno/ledmatrix"
)

func TestDefaultConfigUsesConstants(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Display.Width != DefaultWidth || cfg.Display.Height != DefaultHeight {
		t.Fatalf("Display = %dx%d, want %dx%d", cfg.Display.Width, cfg.Display.Height, DefaultWidth, DefaultHeight)
	}
	if cfg.Display.RefreshRate != DefaultRefreshRate {
		t.Fatalf("RefreshRate = %d, want %d", cfg.Display.RefreshRate, DefaultRefreshRate)
	}
	if len(cfg.Scrollers) != 1 {
		t.Fatalf("len(Scrollers) = %d, want 1", len(cfg.Scrollers))
	}
	s := cfg.Scrollers[0]
	if s.Mode != DefaultMode || s.Font != DefaultFont || s.Color != DefaultColor {
		t.Fatalf("Scroller = %+v", s)
	}
	if s.Loops != ledmatrix.Forever {
		t.Fatalf("Loops = %d, want Forever", s.Loops)
	}
	if cfg.Panel.Latch != DefaultLatchPin || cfg.Panel.Hz != DefaultSPIHz {
		t.Fatalf("Panel = %+v", cfg.Panel)
	}
	if cfg.Feed.Listen != DefaultListenAddr || cfg.Feed.Path != DefaultFeedPath {
		t.Fatalf("Feed = %+v", cfg.Feed)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	expectedDir := filepath.Join(home, ".config", DefaultConfigDirName)
	if got := DefaultConfigDir(); got != expectedDir {
		t.Fatalf("DefaultConfigDir() = %q, want %q", got, expectedDir)
	}
	expectedConfig := filepath.Join(expectedDir, DefaultConfigFileName)
	if got := DefaultConfigPath(); got != expectedConfig {
		t.Fatalf("DefaultConfigPath() = %q, want %q", got, expectedConfig)
	}
}
