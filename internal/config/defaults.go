package config

import "github.com/flavioheleno/ledmatrix"

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			RefreshRate: DefaultRefreshRate,
			Background:  DefaultBackground,
		},
		Scrollers: []ScrollerConfig{DefaultScroller()},
		Panel: PanelConfig{
			SPI:        DefaultSPIBus,
			Latch:      DefaultLatchPin,
			Hz:         DefaultSPIHz,
			Brightness: DefaultBrightness,
		},
		Feed: FeedConfig{
			Listen: DefaultListenAddr,
			Path:   DefaultFeedPath,
		},
		Sim: SimConfig{
			Scale: DefaultSimScale,
		},
	}
}

// DefaultScroller returns the settings of a scroller nobody configured.
func DefaultScroller() ScrollerConfig {
	return ScrollerConfig{
		Text:  DefaultText,
		Mode:  DefaultMode,
		Speed: DefaultSpeed,
		Font:  DefaultFont,
		Color: DefaultColor,
		Loops: ledmatrix.Forever,
		Top:   ledmatrix.DefaultTopOffset,
		Left:  ledmatrix.DefaultLeftOffset,
	}
}

// setDefaults registers the scalar defaults with v so environment variables
// can override them.
func setDefaults(v interface{ SetDefault(string, any) }) {
	d := DefaultConfig()
	v.SetDefault("display.width", d.Display.Width)
	v.SetDefault("display.height", d.Display.Height)
	v.SetDefault("display.rotation", d.Display.Rotation)
	v.SetDefault("display.refresh_rate", d.Display.RefreshRate)
	v.SetDefault("display.background", d.Display.Background)
	v.SetDefault("panel.spi", d.Panel.SPI)
	v.SetDefault("panel.latch", d.Panel.Latch)
	v.SetDefault("panel.reset", d.Panel.Reset)
	v.SetDefault("panel.hz", d.Panel.Hz)
	v.SetDefault("panel.brightness", d.Panel.Brightness)
	v.SetDefault("feed.listen", d.Feed.Listen)
	v.SetDefault("feed.path", d.Feed.Path)
	v.SetDefault("feed.stdin", d.Feed.Stdin)
	v.SetDefault("feed.scroller", d.Feed.Scroller)
	v.SetDefault("sim.scale", d.Sim.Scale)
}
