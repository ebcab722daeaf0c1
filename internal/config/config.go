package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/flavioheleno/ledmatrix"
	"github.com/flavioheleno/ledmatrix/bitfont"
	"github.com/flavioheleno/ledmatrix/rgb24"
)

// Config is the root configuration for ledmatrix.
type Config struct {
	Display   DisplayConfig    `mapstructure:"display" yaml:"display"`
	Scrollers []ScrollerConfig `mapstructure:"scrollers" yaml:"scrollers"`
	Panel     PanelConfig      `mapstructure:"panel" yaml:"panel"`
	Feed      FeedConfig       `mapstructure:"feed" yaml:"feed"`
	Sim       SimConfig        `mapstructure:"sim" yaml:"sim"`
}

// DisplayConfig describes the panel geometry and frame rate.
type DisplayConfig struct {
	Width       int    `mapstructure:"width" yaml:"width"`
	Height      int    `mapstructure:"height" yaml:"height"`
	Rotation    int    `mapstructure:"rotation" yaml:"rotation"`
	RefreshRate int    `mapstructure:"refresh_rate" yaml:"refresh_rate"`
	Background  string `mapstructure:"background" yaml:"background"`
}

// ScrollerConfig configures one text scroller. Loops of 0 scrolls forever.
// A non-zero RingCapacity puts the scroller in streaming mode.
type ScrollerConfig struct {
	Text         string `mapstructure:"text" yaml:"text"`
	Mode         string `mapstructure:"mode" yaml:"mode"`
	Speed        int    `mapstructure:"speed" yaml:"speed"`
	Font         string `mapstructure:"font" yaml:"font"`
	Color        string `mapstructure:"color" yaml:"color"`
	Loops        int    `mapstructure:"loops" yaml:"loops"`
	Top          int    `mapstructure:"top" yaml:"top"`
	Left         int    `mapstructure:"left" yaml:"left"`
	Bounds       []int  `mapstructure:"bounds" yaml:"bounds,omitempty"`
	RingCapacity int    `mapstructure:"ring_capacity" yaml:"ring_capacity,omitempty"`
	Delimiter    string `mapstructure:"delimiter" yaml:"delimiter,omitempty"`
}

// PanelConfig configures the SPI panel.
type PanelConfig struct {
	SPI        string `mapstructure:"spi" yaml:"spi"`
	Latch      string `mapstructure:"latch" yaml:"latch"`
	Reset      string `mapstructure:"reset" yaml:"reset"`
	Hz         int64  `mapstructure:"hz" yaml:"hz"`
	Brightness int    `mapstructure:"brightness" yaml:"brightness"`
}

// FeedConfig configures the text feeds. An empty Listen disables the
// websocket feed.
type FeedConfig struct {
	Listen         string   `mapstructure:"listen" yaml:"listen"`
	Path           string   `mapstructure:"path" yaml:"path"`
	Stdin          bool     `mapstructure:"stdin" yaml:"stdin"`
	Scroller       int      `mapstructure:"scroller" yaml:"scroller"`
	OriginPatterns []string `mapstructure:"origin_patterns" yaml:"origin_patterns,omitempty"`
}

// SimConfig configures the desktop simulator.
type SimConfig struct {
	Scale int `mapstructure:"scale" yaml:"scale"`
}

// Validate checks the values that cannot be fixed up with defaults.
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("config: invalid display size %dx%d", c.Display.Width, c.Display.Height)
	}
	if _, err := ledmatrix.RotationFromDegrees(c.Display.Rotation); err != nil {
		return fmt.Errorf("config: display.rotation: %w", err)
	}
	if c.Display.Background != "" {
		if _, err := rgb24.Parse(c.Display.Background); err != nil {
			return fmt.Errorf("config: display.background: %w", err)
		}
	}
	if n := len(c.Scrollers); n == 0 || n > ledmatrix.MaxScrollers {
		return fmt.Errorf("config: need between 1 and %d scrollers, got %d", ledmatrix.MaxScrollers, n)
	}
	for i := range c.Scrollers {
		if err := c.Scrollers[i].validate(); err != nil {
			return fmt.Errorf("config: scrollers[%d]: %w", i, err)
		}
	}
	if c.Panel.Brightness < 0 || c.Panel.Brightness > 255 {
		return fmt.Errorf("config: panel.brightness %d out of range", c.Panel.Brightness)
	}
	if c.Feed.Scroller < 0 || c.Feed.Scroller >= len(c.Scrollers) {
		return fmt.Errorf("config: feed.scroller %d out of range", c.Feed.Scroller)
	}
	return nil
}

func (s *ScrollerConfig) validate() error {
	if _, err := ledmatrix.ParseScrollMode(s.Mode); err != nil {
		return err
	}
	if s.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %d", s.Speed)
	}
	if _, err := bitfont.Lookup(s.Font); err != nil {
		return err
	}
	if _, err := rgb24.Parse(s.Color); err != nil {
		return err
	}
	if len(s.Bounds) != 0 && len(s.Bounds) != 4 {
		return errors.New("bounds must hold x0, y0, x1, y1")
	}
	if s.RingCapacity < 0 {
		return errors.New("ring_capacity must not be negative")
	}
	if len(s.Delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single byte, got %q", s.Delimiter)
	}
	return nil
}

// fill replaces unset scroller fields with the defaults.
func (s *ScrollerConfig) fill() {
	d := DefaultScroller()
	if s.Mode == "" {
		s.Mode = d.Mode
	}
	if s.Speed == 0 {
		s.Speed = d.Speed
	}
	if s.Font == "" {
		s.Font = d.Font
	}
	if s.Color == "" {
		s.Color = d.Color
	}
	if s.Loops == 0 {
		s.Loops = ledmatrix.Forever
	}
}

// Loader wraps Viper configuration loading for ledmatrix.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with standard defaults.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("LEDMATRIX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(strings.TrimSuffix(DefaultConfigFileName, filepath.Ext(DefaultConfigFileName)))
	v.AddConfigPath(".")
	v.AddConfigPath(DefaultConfigDir())
	setDefaults(v)

	return &Loader{v: v}
}

// Viper exposes the underlying Viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ConfigFileUsed returns the file the configuration was read from, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration, unmarshals it into a Config struct, fills in
// scroller defaults and validates the result.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.Scrollers) == 0 {
		cfg.Scrollers = DefaultConfig().Scrollers
	}
	for i := range cfg.Scrollers {
		cfg.Scrollers[i].fill()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
