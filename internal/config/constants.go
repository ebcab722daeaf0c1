package config

const (
	// DefaultConfigDirName is the directory name under the user config directory.
	DefaultConfigDirName = "ledmatrix"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"

	// DefaultWidth is the default panel width in pixels.
	DefaultWidth = 32
	// DefaultHeight is the default panel height in pixels.
	DefaultHeight = 16
	// DefaultRefreshRate is the default frame rate of the scan-out loop.
	DefaultRefreshRate = 120
	// DefaultBackground is the default background color.
	DefaultBackground = "#000000"

	// DefaultText is the text of the default scroller.
	DefaultText = "ledmatrix"
	// DefaultMode is the default scroll mode.
	DefaultMode = "bounceForward"
	// DefaultSpeed is the default scroll speed in pixels per second.
	DefaultSpeed = 30
	// DefaultFont is the default font name.
	DefaultFont = "5x7"
	// DefaultColor is the default text color.
	DefaultColor = "#ffffff"

	// DefaultSPIBus is the default SPI bus name, empty for the first one.
	DefaultSPIBus = ""
	// DefaultLatchPin is the default command/data select pin.
	DefaultLatchPin = "GPIO25"
	// DefaultSPIHz is the default SPI clock in Hz.
	DefaultSPIHz = 10000000
	// DefaultBrightness is the default panel brightness.
	DefaultBrightness = 255

	// DefaultListenAddr is the default websocket feed listen address.
	DefaultListenAddr = "127.0.0.1:8377"
	// DefaultFeedPath is the HTTP path of the websocket feed.
	DefaultFeedPath = "/feed"

	// DefaultSimScale is the default window pixels per LED in the simulator.
	DefaultSimScale = 16
)
