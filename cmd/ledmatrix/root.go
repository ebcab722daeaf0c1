package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flavioheleno/ledmatrix/internal/config"
)

// NewRootCommand builds the root CLI command.
func NewRootCommand(loader *config.Loader) *cobra.Command {
	var configFile string
	var bindErr error

	cmd := &cobra.Command{
		Use:           "ledmatrix",
		Short:         "Scrolling text and foreground graphics for RGB LED matrices",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if bindErr != nil {
				return bindErr
			}
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	flags := cmd.PersistentFlags()
	flags.Int("width", config.DefaultWidth, "panel width in pixels")
	flags.Int("height", config.DefaultHeight, "panel height in pixels")
	flags.Int("rotation", 0, "rotation in degrees: 0, 90, 180 or 270")
	flags.Int("refresh-rate", config.DefaultRefreshRate, "frames per second")
	flags.String("background", config.DefaultBackground, "background color")
	flags.String("listen", config.DefaultListenAddr, "websocket feed address, empty to disable")
	flags.Bool("stdin", false, "feed lines read from stdin")
	flags.Int("feed-scroller", 0, "scroller receiving feed lines")

	v := loader.Viper()
	bind := func(key, name string) {
		if bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			bindErr = err
		}
	}

	bind("display.width", "width")
	bind("display.height", "height")
	bind("display.rotation", "rotation")
	bind("display.refresh_rate", "refresh-rate")
	bind("display.background", "background")
	bind("feed.listen", "listen")
	bind("feed.stdin", "stdin")
	bind("feed.scroller", "feed-scroller")

	cmd.AddCommand(NewRunCommand(loader))
	cmd.AddCommand(NewSimCommand(loader))
	cmd.AddCommand(NewSPICommand(loader))
	cmd.AddCommand(NewConfigCommand(loader))

	return cmd
}

// loadConfig loads the configuration. Positional arguments replace the text
// of the first scroller.
func loadConfig(loader *config.Loader, args []string) (config.Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, err
	}
	if len(args) > 0 {
		cfg.Scrollers[0].Text = strings.Join(args, " ")
	}
	return cfg, nil
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
