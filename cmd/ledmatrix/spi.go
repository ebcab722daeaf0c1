package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"pkt.systems/pslog"

	"github.com/flavioheleno/ledmatrix/internal/app"
	"github.com/flavioheleno/ledmatrix/internal/config"
	"github.com/flavioheleno/ledmatrix/panel"
)

// NewSPICommand builds the command driving a real panel over SPI.
func NewSPICommand(loader *config.Loader) *cobra.Command {
	v := loader.Viper()
	var bindErr error

	cmd := &cobra.Command{
		Use:   "spi [text...]",
		Short: "Drive an SPI-attached matrix panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bindErr != nil {
				return bindErr
			}
			cfg, err := loadConfig(loader, args)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(cmd.Context()).With("component", "spi")

			if _, err := host.Init(); err != nil {
				return fmt.Errorf("initialize periph.io: %w", err)
			}
			port, err := spireg.Open(cfg.Panel.SPI)
			if err != nil {
				return fmt.Errorf("open SPI bus: %w", err)
			}
			defer port.Close()

			latch := gpioreg.ByName(cfg.Panel.Latch)
			if latch == nil {
				return fmt.Errorf("GPIO pin %s not found", cfg.Panel.Latch)
			}
			var rst gpio.PinIO
			if cfg.Panel.Reset != "" {
				if rst = gpioreg.ByName(cfg.Panel.Reset); rst == nil {
					return fmt.Errorf("GPIO pin %s not found", cfg.Panel.Reset)
				}
			}

			dev, err := panel.NewSPI(port, latch, &panel.Opts{
				W:          cfg.Display.Width,
				H:          cfg.Display.Height,
				Brightness: byte(cfg.Panel.Brightness),
				Hz:         physic.Frequency(cfg.Panel.Hz) * physic.Hertz,
				RST:        rst,
			})
			if err != nil {
				return err
			}
			logger.Info("panel initialized", "panel", dev.String(), "bus", port.String())

			a, err := app.New(cfg, dev, logger)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return a.Run(ctx, os.Stdin)
		},
	}

	flags := cmd.Flags()
	flags.String("bus", config.DefaultSPIBus, "SPI bus name (empty for default)")
	flags.String("latch", config.DefaultLatchPin, "command/data latch pin name")
	flags.String("reset", "", "reset pin name (optional)")
	flags.Int64("hz", config.DefaultSPIHz, "SPI frequency in Hz")
	flags.Int("brightness", config.DefaultBrightness, "panel brightness 0-255")

	bind := func(key, name string) {
		if bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			bindErr = err
		}
	}
	bind("panel.spi", "bus")
	bind("panel.latch", "latch")
	bind("panel.reset", "reset")
	bind("panel.hz", "hz")
	bind("panel.brightness", "brightness")

	return cmd
}
