package main

import (
	"os"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/flavioheleno/ledmatrix/internal/app"
	"github.com/flavioheleno/ledmatrix/internal/config"
	"github.com/flavioheleno/ledmatrix/scanout"
)

// NewRunCommand builds the terminal preview command.
func NewRunCommand(loader *config.Loader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run [text...]",
		Short: "Preview the matrix in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(loader, args)
			if err != nil {
				return err
			}
			w, h := cfg.Display.Width, cfg.Display.Height
			if !force {
				if err := scanout.CheckTerminal(os.Stdout, w, h); err != nil {
					return err
				}
			}
			term, err := scanout.NewTerminal(os.Stdout, w, h)
			if err != nil {
				return err
			}

			logger := pslog.Ctx(cmd.Context()).With("component", "run")
			a, err := app.New(cfg, term, logger)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return a.Run(ctx, os.Stdin)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "draw even when stdout is not a large enough terminal")
	return cmd
}
