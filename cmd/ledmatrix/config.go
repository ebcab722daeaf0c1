package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/flavioheleno/ledmatrix/internal/config"
)

// NewConfigCommand builds the command printing the effective configuration.
func NewConfigCommand(loader *config.Loader) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			if !defaults {
				var err error
				if cfg, err = loader.Load(); err != nil {
					return err
				}
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			if used := loader.ConfigFileUsed(); used != "" && !defaults {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")
	return cmd
}
