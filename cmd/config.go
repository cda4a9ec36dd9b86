package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/idler/cli"
	"github.com/grovetools/idler/pkg/paths"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Shows the configuration idler runs with after defaults are applied,
and the file it was read from:
1. --config, when given
2. idler.yml or idler.toml in the config directory
Without a file only the defaults apply. This is useful for debugging
configuration issues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := cli.InitConfig(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				return err
			}
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if source == "" {
				fmt.Fprintf(out, "# Source: defaults (no config file in %s)\n", paths.ConfigDir())
			} else {
				fmt.Fprintf(out, "# Source: %s\n", source)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
	return cmd
}
