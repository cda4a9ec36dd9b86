package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/paths"
)

// PathsOutput represents the XDG-compliant paths used by idler.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	StateDir   string `json:"state_dir"`
	StateFile  string `json:"state_file"`
	CacheDir   string `json:"cache_dir"`
	SessionDir string `json:"session_dir"`
	LogDir     string `json:"log_dir"`
	IdleDir    string `json:"idle_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by idler",
		Long: `Print the XDG-compliant paths used by idler.

This command outputs the paths in JSON format, making it easy to parse from
scripts. IDLER_HOME relocates all of them under one directory.

- config_dir: idler.yml / idler.toml
- state_file: preferences, tag sets and cookies
- session_dir: per-session inventory snapshots (under cache_dir)
- log_dir: the idle and achievement event log
- idle_dir: PID files of running idle processes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				StateDir:   paths.StateDir(),
				StateFile:  paths.StateFilePath(),
				CacheDir:   paths.CacheDir(),
				SessionDir: paths.SessionDir(),
				LogDir:     paths.LogDir(),
				IdleDir:    paths.IdleDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
