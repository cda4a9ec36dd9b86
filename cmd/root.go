package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/cli"
	"github.com/grovetools/idler/pkg/profiling"
)

// NewRootCmd assembles the idler command tree.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"idler",
		"Manage a Steam game library: tags, idling, achievements and card drops",
	)
	AddAppFlags(root)
	profiling.Register(root)

	root.AddCommand(NewListCmd())
	root.AddCommand(NewTagCmd())
	root.AddCommand(NewTagsCmd())
	root.AddCommand(NewIdleCmd())
	root.AddCommand(NewUnlockCmd())
	root.AddCommand(NewDropsCmd())
	root.AddCommand(NewLogsCmd())
	root.AddCommand(NewPrefsCmd())
	root.AddCommand(NewLogoutCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewPathsCmd())
	root.AddCommand(cli.NewVersionCommand())

	return root
}
