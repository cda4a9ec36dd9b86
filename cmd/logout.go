package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/session"
)

func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear saved preferences, tags, cookies and the session inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := session.Logout(a.state, a.session); err != nil {
				return err
			}
			a.pretty.Success("Logged out")
			return nil
		},
	}
}
