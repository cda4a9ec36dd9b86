package cmd

import (
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/orchestrator"
)

func NewUnlockCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "unlock <appId> <achievementId>",
		Short: "Unlock an achievement",
		Long: `Unlock one achievement of a game, or every achievement with --all.

Steam must be running. The helper runs to completion and its exit status is
reported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, err := parseAppID(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			res := a.orch.UnlockAchievement(cmd.Context(), appID, args[1], all)
			return a.reportResults(cmd, []int{appID}, []orchestrator.Result{res}, "Unlocked "+args[1]+" for")
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Unlock every achievement of the game")
	return cmd
}
