package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/orchestrator"
)

func NewIdleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idle",
		Short: "Start, stop and list idling games",
	}
	cmd.AddCommand(newIdleStartCmd())
	cmd.AddCommand(newIdleStopCmd())
	cmd.AddCommand(newIdleListCmd())
	return cmd
}

// resultRow is the JSON shape of one orchestrator result.
type resultRow struct {
	AppID   int    `json:"appId"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// reportResults prints one line per result and returns the first failure.
func (a *app) reportResults(cmd *cobra.Command, ids []int, results []orchestrator.Result, verb string) error {
	var first error
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = resultRow{AppID: ids[i], Outcome: r.Outcome.String()}
		if r.Err != nil {
			rows[i].Error = r.Err.Error()
			if first == nil {
				first = r.Err
			}
		}
	}

	if a.json {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return first
	}

	for i, r := range results {
		if r.OK() {
			a.pretty.Success(fmt.Sprintf("%s %d", verb, ids[i]))
		} else {
			a.pretty.ErrorPretty(fmt.Sprintf("%d %s", ids[i], r.Outcome), r.Err)
		}
	}
	return first
}

func newIdleStartCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "start <appId>...",
		Short: "Start idling one or more games",
		Long: `Start idling one or more games.

Steam must be running; otherwise nothing is started. Each game runs in its own
detached helper process.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseAppIDs(args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			games := make([]orchestrator.Game, len(ids))
			for i, id := range ids {
				games[i] = orchestrator.Game{AppID: id, Name: a.cachedName(id)}
			}

			results := a.orch.StartIdleMany(cmd.Context(), games, quiet)
			return a.reportResults(cmd, ids, results, "Idling")
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Start the helper without its window")
	return cmd
}

func newIdleStopCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "stop [appId...]",
		Short: "Stop idling games",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var ids []int
			if all {
				running, err := a.helper.Idling()
				if err != nil {
					return err
				}
				args = running
			}
			ids, err = parseAppIDs(args)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				a.pretty.InfoPretty("Nothing to stop")
				return nil
			}

			results := make([]orchestrator.Result, len(ids))
			for i, id := range ids {
				results[i] = a.orch.StopIdle(cmd.Context(), id)
			}
			return a.reportResults(cmd, ids, results, "Stopped")
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Stop every running idle process")
	return cmd
}

func newIdleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the games being idled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			running, err := a.helper.Idling()
			if err != nil {
				return err
			}

			if a.json {
				if running == nil {
					running = []string{}
				}
				data, err := json.Marshal(running)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if len(running) == 0 {
				a.pretty.InfoPretty("No games are idling")
				return nil
			}
			for _, id := range running {
				a.pretty.Field("idling", id)
			}
			return nil
		},
	}
}
