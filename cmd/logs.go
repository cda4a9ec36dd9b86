package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/eventlog"
)

func NewLogsCmd() *cobra.Command {
	var (
		follow bool
		tail   int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the idle and achievement event log",
		Long: `Show the idle and achievement event log.

Entries mentioning an error are highlighted. With --follow new entries are
printed as they are written until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			dir, err := a.helper.AppLogDir(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !follow {
				entries, err := eventlog.Read(dir)
				if err != nil {
					return err
				}
				if tail > 0 && len(entries) > tail {
					entries = entries[len(entries)-tail:]
				}
				for _, e := range entries {
					if err := a.printEntry(out, e); err != nil {
						return err
					}
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			entries, err := eventlog.Follow(ctx, dir, tail == 0)
			if err != nil {
				return err
			}
			for e := range entries {
				if err := a.printEntry(out, e); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	cmd.Flags().IntVarP(&tail, "tail", "n", 0, "Show only the last N entries (with --follow, start at the end)")
	return cmd
}

func (a *app) printEntry(w io.Writer, e eventlog.Entry) error {
	if a.json {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	a.pretty.LogLine(e.Timestamp, e.Message, e.IsError())
	return nil
}
