package cmd

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/pkg/api"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/pkg/profiling"
)

// dropsConcurrency bounds the per-game drops requests in flight.
const dropsConcurrency = 4

func NewDropsCmd() *cobra.Command {
	var tagged bool

	cmd := &cobra.Command{
		Use:   "drops [appId...]",
		Short: "Show remaining trading card drops",
		Long: `Show remaining trading card drops.

Without arguments every game that still has drops is listed. With app ids,
or --tagged for the cardFarming set, each game is queried on its own.
The session cookies come from 'idler prefs --cookies'.`,
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

			steamID, err := a.steamID()
			if err != nil {
				return err
			}
			creds := a.credentials()
			if creds.Empty() {
				return errors.InvalidInput("steamCookies", "no session cookies saved; run 'idler prefs --cookies'")
			}

			if tagged {
				items, err := a.tags.List(library.CardFarming)
				if err != nil {
					return err
				}
				ids = append(ids, library.IDs(items)...)
			}

			var games []api.DropGame
			if len(ids) == 0 {
				games = a.client.GamesWithDrops(cmd.Context(), steamID, creds)
			} else {
				games, err = a.dropsFor(cmd.Context(), steamID, ids, creds)
				if err != nil {
					return err
				}
			}

			if a.json {
				if games == nil {
					games = []api.DropGame{}
				}
				data, err := json.MarshalIndent(games, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if len(games) == 0 {
				a.pretty.InfoPretty("No card drops remaining")
				return nil
			}
			for _, g := range games {
				name := g.Name
				if name == "" {
					name = fmt.Sprint(g.ID)
				}
				a.pretty.Field(name, fmt.Sprintf("%d drops", g.Remaining))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tagged, "tagged", false, "Query every game in the cardFarming set")
	return cmd
}

// dropsFor queries each id concurrently and returns the results in id order.
func (a *app) dropsFor(ctx context.Context, steamID string, ids []int, creds api.Credentials) ([]api.DropGame, error) {
	items, _, err := a.inventory(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(items))
	for _, it := range items {
		names[it.AppID] = it.Name
	}

	defer profiling.Stage("drops")()

	games := make([]api.DropGame, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dropsConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			games[i] = api.DropGame{
				ID:        id,
				Name:      names[id],
				Remaining: a.client.Drops(ctx, steamID, id, creds),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return games, nil
}
