package cmd

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/state"
)

func NewPrefsCmd() *cobra.Command {
	var (
		sortName    string
		toggleStats bool
		cookies     string
	)

	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change saved preferences",
		Long: `Show or change saved preferences.

--sort saves the preferred sort style, --toggle-stats flips the library
totals shown by 'idler list', and --cookies saves the Steam session cookies
("sid=...; sls=..." or {"sid":..,"sls":..}) used by 'idler drops'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if sortName != "" {
				style, err := library.ParseSortStyle(sortName)
				if err != nil {
					return err
				}
				if err := a.cache.SetSortStyle(style); err != nil {
					return err
				}
			}
			if toggleStats {
				if _, err := a.cache.ToggleShowStats(); err != nil {
					return err
				}
			}
			if cookies != "" {
				if err := a.state.Set(state.KeySteamCookies, cookies); err != nil {
					return err
				}
			}

			prefs := a.cache.Preferences()
			hasCookies := !a.credentials().Empty()

			if a.json {
				data, err := json.MarshalIndent(map[string]interface{}{
					"sortStyle":  prefs.SortStyle,
					"showStats":  prefs.ShowStats,
					"hasCookies": hasCookies,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			sortStyle := prefs.SortStyle
			if sortStyle == "" {
				sortStyle = a.cfg.Library.DefaultSort + " (default)"
			}
			a.pretty.Field("sort", sortStyle)
			a.pretty.Field("show stats", prefs.ShowStats)
			a.pretty.Field("cookies saved", hasCookies)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", "", "Save the preferred sort style")
	cmd.Flags().BoolVar(&toggleStats, "toggle-stats", false, "Toggle library totals in 'idler list'")
	cmd.Flags().StringVar(&cookies, "cookies", "", "Save the Steam session cookies")
	return cmd
}
