package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/inventory"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/pkg/profiling"
	"github.com/grovetools/idler/pkg/tags"
)

// listRow is the JSON shape of one listed game.
type listRow struct {
	AppID int      `json:"appId"`
	Name  string   `json:"name"`
	Hours int      `json:"hours"`
	Tags  []string `json:"tags,omitempty"`
}

type listOutput struct {
	Sort       string    `json:"sort"`
	Filter     string    `json:"filter,omitempty"`
	Cursor     int       `json:"cursor"`
	Total      int       `json:"total"`
	Exhausted  bool      `json:"exhausted"`
	Games      []listRow `json:"games"`
	TotalHours *int      `json:"totalHours,omitempty"`
}

func NewListCmd() *cobra.Command {
	var (
		sortName string
		filter   string
		pages    int
		refresh  bool
		watch    bool
		saveSort bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the game library",
		Long: `List the owned games, sorted, filtered and paged.

Sort styles: ` + strings.Join(library.StyleNames(), ", ") + `.
The tag-backed styles (favorite, cardFarming, achievementUnlocker) list the
tagged games in the order they were tagged instead of the library.

The inventory is fetched once per session and reused until --refresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			style, err := resolveSortStyle(a, sortName)
			if err != nil {
				return err
			}
			if saveSort {
				if err := a.cache.SetSortStyle(style); err != nil {
					return err
				}
			}

			items, source, err := a.inventory(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			a.logger.WithField("source", source).Debug("Inventory loaded")
			if source == inventory.SourceNone && !a.json {
				a.pretty.WarnPretty("Library unavailable; the profile may be private or the endpoint unreachable")
			}

			sets, err := a.tags.Sets()
			if err != nil {
				return err
			}

			stopDerive := profiling.Stage("derive")
			view := library.NewView(style, a.cfg.Library.PageSize, a.cfg.Library.Threshold)
			view.SetInventory(items)
			view.SetTags(sets)
			view.SetFilter(filter)
			for i := 1; i < pages && view.Advance(); i++ {
			}
			stopDerive()

			out := cmd.OutOrStdout()
			if err := a.printView(out, view, sets); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watchTags(ctx, out, view)
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", "", "Sort style (default: saved preference, then library.default_sort)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Case-insensitive name filter")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to show")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refetch the inventory instead of using the session snapshot")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reprint when tags change")
	cmd.Flags().BoolVar(&saveSort, "save-sort", false, "Remember --sort as the preferred sort style")

	return cmd
}

// resolveSortStyle picks the flag, then the saved preference, then the
// configured default.
func resolveSortStyle(a *app, name string) (library.SortStyle, error) {
	if name != "" {
		return library.ParseSortStyle(name)
	}
	fallback, err := library.ParseSortStyle(a.cfg.Library.DefaultSort)
	if err != nil {
		fallback = library.AlphaAsc
	}
	return a.cache.SortStyle(fallback), nil
}

func (a *app) printView(w io.Writer, view *library.View, sets library.TagSets) error {
	st := view.State()
	visible := view.Visible()
	showStats := a.cache.Preferences().ShowStats

	totalHours := 0
	for _, it := range view.Candidates() {
		totalHours += it.Hours()
	}

	if a.json {
		out := listOutput{
			Sort:      fmt.Sprint(st.SortStyle),
			Filter:    st.FilterQuery,
			Cursor:    st.PageCursor,
			Total:     len(view.Candidates()),
			Exhausted: view.Exhausted(),
			Games:     make([]listRow, 0, len(visible)),
		}
		for _, it := range visible {
			out.Games = append(out.Games, listRow{
				AppID: it.AppID,
				Name:  it.Name,
				Hours: it.Hours(),
				Tags:  tags.CategoriesOf(sets, it.AppID),
			})
		}
		if showStats {
			out.TotalHours = &totalHours
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal library to JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(visible) == 0 {
		a.pretty.InfoPretty("No games found")
		return nil
	}
	for _, it := range visible {
		a.pretty.GameRow(it.AppID, it.Name, it.Hours(), tags.CategoriesOf(sets, it.AppID))
	}
	if !view.Exhausted() {
		a.pretty.InfoPretty(fmt.Sprintf("… %d more (use --pages %d)", len(view.Candidates())-len(visible), st.PageCursor+1))
	}
	if showStats {
		a.pretty.Divider()
		a.pretty.Field("Games", len(view.Candidates()))
		a.pretty.Field("Hours", totalHours)
	}
	return nil
}

// watchTags re-derives and reprints the view whenever a tag set changes.
func (a *app) watchTags(ctx context.Context, w io.Writer, view *library.View) error {
	changes, err := a.tags.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			sets, err := a.tags.Sets()
			if err != nil {
				a.logger.WithError(err).Warn("Failed to reload tags")
				continue
			}
			view.SetTags(sets)
			a.pretty.Blank()
			if err := a.printView(w, view, sets); err != nil {
				return err
			}
		}
	}
}
