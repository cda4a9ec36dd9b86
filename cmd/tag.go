package cmd

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/pkg/library"
)

func categoryNames() string {
	names := make([]string, len(library.Categories))
	for i, c := range library.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "|")
}

func NewTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <" + categoryNames() + "> <appId>",
		Short: "Toggle a game in a tag set",
		Long: `Toggle a game in a tag set.

Tagging appends a snapshot of the game to the end of the set; tagging it
again removes it. The snapshot is taken from the session inventory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := library.ParseCategory(args[0])
			if err != nil {
				return err
			}
			appID, err := parseAppID(args[1])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			item, err := a.findItem(cmd.Context(), appID)
			if err != nil {
				return err
			}
			tagged, err := a.tags.Toggle(category, item)
			if err != nil {
				return err
			}

			if a.json {
				data, err := json.Marshal(map[string]interface{}{
					"category": category,
					"appId":    appID,
					"tagged":   tagged,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if tagged {
				a.pretty.Success(fmt.Sprintf("Added %s to %s", item.Name, category))
			} else {
				a.pretty.Success(fmt.Sprintf("Removed %s from %s", item.Name, category))
			}
			return nil
		},
	}
	return cmd
}

func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags <" + categoryNames() + ">",
		Short: "List a tag set in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := library.ParseCategory(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			items, err := a.tags.List(category)
			if err != nil {
				return err
			}

			if a.json {
				if items == nil {
					items = []library.Item{}
				}
				data, err := json.MarshalIndent(items, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if len(items) == 0 {
				a.pretty.InfoPretty(fmt.Sprintf("No games tagged %s", category))
				return nil
			}
			for _, it := range items {
				a.pretty.GameRow(it.AppID, it.Name, it.Hours(), nil)
			}
			return nil
		},
	}
	return cmd
}
