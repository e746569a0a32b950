package cmd

import (
	"strings"

	"github.com/lehigh-university-libraries/bggsearch/internal/output"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var format string
	var query string
	var isolate bool

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search BoardGameGeek and print launcher result items",
		Long: `Searches the BoardGameGeek catalog for up to 7 games, resolves a cached
icon for each, and prints the result items followed by a "Search on bgg"
item that opens the website search.

When stdout is not a terminal the items are written as a script filter
JSON document ({"items": [...]}).`,
		Example: `  # Script filter usage
  bggsearch search "{query}"

  # Human readable table
  bggsearch search gloomhaven --format table`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("query") {
				query = strings.Join(args, " ")
			}

			resolved, err := output.ResolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("isolate-icon-errors") {
				a.cfg.Search.IsolateIconErrors = isolate
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := a.newAssembler(store).Assemble(cmd.Context(), query)
			if err != nil {
				return err
			}

			return output.WriteItems(cmd.OutOrStdout(), resolved, items)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", output.FormatAuto, "Output format: auto, json, yaml or table")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query (overrides positional arguments)")
	cmd.Flags().BoolVar(&isolate, "isolate-icon-errors", false, "Show games without an icon when their icon cannot be fetched")

	return cmd
}
