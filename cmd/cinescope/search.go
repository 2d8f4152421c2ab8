package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("search query must not be empty")
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}

			catalog, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			results, err := catalog.Search(cmd.Context(), query, page)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}

			list := ctx.renderer().SearchResults(query, results, ctx.localFavorites(cmd))
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, list)
			}
			if len(list.Cards) == 0 {
				printf(cmd, "No movies match %q.\n", query)
				return nil
			}
			printf(cmd, "%s\npage %d of %d\n", renderCards(list.Cards, 0), list.Page, list.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page")
	return cmd
}
