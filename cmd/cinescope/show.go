package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/cinescope/internal/tmdb"
	"github.com/Clark-Hu/cinescope/internal/view"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			catalog, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			detail, err := catalog.FetchMovie(cmd.Context(), id)
			if errors.Is(err, tmdb.ErrNotFound) {
				return fmt.Errorf("movie %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("load movie %d: %w", id, err)
			}

			lookup := ctx.localFavorites(cmd)
			v := ctx.renderer().Detail(detail, lookup != nil && lookup.IsFavorite(id))
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, v)
			}
			printf(cmd, "%s\n", renderDetail(v))
			if v.Overview != "" {
				printf(cmd, "\n%s\n", v.Overview)
			}
			return nil
		},
	}
}

func renderDetail(v view.DetailView) string {
	fav := "no"
	if v.Favorite {
		fav = "yes"
	}
	fields := [][]string{
		{"ID", strconv.Itoa(v.ID)},
		{"Title", v.Title},
		{"Tagline", v.Tagline},
		{"Released", v.ReleaseDate},
		{"Runtime", v.Runtime},
		{"Genres", strings.Join(v.Genres, ", ")},
		{"Rating", v.Rating},
		{"Votes", strconv.Itoa(v.VoteCount)},
		{"Status", v.Status},
		{"Homepage", v.Homepage},
		{"IMDb", v.IMDbURL},
		{"Poster", v.PosterURL},
		{"Favorite", fav},
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f[1] != "" {
			rows = append(rows, f)
		}
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func parseMovieID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return id, nil
}
