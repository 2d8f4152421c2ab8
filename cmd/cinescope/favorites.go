package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/favorites"
)

type favoriteChange struct {
	ID       int    `json:"id"`
	Title    string `json:"title,omitempty"`
	Favorite bool   `json:"favorite"`
	Changed  bool   `json:"changed"`
}

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorites stored on this machine",
	}
	cmd.AddCommand(
		newFavoritesListCommand(ctx),
		newFavoritesAddCommand(ctx),
		newFavoritesRemoveCommand(ctx),
		newFavoritesToggleCommand(ctx),
		newFavoritesClearCommand(ctx),
		newFavoritesQuarantineCommand(ctx),
	)
	return cmd
}

func newFavoritesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := ctx.favoritesStore()
			if err != nil {
				return err
			}
			set, err := favs.Load(cmd.Context(), localNamespace)
			if err != nil {
				return favoritesError(err)
			}
			page := ctx.renderer().Favorites(set)
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, page)
			}
			if page.Count == 0 {
				printf(cmd, "No favorites yet.\n")
				return nil
			}
			printf(cmd, "%s (%d)\n%s\n", page.Title, page.Count, renderCards(page.Cards, 0))
			return nil
		},
	}
}

func newFavoritesAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id>",
		Short: "Add a movie to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movie, favs, err := ctx.favoriteTarget(cmd, args[0])
			if err != nil {
				return err
			}
			changed, err := favs.Add(cmd.Context(), localNamespace, movie)
			if err != nil {
				return favoritesError(err)
			}
			return reportChange(cmd, ctx, favoriteChange{ID: movie.ID, Title: movie.Title, Favorite: true, Changed: changed})
		},
	}
}

func newFavoritesRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a movie from favorites",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			favs, err := ctx.favoritesStore()
			if err != nil {
				return err
			}
			changed, err := favs.Remove(cmd.Context(), localNamespace, id)
			if err != nil {
				return favoritesError(err)
			}
			return reportChange(cmd, ctx, favoriteChange{ID: id, Favorite: false, Changed: changed})
		},
	}
}

func newFavoritesToggleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Add a movie to favorites, or remove it if already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movie, favs, err := ctx.favoriteTarget(cmd, args[0])
			if err != nil {
				return err
			}
			added, err := favs.Toggle(cmd.Context(), localNamespace, movie)
			if err != nil {
				return favoritesError(err)
			}
			return reportChange(cmd, ctx, favoriteChange{ID: movie.ID, Title: movie.Title, Favorite: added, Changed: true})
		},
	}
}

func newFavoritesClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := ctx.favoritesStore()
			if err != nil {
				return err
			}
			if err := favs.Clear(cmd.Context(), localNamespace); err != nil {
				return err
			}
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, map[string]int{"count": 0})
			}
			printf(cmd, "Favorites cleared.\n")
			return nil
		},
	}
}

func newFavoritesQuarantineCommand(ctx *commandContext) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "quarantine",
		Short: "Move unreadable favorites aside and start a new list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs, err := ctx.favoritesStore()
			if err != nil {
				return err
			}
			if list {
				keys, err := favs.Quarantined(cmd.Context(), localNamespace)
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd.OutOrStdout()) {
					return writeJSON(cmd, map[string][]string{"quarantinedKeys": keys})
				}
				for _, k := range keys {
					printf(cmd, "%s\n", k)
				}
				return nil
			}
			key, err := favs.Quarantine(cmd.Context(), localNamespace)
			if err != nil {
				return err
			}
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, map[string]string{"quarantinedKey": key})
			}
			if key == "" {
				printf(cmd, "Favorites are readable; nothing to do.\n")
				return nil
			}
			printf(cmd, "Unreadable favorites moved to %s.\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List previously quarantined values instead")
	return cmd
}

// favoriteTarget resolves the movie a command refers to from the catalog,
// so stored favorites carry the summary fields cards need.
func (c *commandContext) favoriteTarget(cmd *cobra.Command, raw string) (domain.MovieSummary, *favorites.Store, error) {
	id, err := parseMovieID(raw)
	if err != nil {
		return domain.MovieSummary{}, nil, err
	}
	catalog, err := c.catalogClient()
	if err != nil {
		return domain.MovieSummary{}, nil, err
	}
	detail, err := catalog.FetchMovie(cmd.Context(), id)
	if err != nil {
		return domain.MovieSummary{}, nil, fmt.Errorf("load movie %d: %w", id, err)
	}
	favs, err := c.favoritesStore()
	if err != nil {
		return domain.MovieSummary{}, nil, err
	}
	return detail.MovieSummary, favs, nil
}

func reportChange(cmd *cobra.Command, ctx *commandContext, change favoriteChange) error {
	if ctx.wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd, change)
	}
	name := change.Title
	if name == "" {
		name = fmt.Sprintf("movie %d", change.ID)
	}
	switch {
	case change.Favorite && change.Changed:
		printf(cmd, "Added %s to favorites.\n", name)
	case change.Favorite:
		printf(cmd, "%s is already a favorite.\n", name)
	case change.Changed:
		printf(cmd, "Removed %s from favorites.\n", name)
	default:
		printf(cmd, "%s was not a favorite.\n", name)
	}
	return nil
}

func favoritesError(err error) error {
	var decodeErr *favorites.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("stored favorites are unreadable; run \"cinescope favorites quarantine\" to start over: %w", err)
	}
	return err
}
