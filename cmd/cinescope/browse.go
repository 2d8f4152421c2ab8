package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/cinescope/internal/domain"
	"github.com/Clark-Hu/cinescope/internal/listing"
	"github.com/Clark-Hu/cinescope/internal/view"
)

type browseResult struct {
	Category domain.Category `json:"category"`
	Title    string          `json:"title"`
	Page     int             `json:"page"`
	HasMore  bool            `json:"hasMore"`
	Cards    []view.CardView `json:"cards"`
}

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var pages int
	var interactive bool

	cmd := &cobra.Command{
		Use:       "browse [category]",
		Short:     "List movies of a category (popular, top_rated, upcoming)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := domain.CategoryPopular
			if len(args) == 1 {
				parsed, err := domain.ParseCategory(args[0])
				if err != nil {
					return err
				}
				category = parsed
			}
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}

			catalog, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			lookup := ctx.localFavorites(cmd)

			model := listing.New(cmd.Context(), catalog, category, ctx.logger)
			defer model.Close()

			if interactive {
				return runInteractive(cmd, ctx, model, lookup)
			}

			model.Load()
			model.Wait()
			for state := model.Snapshot(); state.Status == listing.StatusLoaded && state.Page < pages; state = model.Snapshot() {
				if !model.LoadMore() {
					break
				}
				model.Wait()
			}

			state := model.Snapshot()
			if state.Status == listing.StatusError {
				return errors.New(state.Message)
			}
			cards := ctx.renderer().Cards(state.Items, lookup)
			if ctx.wantJSON(cmd.OutOrStdout()) {
				return writeJSON(cmd, browseResult{
					Category: state.Category,
					Title:    state.Category.Title(),
					Page:     state.Page,
					HasMore:  state.HasMore,
					Cards:    cards,
				})
			}
			printf(cmd, "%s\n%s\n%s\n", state.Category.Title(), renderCards(cards, 0), pageFooter(state))
			return nil
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "n", 1, "Number of pages to load")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Keep loading on demand: m (more), r (retry), c <category>, q (quit)")
	return cmd
}

// runInteractive drives the model from stdin commands, printing newly
// loaded rows after each step.
func runInteractive(cmd *cobra.Command, ctx *commandContext, model *listing.Model, lookup view.FavoriteLookup) error {
	renderer := ctx.renderer()
	shown := 0

	report := func() {
		model.Wait()
		state := model.Snapshot()
		switch state.Status {
		case listing.StatusError:
			printf(cmd, "%s (r to retry)\n", state.Message)
			return
		case listing.StatusLoaded:
		default:
			return
		}
		if shown == 0 {
			printf(cmd, "%s\n", state.Category.Title())
		}
		if len(state.Items) > shown {
			printf(cmd, "%s\n", renderCards(renderer.Cards(state.Items[shown:], lookup), shown))
			shown = len(state.Items)
		}
		printf(cmd, "%s\n", pageFooter(state))
	}

	model.Load()
	report()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	printf(cmd, "> ")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			printf(cmd, "> ")
			continue
		}
		switch fields[0] {
		case "q", "quit":
			return nil
		case "m", "more":
			if model.LoadMore() {
				report()
			} else if model.Snapshot().Exhausted() {
				printf(cmd, "No more movies.\n")
			}
		case "r", "retry":
			if model.Retry() {
				report()
			}
		case "c", "category":
			if len(fields) < 2 {
				printf(cmd, "usage: c <%s>\n", strings.Join(categoryNames(), "|"))
				break
			}
			category, err := domain.ParseCategory(fields[1])
			if err != nil {
				printf(cmd, "%v\n", err)
				break
			}
			if model.SetCategory(category) {
				shown = 0
				report()
			}
		default:
			printf(cmd, "commands: m (more), r (retry), c <category>, q (quit)\n")
		}
		printf(cmd, "> ")
	}
	return scanner.Err()
}

func pageFooter(state listing.State) string {
	if state.HasMore {
		return fmt.Sprintf("page %d, %d movies, more available", state.Page, len(state.Items))
	}
	return fmt.Sprintf("page %d, %d movies, end of list", state.Page, len(state.Items))
}

func categoryNames() []string {
	cats := domain.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}
