package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelmatch/internal/api"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var k int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend movies similar to a catalog title",
		Long: "Recommend the k most similar catalog titles, each with a poster URL.\n" +
			"Titles match exactly, whitespace included; quote titles containing spaces.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			return ctx.withService(cmd.Context(), func(svc *api.RecommendationService) error {
				set, err := svc.Recommend(cmd.Context(), title, k)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, set)
				}
				renderRecommendations(cmd, set)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of recommendations (defaults to recommend.default_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderRecommendations(cmd *cobra.Command, set *api.RecommendationSet) {
	out := cmd.OutOrStdout()
	if len(set.Recommendations) == 0 {
		fmt.Fprintf(out, "No other titles to recommend for %q\n", set.Query)
		return
	}
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(set.Recommendations))
	for i, rec := range set.Recommendations {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			rec.Title,
			fmt.Sprintf("%d", rec.MovieID),
			fmt.Sprintf("%.4f", rec.Score),
			renderOutcome(rec.PosterOutcome, colorize),
			rec.PosterURL,
		})
	}
	fmt.Fprintf(out, "Because you liked %q:\n", set.Query)
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Movie ID", "Score", "Poster", "URL"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
}
