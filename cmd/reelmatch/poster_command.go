package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelmatch/internal/api"
)

func newPosterCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "poster <movie-id>",
		Short: "Resolve the poster URL for a TMDB movie id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || movieID <= 0 {
				return fmt.Errorf("invalid movie id %q", args[0])
			}
			return ctx.withService(cmd.Context(), func(svc *api.RecommendationService) error {
				view := svc.Poster(cmd.Context(), movieID)
				if asJSON {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				label := fmt.Sprintf("Movie #%d", view.MovieID)
				if view.Title != "" {
					label = fmt.Sprintf("%s (#%d)", view.Title, view.MovieID)
				}
				fmt.Fprintf(out, "%s: %s [%s]\n", label, view.URL, renderOutcome(view.Outcome, shouldColorize(out)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
