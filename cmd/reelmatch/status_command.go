package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelmatch/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the catalog, directories, poster cache and TMDB credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, "reelmatch status")
			for _, result := range results {
				fmt.Fprintln(out, renderStatusLine(result.Name, statusKindFromResult(result), result.Detail, colorize))
			}
			if !preflight.Ready(results) {
				return errors.New("not ready: fix the failed checks above")
			}
			return nil
		},
	}
}
