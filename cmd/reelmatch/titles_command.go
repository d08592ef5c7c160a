package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "titles [query]",
		Short: "List catalog titles, optionally filtered by a substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			titles := cat.Search(strings.Join(args, " "))
			if asJSON {
				if titles == nil {
					titles = []string{}
				}
				return writeJSON(cmd, titles)
			}
			out := cmd.OutOrStdout()
			if len(titles) == 0 {
				fmt.Fprintln(out, "No matching titles")
				return nil
			}
			for _, title := range titles {
				fmt.Fprintln(out, title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
