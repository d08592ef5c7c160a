package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reelmatch/internal/catalog"
	"reelmatch/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Build and inspect the catalog artifact",
	}

	catalogCmd.AddCommand(newCatalogBuildCommand(ctx))
	catalogCmd.AddCommand(newCatalogInspectCommand(ctx))

	return catalogCmd
}

func newCatalogBuildCommand(ctx *commandContext) *cobra.Command {
	var source string
	var output string
	var maxFeatures int
	var workers int

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the catalog artifact from a CSV of movie_id,title,tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			src, err := config.ExpandPath(strings.TrimSpace(source))
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			target := cfg.Paths.Catalog
			if strings.TrimSpace(output) != "" {
				if target, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}

			file, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer file.Close()

			entries, err := catalog.ReadCSV(file)
			if err != nil {
				return err
			}
			cat, err := catalog.Build(cmd.Context(), entries, catalog.BuildOptions{
				MaxFeatures: maxFeatures,
				Workers:     workers,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			if err := catalog.Save(target, cat); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote catalog with %d titles to %s\n", cat.Len(), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "CSV source with movie_id, title and tags columns")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Artifact path (defaults to paths.catalog)")
	cmd.Flags().IntVar(&maxFeatures, "max-features", 0, "Keep only the most frequent terms (0 keeps all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Goroutines computing the similarity matrix (0 uses GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newCatalogInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the catalog artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			stats := summarizeSimilarity(cat.Similarity())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Path", cfg.Paths.Catalog},
					{"Format version", fmt.Sprintf("%d", catalog.ArtifactVersion)},
					{"Titles", fmt.Sprintf("%d", cat.Len())},
					{"Mean similarity", fmt.Sprintf("%.4f", stats.mean)},
					{"Max similarity", fmt.Sprintf("%.4f", stats.max)},
					{"Isolated titles", fmt.Sprintf("%d", stats.isolated)},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}

type similarityStats struct {
	mean     float64
	max      float64
	isolated int
}

// summarizeSimilarity reports off-diagonal statistics. A title is isolated
// when it scores zero against every other title.
func summarizeSimilarity(matrix [][]float64) similarityStats {
	var stats similarityStats
	var sum float64
	var pairs int
	for i, row := range matrix {
		best := 0.0
		for j, v := range row {
			if i == j {
				continue
			}
			sum += v
			pairs++
			best = max(best, v)
		}
		stats.max = max(stats.max, best)
		if best == 0 && len(matrix) > 1 {
			stats.isolated++
		}
	}
	if pairs > 0 {
		stats.mean = sum / float64(pairs)
	}
	return stats
}
