package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"reelmatch/internal/api"
	"reelmatch/internal/postercache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the persistent poster cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached poster resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPersistentCache(cmd, ctx, func(cache *postercache.SQLite) error {
				entries, err := cache.List(cmd.Context())
				if err != nil {
					return err
				}
				views := api.FromCacheEntries(entries)
				if asJSON {
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(views) == 0 {
					fmt.Fprintln(out, "Poster cache is empty")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(views))
				for _, view := range views {
					rows = append(rows, []string{
						fmt.Sprintf("%d", view.MovieID),
						renderOutcome(view.Outcome, colorize),
						view.FailureClass,
						view.ResolvedAt,
						view.URL,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Movie ID", "Outcome", "Failure", "Resolved", "URL"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached poster resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPersistentCache(cmd, ctx, func(cache *postercache.SQLite) error {
				count, err := cache.Count(cmd.Context())
				if err != nil {
					return err
				}
				if err := cache.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached poster(s) from %s\n", count, cache.Path())
				return nil
			})
		},
	}
}

// withPersistentCache opens the SQLite cache at posters.cache_path. The cache
// file is used even when posters.persistent_cache is off, so an earlier run's
// data can still be inspected; a missing file is reported, not created.
func withPersistentCache(cmd *cobra.Command, ctx *commandContext, fn func(*postercache.SQLite) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	path := cfg.Posters.CachePath
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(cmd.OutOrStdout(), "No poster cache at %s\n", path)
			return nil
		}
		return fmt.Errorf("stat poster cache: %w", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	cache, err := postercache.OpenSQLite(cmd.Context(), path, logger)
	if err != nil {
		return err
	}
	defer cache.Close()
	return fn(cache)
}
