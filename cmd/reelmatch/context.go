package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelmatch/internal/api"
	"reelmatch/internal/catalog"
	"reelmatch/internal/config"
	"reelmatch/internal/logging"
	"reelmatch/internal/postercache"
	"reelmatch/internal/posters"
)

// posterCache is the cache surface shared by the memory and SQLite stores.
type posterCache interface {
	posters.Cache
	List(ctx context.Context) ([]postercache.Entry, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Close() error
}

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) openCatalog() (*catalog.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Load(cfg.Paths.Catalog)
}

// openCache returns the SQLite cache when persistence is enabled and a
// process-local memory cache otherwise.
func (c *commandContext) openCache(ctx context.Context) (posterCache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Posters.PersistentCache {
		return postercache.NewMemory(), nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return postercache.OpenSQLite(ctx, cfg.Posters.CachePath, logger)
}

// withService wires catalog, cache and resolver for the duration of fn.
func (c *commandContext) withService(ctx context.Context, fn func(*api.RecommendationService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	cat, err := c.openCatalog()
	if err != nil {
		return err
	}
	cache, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	resolver, err := posters.NewFromConfig(cfg, cache, logger)
	if err != nil {
		return err
	}
	defer resolver.Close()

	return fn(api.NewRecommendationService(cat, resolver, cfg.Recommend.DefaultK, logger))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
