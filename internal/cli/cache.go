package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seatplan/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the placement result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all cached placements and charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			store, err := newCache(cmd, cfg.Cache)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared the %s cache", cfg.Cache.Backend)
			printDetail("%s", cacheLocation(store))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.ConfigPath)
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case CacheRedis:
				fmt.Fprintf(out, "%s (prefix %q)\n", cfg.Cache.URL, redisPrefix(cfg.Cache))
			case CacheNone:
				fmt.Fprintln(out, "none")
			default:
				dir := cfg.Cache.Dir
				if dir == "" {
					if dir, err = cacheDir(); err != nil {
						return fmt.Errorf("get cache dir: %w", err)
					}
				}
				if cfg.Cache.Prefix != "" {
					fmt.Fprintf(out, "%s (prefix %q)\n", dir, cfg.Cache.Prefix)
				} else {
					fmt.Fprintln(out, dir)
				}
			}
			return nil
		},
	}
}

func cacheLocation(store cache.Cache) string {
	switch s := store.(type) {
	case *cache.FileCache:
		return "Directory: " + s.Dir()
	case *cache.RedisCache:
		return "Key prefix: " + s.Prefix()
	}
	return ""
}

func redisPrefix(cfg CacheConfig) string {
	if cfg.Prefix != "" {
		return cfg.Prefix
	}
	return cache.DefaultRedisPrefix
}
