package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/cache"
)

// pruner is implemented by backends that can drop expired entries on demand.
type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the dataset, layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry from the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %s has nothing to clear", c.backend())
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %s cache", c.backend())
			printDetail("Location: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries (sqlite backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer ch.Close()

			p, ok := ch.(pruner)
			if !ok {
				printInfo("Cache backend %s expires entries on its own", c.backend())
				return nil
			}
			n, err := p.Prune(cmd.Context())
			if err != nil {
				return fmt.Errorf("prune cache: %w", err)
			}
			printSuccess("Pruned %d expired entries", n)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configured cache backend stores entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.Out, c.cacheLocation())
			return nil
		},
	}
}

func (c *CLI) backend() string {
	b := strings.ToLower(c.cfg.Cache.Backend)
	if b == "" {
		return cache.BackendFile
	}
	return b
}

// cacheLocation describes the backend's storage: a directory, a database
// file or a server address.
func (c *CLI) cacheLocation() string {
	dir := c.cfg.Cache.Dir
	if dir == "" {
		dir, _ = cacheDir()
	}
	switch c.backend() {
	case cache.BackendSQLite:
		if c.cfg.Cache.SQLitePath != "" {
			return c.cfg.Cache.SQLitePath
		}
		return filepath.Join(dir, "cache.db")
	case cache.BackendRedis:
		return "redis://" + c.cfg.Cache.RedisAddr
	case cache.BackendMongo:
		return c.cfg.Cache.MongoURI
	case cache.BackendNull:
		return "(disabled)"
	default:
		return dir
	}
}
