package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regmap/internal/cache"
)

var cacheStatsFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clean the judgment cache",
	Long: `Remote model judgments are cached under cache.dir (default ~/.regmap/cache)
so repeated runs over the same obligations and policies skip the provider.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and expired entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}

		stats, err := disk.Stats()
		if err != nil {
			return err
		}
		return writeOutput("-", cacheStatsFormat, stats)
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}

		removed, err := disk.Prune()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d expired entries\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached judgment",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}

		if err := disk.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s\n", disk.Dir())
		return nil
	},
}

func diskCache() (*cache.DiskCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		return nil, fmt.Errorf("cache.dir is not set")
	}
	return cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.TTL), nil
}

func init() {
	cacheStatsCmd.Flags().StringVar(&cacheStatsFormat, "format", "yaml", "output format: json or yaml")

	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
