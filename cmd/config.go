package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/config"
)

var (
	configAPIBase      string
	configOrigin       string
	configCacheVersion string
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "system",
	Short:   "Show or update configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		changed := false
		if cmd.Flags().Changed("api-base") {
			cfg.APIBase = configAPIBase
			changed = true
		}
		if cmd.Flags().Changed("origin") {
			cfg.Origin = configOrigin
			changed = true
		}
		if cmd.Flags().Changed("cache-version") {
			cfg.CacheVersion = configCacheVersion
			changed = true
		}
		if changed {
			if err := config.Save(cfg); err != nil {
				return err
			}
		}

		fmt.Printf("api base:      %s\n", valueOr(cfg.APIBase, "(not set)"))
		fmt.Printf("origin:        %s\n", valueOr(cfg.Origin, "(not set)"))
		fmt.Printf("cache version: %s\n", cfg.CacheVersion)
		return nil
	},
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	configCmd.Flags().StringVar(&configAPIBase, "api-base", "", "remote record store base URL")
	configCmd.Flags().StringVar(&configOrigin, "origin", "", "deployed site origin for the asset cache")
	configCmd.Flags().StringVar(&configCacheVersion, "cache-version", "", "cache generation token")
	rootCmd.AddCommand(configCmd)
}
