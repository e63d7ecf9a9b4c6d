package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/config"
	"github.com/yogu/stockdash/internal/gateway"
	"github.com/yogu/stockdash/internal/store"
)

var (
	version string
	verbose bool
)

// SetVersion sets the version string shown by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "stock",
	Short: "Terminal inventory dashboard synced to a remote record store",
	Long: `stock - an inventory dashboard that keeps a local view of stock records
in sync with a remote record store over HTTP, and stays usable offline
through a local asset cache.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "cache", Title: "Offline Cache Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// setup loads config and builds the gateway and an empty store.
func setup() (*config.Config, *gateway.Client, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	gw := gateway.New(cfg.APIBase)
	return cfg, gw, store.New(gw), nil
}
