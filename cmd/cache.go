package cmd

import (
	"fmt"
	"net/url"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yogu/stockdash/internal/assetcache"
	"github.com/yogu/stockdash/internal/config"
)

var cacheListen string

var cacheCmd = &cobra.Command{
	Use:     "cache",
	GroupID: "cache",
	Short:   "Manage the offline asset cache",
}

var cacheServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deployment cache-first on a local port",
	Long: `Run the offline cache proxy: same-origin assets are served cache-first
from a generational local store, API requests pass straight through.
Useful when the network to the deployed site is flaky or gone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, proxy, store, err := buildProxy(cacheListen)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := proxy.Install(ctx, cfg.Assets); err != nil {
			return fmt.Errorf("install cache: %w", err)
		}
		if err := proxy.Start(); err != nil {
			return err
		}

		<-ctx.Done()
		stop()
		return proxy.Shutdown(cmd.Context())
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Pre-warm the asset manifest without serving",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, proxy, store, err := buildProxy("")
		if err != nil {
			return err
		}
		defer store.Close()

		if err := proxy.Install(cmd.Context(), cfg.Assets); err != nil {
			return fmt.Errorf("install cache: %w", err)
		}
		fmt.Printf("Warmed %d asset(s) under generation %s.\n", len(cfg.Assets), store.Generation())
		return nil
	},
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live cache generation and its entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openCacheStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		paths, err := store.Paths()
		if err != nil {
			return err
		}
		fmt.Printf("generation: %s\n", store.Generation())
		if len(paths) == 0 {
			fmt.Println("no cached assets")
			return nil
		}
		for _, p := range paths {
			fmt.Println("  " + p)
		}
		return nil
	},
}

func openCacheStore(cfg *config.Config) (*assetcache.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return assetcache.Open(filepath.Join(dir, "cache"), cfg.CacheVersion)
}

func buildProxy(listen string) (*config.Config, *assetcache.Proxy, *assetcache.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Origin == "" {
		return nil, nil, nil, fmt.Errorf("origin not configured (set STOCKDASH_ORIGIN or run 'stock config --origin')")
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse origin: %w", err)
	}

	var apiBase *url.URL
	if cfg.APIBase != "" {
		apiBase, err = url.Parse(cfg.APIBase)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse api base: %w", err)
		}
	}

	store, err := openCacheStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	proxy := assetcache.NewProxy(assetcache.ProxyConfig{
		ListenAddr: listen,
		Origin:     origin,
		APIBase:    apiBase,
	}, store)
	return cfg, proxy, store, nil
}

func init() {
	cacheServeCmd.Flags().StringVar(&cacheListen, "listen", "127.0.0.1:8787", "address to serve on")
	cacheCmd.AddCommand(cacheServeCmd, cacheWarmCmd, cacheStatusCmd)
	rootCmd.AddCommand(cacheCmd)
}
