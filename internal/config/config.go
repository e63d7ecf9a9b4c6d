package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultCacheVersion is the cache generation token used when the
// config does not pin one. Bumping it invalidates every cached asset.
const DefaultCacheVersion = "stock-cache-v1"

// DefaultAssets is the manifest of same-origin paths pre-warmed on
// cache install: root document, stylesheet, script, config script and
// the web manifest.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/style.css",
	"/app.js",
	"/env.js",
	"/manifest.webmanifest",
}

// Config is the global stockdash config stored at ~/.config/stockdash/config.json.
type Config struct {
	APIBase      string   `json:"api_base"`
	Origin       string   `json:"origin,omitempty"`
	CacheVersion string   `json:"cache_version,omitempty"`
	Assets       []string `json:"assets,omitempty"`
}

// ConfigDir returns ~/.config/stockdash, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "stockdash")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// Load reads the config file, then applies .env and environment
// overrides. Environment always wins over the file.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	cfg, err := loadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}

	// A local .env mirrors the deployment's env.js; missing is fine.
	_ = godotenv.Load()

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOCKDASH_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("STOCKDASH_ORIGIN"); v != "" {
		cfg.Origin = v
	}
	if v := os.Getenv("STOCKDASH_CACHE_VERSION"); v != "" {
		cfg.CacheVersion = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.CacheVersion == "" {
		cfg.CacheVersion = DefaultCacheVersion
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = append([]string(nil), DefaultAssets...)
	}
}

// Save writes the config using atomic write (temp file + rename).
func Save(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, filepath.Join(dir, "config.json"))
}
