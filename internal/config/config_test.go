package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := loadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIBase != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadFileParses(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `{"api_base":"https://gas.example/exec","cache_version":"v9"}`)
	cfg, err := loadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBase != "https://gas.example/exec" {
		t.Errorf("api_base: got %q", cfg.APIBase)
	}
	if cfg.CacheVersion != "v9" {
		t.Errorf("cache_version: got %q", cfg.CacheVersion)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `{not json`)
	if _, err := loadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfg := &Config{APIBase: "https://from-file.example"}
	t.Setenv("STOCKDASH_API_BASE", "https://from-env.example")
	t.Setenv("STOCKDASH_ORIGIN", "https://origin.example")
	t.Setenv("STOCKDASH_CACHE_VERSION", "v2")
	applyEnv(cfg)
	if cfg.APIBase != "https://from-env.example" {
		t.Errorf("env should win over file, got %q", cfg.APIBase)
	}
	if cfg.Origin != "https://origin.example" {
		t.Errorf("origin: got %q", cfg.Origin)
	}
	if cfg.CacheVersion != "v2" {
		t.Errorf("cache version: got %q", cfg.CacheVersion)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if cfg.CacheVersion != DefaultCacheVersion {
		t.Errorf("default cache version: got %q", cfg.CacheVersion)
	}
	if len(cfg.Assets) != len(DefaultAssets) {
		t.Fatalf("default assets: got %d entries", len(cfg.Assets))
	}
	// Defaults must not alias the package-level slice.
	cfg.Assets[0] = "/changed"
	if DefaultAssets[0] == "/changed" {
		t.Error("applyDefaults must copy the asset manifest")
	}

	pinned := &Config{CacheVersion: "v7", Assets: []string{"/only.js"}}
	applyDefaults(pinned)
	if pinned.CacheVersion != "v7" || len(pinned.Assets) != 1 {
		t.Errorf("explicit values must survive defaults: %+v", pinned)
	}
}
