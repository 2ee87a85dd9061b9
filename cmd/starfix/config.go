package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/star/starfix/internal/api"
	"github.com/star/starfix/internal/catalog"
	"github.com/star/starfix/internal/ephemeris"
)

// fileConfig mirrors the optional YAML config file. Environment variables
// override anything set here.
type fileConfig struct {
	HTTP struct {
		Addr       string `yaml:"addr"`
		TrustProxy *bool  `yaml:"trust_proxy"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Catalog struct {
		URL           string   `yaml:"url"`
		Mirrors       []string `yaml:"mirrors"`
		Path          string   `yaml:"path"`
		CacheDir      string   `yaml:"cache_dir"`
		MaxCacheFiles int      `yaml:"max_cache_files"`
		SQLitePath    string   `yaml:"sqlite_path"`
		FetchEnabled  *bool    `yaml:"fetch_enabled"`
	} `yaml:"catalog"`
	Ephemeris struct {
		Dataset string `yaml:"dataset"`
		Workers int    `yaml:"workers"`
	} `yaml:"ephemeris"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return fc, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func loadLogLevel(fc fileConfig) (slog.Level, error) {
	raw := fc.Log.Level
	if v := os.Getenv("STARFIX_LOG_LEVEL"); v != "" {
		raw = v
	}
	return parseLevel(raw)
}

func loadHTTPConfig(logger *slog.Logger, fc fileConfig) api.Config {
	cfg := api.Config{Addr: ":25601"}
	if fc.HTTP.Addr != "" {
		cfg.Addr = fc.HTTP.Addr
	}
	if fc.HTTP.TrustProxy != nil {
		cfg.TrustProxy = *fc.HTTP.TrustProxy
	}

	if v := os.Getenv("STARFIX_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("STARFIX_TRUST_PROXY"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid STARFIX_TRUST_PROXY value, keeping current setting", "value", v, "trust_proxy", cfg.TrustProxy)
		} else {
			cfg.TrustProxy = enabled
		}
	}

	logger.Info("http config", "addr", cfg.Addr, "trust_proxy", cfg.TrustProxy)
	return cfg
}

func loadCatalogConfig(logger *slog.Logger, fc fileConfig) catalog.LoaderConfig {
	cfg := catalog.LoaderConfig{
		CacheDir:      "/tmp/starfix/catalog",
		MaxCacheFiles: 3,
		SQLitePath:    fc.Catalog.SQLitePath,
		FilePath:      fc.Catalog.Path,
		SourceURL:     fc.Catalog.URL,
		Mirrors:       fc.Catalog.Mirrors,
		FetchEnabled:  true,
	}
	if fc.Catalog.CacheDir != "" {
		cfg.CacheDir = fc.Catalog.CacheDir
	}
	if fc.Catalog.MaxCacheFiles > 0 {
		cfg.MaxCacheFiles = fc.Catalog.MaxCacheFiles
	}
	if fc.Catalog.FetchEnabled != nil {
		cfg.FetchEnabled = *fc.Catalog.FetchEnabled
	}

	if v := os.Getenv("STARFIX_CATALOG_URL"); v != "" {
		cfg.SourceURL = v
	}
	if v := os.Getenv("STARFIX_CATALOG_MIRRORS"); v != "" {
		var urls []string
		for _, u := range strings.Split(v, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				urls = append(urls, u)
			}
		}
		cfg.Mirrors = urls
	}
	if v := os.Getenv("STARFIX_CATALOG_PATH"); v != "" {
		cfg.FilePath = v
	}
	if v := os.Getenv("STARFIX_CATALOG_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("STARFIX_CATALOG_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid STARFIX_CATALOG_MAX_FILES value, using default", "value", v, "default", cfg.MaxCacheFiles)
		} else {
			cfg.MaxCacheFiles = n
		}
	}
	if v := os.Getenv("STARFIX_CATALOG_SQLITE"); v != "" {
		cfg.SQLitePath = v
	}
	if v := os.Getenv("STARFIX_CATALOG_FETCH"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid STARFIX_CATALOG_FETCH value, keeping current setting", "value", v, "fetch_enabled", cfg.FetchEnabled)
		} else {
			cfg.FetchEnabled = enabled
		}
	}

	logger.Info("catalog config",
		"sqlite_path", cfg.SQLitePath,
		"file_path", cfg.FilePath,
		"cache_dir", cfg.CacheDir,
		"max_cache_files", cfg.MaxCacheFiles,
		"fetch_enabled", cfg.FetchEnabled,
		"mirrors", len(cfg.Mirrors),
	)
	return cfg
}

// ephemerisConfig pairs the engine settings with the dataset location.
// An empty DatasetPath selects the built-in dataset.
type ephemerisConfig struct {
	ephemeris.Config
	DatasetPath string
}

func loadEphemerisConfig(logger *slog.Logger, fc fileConfig) ephemerisConfig {
	cfg := ephemerisConfig{
		Config:      ephemeris.Config{Workers: runtime.NumCPU()},
		DatasetPath: fc.Ephemeris.Dataset,
	}
	if fc.Ephemeris.Workers > 0 {
		cfg.Workers = fc.Ephemeris.Workers
	}

	if v := os.Getenv("STARFIX_EPHEMERIS"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("STARFIX_BATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid STARFIX_BATCH_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	logger.Info("ephemeris config", "dataset", cfg.DatasetPath, "workers", cfg.Workers)
	return cfg
}

func (c ephemerisConfig) dataset() (*ephemeris.Dataset, error) {
	if c.DatasetPath == "" {
		return ephemeris.DefaultDataset()
	}
	return ephemeris.LoadDataset(c.DatasetPath)
}
