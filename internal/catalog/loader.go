package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// ErrNoSource is returned when no configured source yields a catalog.
var ErrNoSource = errors.New("no catalog source available")

// LoaderConfig selects the catalog sources, tried in order: SQLite snapshot,
// local file, newest cache file, remote fetch.
type LoaderConfig struct {
	SQLitePath    string
	FilePath      string
	CacheDir      string
	MaxCacheFiles int
	SourceURL     string
	Mirrors       []string
	FetchEnabled  bool
}

// Loader resolves the configured sources into one Catalog at startup.
type Loader struct {
	cfg     LoaderConfig
	cache   *Cache
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	l := &Loader{cfg: cfg, logger: logger}
	if cfg.CacheDir != "" {
		l.cache = NewCache(cfg.CacheDir, cfg.MaxCacheFiles)
	}
	if cfg.FetchEnabled {
		l.fetcher = NewFetcher(cfg.SourceURL, logger, cfg.Mirrors...)
	}
	return l
}

// Load returns the catalog from the first source that succeeds. Failing
// sources are logged and skipped.
func (l *Loader) Load(ctx context.Context) (*Catalog, Source, error) {
	start := time.Now()

	if path := l.cfg.SQLitePath; path != "" {
		if _, err := os.Stat(path); err == nil {
			stars, info, err := ReadSQLite(ctx, path)
			if err == nil {
				return l.finish(stars, Source{Kind: "sqlite", Location: path, LoadedAt: info.ImportedAt}, start)
			}
			l.logger.Warn("catalog snapshot unusable", "path", path, "error", err)
		} else {
			l.logger.Debug("catalog snapshot not present", "path", path)
		}
	}

	if path := l.cfg.FilePath; path != "" {
		stars, err := l.parseFile(path)
		if err == nil {
			return l.finish(stars, Source{Kind: "file", Location: path, LoadedAt: time.Now().UTC()}, start)
		}
		l.logger.Warn("catalog file unusable", "path", path, "error", err)
	}

	if l.cache != nil {
		data, path, ts, err := l.cache.LoadLatest()
		if err == nil {
			stars, perr := l.parse(data)
			if perr == nil {
				return l.finish(stars, Source{Kind: "cache", Location: path, LoadedAt: ts}, start)
			}
			err = perr
		}
		if errors.Is(err, ErrNoCache) {
			l.logger.Debug("catalog cache empty", "dir", l.cache.Dir())
		} else {
			l.logger.Warn("catalog cache unusable", "dir", l.cache.Dir(), "error", err)
		}
	}

	if l.fetcher != nil {
		stars, src, err := l.fetch(ctx)
		if err == nil {
			return l.finish(stars, src, start)
		}
		l.logger.Warn("catalog fetch failed", "url", l.fetcher.SourceURL(), "error", err)
	}

	return nil, Source{}, ErrNoSource
}

func (l *Loader) fetch(ctx context.Context) ([]Star, Source, error) {
	data, url, err := l.fetcher.Fetch(ctx)
	if err != nil {
		return nil, Source{}, err
	}
	stars, err := l.parse(data)
	if err != nil {
		return nil, Source{}, err
	}

	now := time.Now().UTC()
	if l.cache != nil {
		if path, err := l.cache.Write(data, now); err != nil {
			l.logger.Warn("writing catalog cache failed", "error", err)
		} else {
			l.logger.Info("catalog cached", "path", path, "bytes", len(data))
		}
	}
	return stars, Source{Kind: "remote", Location: url, LoadedAt: now}, nil
}

func (l *Loader) parseFile(path string) ([]Star, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return l.parseNonEmpty(Parse(f, l.logger))
}

func (l *Loader) parse(data []byte) ([]Star, error) {
	return l.parseNonEmpty(Parse(bytes.NewReader(data), l.logger))
}

func (l *Loader) parseNonEmpty(stars []Star, err error) ([]Star, error) {
	if err != nil {
		return nil, err
	}
	if len(stars) == 0 {
		return nil, errors.New("catalog contains no usable rows")
	}
	return stars, nil
}

func (l *Loader) finish(stars []Star, src Source, start time.Time) (*Catalog, Source, error) {
	c := New(stars)
	if dups := c.Duplicates(); len(dups) > 0 {
		l.logger.Warn("duplicate HIP numbers dropped", "count", len(dups), "first", dups[0])
	}
	l.logger.Info("catalog loaded",
		"source", src.Kind,
		"location", src.Location,
		"stars", c.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c, src, nil
}
