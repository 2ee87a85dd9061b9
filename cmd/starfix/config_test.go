package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starfix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	var fc fileConfig

	httpCfg := loadHTTPConfig(testLogger(), fc)
	assert.Equal(t, ":25601", httpCfg.Addr)
	assert.False(t, httpCfg.TrustProxy)

	catCfg := loadCatalogConfig(testLogger(), fc)
	assert.Equal(t, 3, catCfg.MaxCacheFiles)
	assert.True(t, catCfg.FetchEnabled)
	assert.Empty(t, catCfg.SQLitePath)

	ephCfg := loadEphemerisConfig(testLogger(), fc)
	assert.Positive(t, ephCfg.Workers)
	assert.Empty(t, ephCfg.DatasetPath)
}

func TestFileConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: 127.0.0.1:9000
  trust_proxy: true
log:
  level: debug
catalog:
  path: /data/hip_main.dat
  max_cache_files: 7
  fetch_enabled: false
  mirrors: [https://a.example/hip, https://b.example/hip]
ephemeris:
  workers: 3
`)
	fc, err := loadFileConfig(path)
	require.NoError(t, err)

	httpCfg := loadHTTPConfig(testLogger(), fc)
	assert.Equal(t, "127.0.0.1:9000", httpCfg.Addr)
	assert.True(t, httpCfg.TrustProxy)

	catCfg := loadCatalogConfig(testLogger(), fc)
	assert.Equal(t, "/data/hip_main.dat", catCfg.FilePath)
	assert.Equal(t, 7, catCfg.MaxCacheFiles)
	assert.False(t, catCfg.FetchEnabled)
	assert.Len(t, catCfg.Mirrors, 2)

	assert.Equal(t, 3, loadEphemerisConfig(testLogger(), fc).Workers)

	level, err := loadLogLevel(fc)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestEnvOverridesFile(t *testing.T) {
	fc, err := loadFileConfig(writeConfig(t, "http:\n  addr: :9000\ncatalog:\n  fetch_enabled: false\n"))
	require.NoError(t, err)

	t.Setenv("STARFIX_HTTP_ADDR", ":7000")
	t.Setenv("STARFIX_CATALOG_FETCH", "true")
	t.Setenv("STARFIX_CATALOG_MIRRORS", " https://m1.example , ,https://m2.example")
	t.Setenv("STARFIX_BATCH_WORKERS", "5")
	t.Setenv("STARFIX_LOG_LEVEL", "warn")

	assert.Equal(t, ":7000", loadHTTPConfig(testLogger(), fc).Addr)
	catCfg := loadCatalogConfig(testLogger(), fc)
	assert.True(t, catCfg.FetchEnabled)
	assert.Equal(t, []string{"https://m1.example", "https://m2.example"}, catCfg.Mirrors)
	assert.Equal(t, 5, loadEphemerisConfig(testLogger(), fc).Workers)

	level, err := loadLogLevel(fc)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestInvalidEnvKeepsDefaults(t *testing.T) {
	t.Setenv("STARFIX_BATCH_WORKERS", "zero")
	t.Setenv("STARFIX_CATALOG_MAX_FILES", "-1")
	t.Setenv("STARFIX_TRUST_PROXY", "maybe")

	var fc fileConfig
	assert.Positive(t, loadEphemerisConfig(testLogger(), fc).Workers)
	assert.Equal(t, 3, loadCatalogConfig(testLogger(), fc).MaxCacheFiles)
	assert.False(t, loadHTTPConfig(testLogger(), fc).TrustProxy)
}

func TestConfigErrors(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadFileConfig(writeConfig(t, "http: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = parseLevel("loud")
	assert.Error(t, err)
}
