package catalog

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheWriteLoadPrune(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, 2)

	base := time.Unix(1700000000, 0)
	for i := 0; i < 4; i++ {
		_, err := c.Write([]byte{byte('a' + i)}, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	data, path, ts, err := c.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, []byte("d"), data)
	assert.Equal(t, filepath.Join(dir, "hip_1700010800.dat"), path)
	assert.True(t, ts.Equal(base.Add(3*time.Hour)))
}

func TestCacheEmpty(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "missing"), 3)
	_, _, _, err := c.LoadLatest()
	assert.True(t, errors.Is(err, ErrNoCache))
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hip.db")
	stars, err := Parse(bytes.NewReader(loadSample(t)), testLogger)
	require.NoError(t, err)

	info, err := WriteSQLite(ctx, path, "testdata/hip_sample.dat", stars)
	require.NoError(t, err)
	assert.Equal(t, 4, info.StarCount)
	assert.NotEmpty(t, info.ID)

	got, readInfo, err := ReadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, stars, got)
	assert.Equal(t, info.ID, readInfo.ID)
	assert.Equal(t, "testdata/hip_sample.dat", readInfo.Source)

	// A second import replaces the rows and becomes the latest record.
	info2, err := WriteSQLite(ctx, path, "second", stars[:2])
	require.NoError(t, err)
	got, readInfo, err = ReadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, info2.ID, readInfo.ID)
}

func TestReadSQLiteMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	_, _, err := ReadSQLite(context.Background(), path)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "ReadSQLite must not create the file")
}

func TestLoaderPrecedence(t *testing.T) {
	ctx := context.Background()
	sample := loadSample(t)
	dir := t.TempDir()

	filePath := filepath.Join(dir, "hip_main.dat")
	require.NoError(t, os.WriteFile(filePath, sample, 0o644))

	sqlitePath := filepath.Join(dir, "hip.db")
	stars, err := Parse(bytes.NewReader(sample), testLogger)
	require.NoError(t, err)
	_, err = WriteSQLite(ctx, sqlitePath, "seed", stars[:3])
	require.NoError(t, err)

	t.Run("sqlite first", func(t *testing.T) {
		l := NewLoader(LoaderConfig{SQLitePath: sqlitePath, FilePath: filePath}, testLogger)
		c, src, err := l.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", src.Kind)
		assert.Equal(t, 3, c.Len())
	})

	t.Run("file when snapshot absent", func(t *testing.T) {
		l := NewLoader(LoaderConfig{SQLitePath: filepath.Join(dir, "none.db"), FilePath: filePath}, testLogger)
		c, src, err := l.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "file", src.Kind)
		assert.Equal(t, 4, c.Len())
	})

	t.Run("cache before fetch", func(t *testing.T) {
		cacheDir := filepath.Join(dir, "cache")
		_, err := NewCache(cacheDir, 3).Write(sample, time.Unix(1700000000, 0))
		require.NoError(t, err)

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write(sample)
		}))
		defer server.Close()

		l := NewLoader(LoaderConfig{CacheDir: cacheDir, SourceURL: server.URL, FetchEnabled: true}, testLogger)
		_, src, err := l.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "cache", src.Kind)
		assert.Zero(t, hits.Load())
	})

	t.Run("fetch writes cache", func(t *testing.T) {
		cacheDir := filepath.Join(dir, "fresh-cache")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(sample)
		}))
		defer server.Close()

		l := NewLoader(LoaderConfig{CacheDir: cacheDir, SourceURL: server.URL, FetchEnabled: true}, testLogger)
		c, src, err := l.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "remote", src.Kind)
		assert.Equal(t, 4, c.Len())

		_, _, _, err = NewCache(cacheDir, 3).LoadLatest()
		assert.NoError(t, err)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, _, err := NewLoader(LoaderConfig{}, testLogger).Load(ctx)
		assert.ErrorIs(t, err, ErrNoSource)
	})
}
