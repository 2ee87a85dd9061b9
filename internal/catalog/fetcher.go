package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultSourceURL = "https://cdsarc.cds.unistra.fr/ftp/cats/I/239/hip_main.dat"

	// maxBodyBytes bounds a catalog download; hip_main.dat is about 51 MB.
	maxBodyBytes = 100 << 20
)

// Fetcher retrieves the raw catalog from a primary URL, falling back to
// mirrors in order when a source fails.
type Fetcher struct {
	sourceURL  string
	mirrors    []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for sourceURL with optional mirrors.
func NewFetcher(sourceURL string, logger *slog.Logger, mirrors ...string) *Fetcher {
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}
	return &Fetcher{
		sourceURL: sourceURL,
		mirrors:   mirrors,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// SourceURL returns the configured primary URL.
func (f *Fetcher) SourceURL() string {
	return f.sourceURL
}

// Fetch downloads the catalog, trying the primary URL then each mirror.
// It returns the body and the URL that served it.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, string, error) {
	urls := append([]string{f.sourceURL}, f.mirrors...)
	var lastErr error
	for _, u := range urls {
		body, err := f.fetchOne(ctx, u)
		if err == nil {
			return body, u, nil
		}
		if ctx.Err() != nil {
			return nil, "", err
		}
		f.logger.Warn("catalog source failed", "url", u, "error", err)
		lastErr = err
	}
	return nil, "", lastErr
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response from %s exceeds %d byte limit", url, maxBodyBytes)
	}

	return body, nil
}
