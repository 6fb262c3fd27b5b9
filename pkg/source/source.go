// Package source fetches and decodes genealogy datasets.
//
// A dataset is a flat table of person rows, one person per row, with parent
// and spouse references by id. The package handles transport (HTTP with
// retry and response caching, local files), format detection, and CSV
// decoding into [tree.Row] values ready for normalization.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kindredtree/kindred/pkg/cache"
	"github.com/kindredtree/kindred/pkg/core/tree"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
	"github.com/kindredtree/kindred/pkg/observability"
)

const httpTimeout = 10 * time.Second

// Fetcher retrieves raw dataset bytes from a location.
type Fetcher interface {
	// Fetch returns the raw dataset content at the given URL.
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPFetcher fetches datasets over HTTP with retry and optional response
// caching. Responses that are clearly not tabular data (HTML error pages,
// redirect interstitials) are rejected up front so the CSV decoder never
// sees them.
type HTTPFetcher struct {
	http  *http.Client
	cache cache.Cache
	keyer cache.Keyer
}

// NewHTTPFetcher creates a fetcher backed by c for response caching.
// Pass a NullCache to disable caching.
func NewHTTPFetcher(c cache.Cache, keyer cache.Keyer) *HTTPFetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &HTTPFetcher{
		http:  &http.Client{Timeout: httpTimeout},
		cache: c,
		keyer: keyer,
	}
}

// Fetch retrieves the dataset at rawURL. Transient failures (network errors,
// 5xx responses) retry with exponential backoff; 404 maps to NOT_FOUND and
// markup responses to NOT_TABULAR.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := kerrors.ValidateDatasetURL(rawURL); err != nil {
		return nil, err
	}

	key := f.keyer.HTTPKey("datasets", rawURL)
	if data, hit, err := f.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "http")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "http")

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.doRequest(ctx, rawURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := checkTabular(data); err != nil {
		return nil, err
	}

	_ = f.cache.Set(ctx, key, data, cache.TTLDataset)
	return data, nil
}

func (f *HTTPFetcher) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	host, path := splitURL(rawURL)
	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := f.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, host, path, err)
		return nil, cache.Retryable(kerrors.Wrap(kerrors.ErrCodeNetwork, err, "fetch %s", rawURL))
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return kerrors.New(kerrors.ErrCodeDatasetNotFound, "dataset not found: %s", rawURL)
	case code >= 500:
		return cache.Retryable(kerrors.New(kerrors.ErrCodeNetwork, "fetch %s: status %d", rawURL, code))
	default:
		return kerrors.New(kerrors.ErrCodeNetwork, "fetch %s: status %d", rawURL, code)
	}
}

// checkTabular rejects responses that look like markup rather than a table.
// Servers routinely answer missing files with styled HTML error pages and a
// 200 status, which would otherwise decode into one garbage row.
func checkTabular(data []byte) error {
	head := strings.TrimSpace(string(data[:min(len(data), 512)]))
	lower := strings.ToLower(head)
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") ||
		strings.HasPrefix(lower, "<?xml") || strings.HasPrefix(lower, "{") {
		return kerrors.New(kerrors.ErrCodeNotTabular, "response is not tabular data")
	}
	return nil
}

func splitURL(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, ""
	}
	return u.Host, u.Path
}

// FetchRows fetches and decodes a dataset in one step.
func FetchRows(ctx context.Context, f Fetcher, rawURL string) ([]tree.Row, error) {
	start := time.Now()
	observability.Pipeline().OnFetchStart(ctx, rawURL)

	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		observability.Pipeline().OnFetchComplete(ctx, rawURL, 0, time.Since(start), err)
		return nil, err
	}

	rows, err := DecodeRows(data)
	observability.Pipeline().OnFetchComplete(ctx, rawURL, len(rows), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return rows, nil
}
