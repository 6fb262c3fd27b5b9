package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kindredtree/kindred/pkg/cache"
	"github.com/kindredtree/kindred/pkg/core/tree"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
	"github.com/kindredtree/kindred/pkg/forest"
	"github.com/kindredtree/kindred/pkg/layout"
	"github.com/kindredtree/kindred/pkg/observability"
	"github.com/kindredtree/kindred/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher source.Fetcher
}

// NewRunner creates a runner with the given cache, keyer, and fetcher.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If fetcher is nil, an HTTPFetcher backed by the same cache is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, fetcher source.Fetcher) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if fetcher == nil {
		fetcher = source.NewHTTPFetcher(c, keyer)
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: fetcher,
	}
}

// Execute runs the complete fetch → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result, err := r.load(ctx, opts)
	if err != nil {
		return nil, err
	}

	if opts.FocusID != "" {
		view := tree.Focus(result.Forest.Lookup, opts.FocusID)
		result.Focus = &view
		r.Logger.Info("resolved focus subtree",
			"person", opts.FocusID,
			"highlighted", len(view.Highlighted))
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Forest, result.ForestHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load fetches the dataset and builds the forest, without rendering.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	return r.load(ctx, opts)
}

func (r *Runner) load(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	// Try the forest cache before fetching anything.
	forestKey := r.Keyer.DatasetKey(opts.URL, opts.DatasetKeyOpts())
	if !opts.Refresh && !opts.IsDemo() {
		if data, hit, err := r.Cache.Get(ctx, forestKey); err == nil && hit {
			if f, err := forest.ReadForest(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "forest")
				result.Forest = f
				result.ForestHash = cache.Hash(data)
				result.Stats.PersonCount = f.Size()
				result.Stats.RootCount = len(f.Roots)
				result.CacheInfo.ForestHit = true
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "forest")
	}

	fetchStart := time.Now()
	rows, notice, err := r.fetchRows(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Notice = notice
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.RowCount = len(rows)

	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(rows))

	persons, dropped := tree.NormalizeAll(rows)
	result.Stats.DroppedRows = dropped
	if dropped > 0 {
		r.Logger.Warn("dropped invalid rows", "count", dropped)
	}

	f := tree.Build(persons)
	result.Forest = f
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.PersonCount = f.Size()
	result.Stats.RootCount = len(f.Roots)
	observability.Pipeline().OnBuildComplete(ctx, f.Size(), len(f.Roots), result.Stats.BuildTime, nil)

	r.Logger.Info("built forest",
		"persons", f.Size(),
		"roots", len(f.Roots),
		"duration", result.Stats.BuildTime)

	// Cache the built forest and derive its content hash.
	if data, err := forest.MarshalForest(f); err == nil {
		result.ForestHash = cache.Hash(data)
		if notice == "" && !opts.IsDemo() {
			_ = r.Cache.Set(ctx, forestKey, data, cache.TTLForest)
			observability.Cache().OnCacheSet(ctx, "forest", len(data))
		}
	}

	return result, nil
}

// fetchRows retrieves the raw rows for opts, falling back to the bundled
// demo dataset on transport or format errors unless NoFallback is set.
// The demo URL and local paths never fall back.
func (r *Runner) fetchRows(ctx context.Context, opts Options) ([]tree.Row, string, error) {
	if opts.IsDemo() {
		return source.DemoRows(), "", nil
	}

	fetcher := r.Fetcher
	if opts.Local {
		fetcher = source.NewFileFetcher()
	}

	rows, err := source.FetchRows(ctx, fetcher, opts.URL)
	if err == nil {
		return rows, "", nil
	}
	if opts.NoFallback || opts.Local {
		return nil, "", err
	}

	r.Logger.Warn("dataset unavailable, using bundled demo data",
		"url", opts.URL,
		"err", err)
	notice := fmt.Sprintf("could not load %s; showing the demo dataset", opts.URL)
	return source.DemoRows(), notice, nil
}

// FocusDocument derives the wire-form focus view for focusID and caches it
// under the forest hash, so API hosts serving the same deep link repeatedly
// skip the clone and re-marshal. It returns a PERSON_NOT_FOUND error when
// the id does not resolve to any display root.
func (r *Runner) FocusDocument(ctx context.Context, f *tree.Forest, forestHash, focusID string) ([]byte, error) {
	opts := Options{FocusID: focusID}

	var key string
	if forestHash != "" {
		key = r.Keyer.ForestKey(forestHash, opts.ForestKeyOpts())
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			return data, nil
		}
	}

	view := tree.Focus(f.Lookup, focusID)
	if len(view.DisplayRoots) == 0 {
		return nil, kerrors.New(kerrors.ErrCodePersonNotFound, "person not found: %s", focusID)
	}

	data, err := json.Marshal(forest.FromFocus(view))
	if err != nil {
		return nil, err
	}
	if key != "" {
		_ = r.Cache.Set(ctx, key, data, cache.TTLForest)
	}
	return data, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. forestHash keys the artifact cache; pass the hash from Load.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, f *tree.Forest, forestHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache.
	allCached := forestHash != ""
	artifacts := make(map[string][]byte)
	if allCached {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(forestHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := r.renderFormats(ctx, f, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if forestHash != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(forestHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, f *tree.Forest, forestHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, f, forestHash, opts)
	return artifacts, err
}

func (r *Runner) renderFormats(ctx context.Context, f *tree.Forest, opts Options) (map[string][]byte, error) {
	dot := layout.ToDOT(f, layout.DOTOptions{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			data, err := layout.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = data
		case FormatPNG:
			data, err := layout.RenderPNG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			artifacts[format] = data
		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
