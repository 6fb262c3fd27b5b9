// Package pipeline provides the core dataset pipeline for Kindred.
//
// This package implements the complete fetch → build → render pipeline that
// can be used by CLI, API, and viewer components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Retrieve the flat dataset (remote URL, local file, or bundled demo)
//  2. Build: Normalize rows and reconstruct the family forest
//  3. Render: Generate output in various formats (DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger, nil)
//	opts := pipeline.Options{
//	    URL:     "https://example.com/family.csv",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kindredtree/kindred/pkg/cache"
	"github.com/kindredtree/kindred/pkg/core/tree"
	"github.com/kindredtree/kindred/pkg/source"
)

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the dataset pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	URL        string `json:"url"`                   // dataset URL, local path, or source.DemoURL
	Local      bool   `json:"local,omitempty"`       // treat URL as a local file path
	Refresh    bool   `json:"refresh,omitempty"`     // bypass cache for fresh data
	NoFallback bool   `json:"no_fallback,omitempty"` // fail instead of falling back to the demo dataset

	// Build options
	FocusID string `json:"focus_id,omitempty"` // restrict to one person's subtree

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // include life dates in rendered labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Forest is the reconstructed family forest.
	Forest *tree.Forest

	// ForestHash is the content hash of the serialized forest.
	ForestHash string

	// Focus is the focus subtree view, set when Options.FocusID is non-empty.
	Focus *tree.FocusView

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Notice carries a user-facing message about degraded behavior, such as
	// the fallback to the bundled demo dataset.
	Notice string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount    int // raw rows decoded from the dataset
	DroppedRows int // rows rejected during normalization
	PersonCount int
	RootCount   int
	FetchTime   time.Duration
	BuildTime   time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ForestHit bool // Whether the built forest came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for fetching.
func (o *Options) ValidateForFetch() error {
	if o.URL == "" {
		o.URL = source.DemoURL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// IsDemo reports whether the options target the bundled demo dataset.
func (o *Options) IsDemo() bool {
	return o.URL == "" || o.URL == source.DemoURL
}

// DatasetKeyOpts returns cache key options for the forest built from this
// dataset.
func (o *Options) DatasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{}
}

// ForestKeyOpts returns cache key options for a focus view of the forest.
func (o *Options) ForestKeyOpts() cache.ForestKeyOpts {
	return cache.ForestKeyOpts{FocusID: o.FocusID}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
