package source

import (
	"context"
	"os"

	kerrors "github.com/kindredtree/kindred/pkg/errors"
)

// FileFetcher reads datasets from the local filesystem. The URL argument is
// treated as a relative file path.
type FileFetcher struct{}

// NewFileFetcher creates a local file fetcher.
func NewFileFetcher() *FileFetcher { return &FileFetcher{} }

// Fetch reads the dataset file at path.
func (f *FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := kerrors.ValidateDatasetPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, kerrors.New(kerrors.ErrCodeFileNotFound, "dataset file not found: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Ensure fetchers implement Fetcher.
var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*FileFetcher)(nil)
)
