package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kindredtree/kindred/pkg/cache"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
)

const sampleCSV = "id,name,father\np1,Ann,\np2,Ben,p1\n"

func newTestFetcher() *HTTPFetcher {
	return NewHTTPFetcher(cache.NewNullCache(), nil)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	data, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != sampleCSV {
		t.Errorf("Fetch = %q, want %q", data, sampleCSV)
	}
}

func TestHTTPFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if !kerrors.Is(err, kerrors.ErrCodeDatasetNotFound) {
		t.Errorf("error = %v, want DATASET_NOT_FOUND", err)
	}
}

func TestHTTPFetcher_MarkupRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>moved</body></html>"))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if !kerrors.Is(err, kerrors.ErrCodeNotTabular) {
		t.Errorf("error = %v, want NOT_TABULAR", err)
	}
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	data, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch after retry error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if string(data) != sampleCSV {
		t.Errorf("Fetch = %q, want %q", data, sampleCSV)
	}
}

func TestHTTPFetcher_CachesResponses(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	f := NewHTTPFetcher(fileCache, nil)

	ctx := context.Background()
	if _, err := f.Fetch(ctx, srv.URL); err != nil {
		t.Fatalf("first Fetch error: %v", err)
	}
	if _, err := f.Fetch(ctx, srv.URL); err != nil {
		t.Fatalf("second Fetch error: %v", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (second fetch should hit cache)", calls)
	}
}

func TestHTTPFetcher_RejectsBadScheme(t *testing.T) {
	_, err := newTestFetcher().Fetch(context.Background(), "file:///etc/passwd")
	if !kerrors.Is(err, kerrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFileFetcher().Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if string(data) != sampleCSV {
		t.Errorf("Fetch = %q, want %q", data, sampleCSV)
	}

	_, err = NewFileFetcher().Fetch(context.Background(), filepath.Join(dir, "missing.csv"))
	if !kerrors.Is(err, kerrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestFetchRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	rows, err := FetchRows(context.Background(), newTestFetcher(), srv.URL)
	if err != nil {
		t.Fatalf("FetchRows error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1]["fatherid"] != "p1" {
		t.Errorf("father alias not canonicalized: %v", rows[1])
	}
}
