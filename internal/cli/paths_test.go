package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kindredtree/kindred/pkg/source"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	os.Unsetenv("XDG_CACHE_HOME")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join("/tmp/custom-cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty defaults to svg", input: "", want: []string{"svg"}},
		{name: "single", input: "png", want: []string{"png"}},
		{name: "multiple", input: "dot,svg,png", want: []string{"dot", "svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/family.csv", false},
		{"http://example.com/family.csv", false},
		{source.DemoURL, false},
		{"family.csv", true},
		{"/data/records.csv", true},
	}

	for _, tt := range tests {
		if got := isLocalPath(tt.url); got != tt.want {
			t.Errorf("isLocalPath(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDatasetURL(t *testing.T) {
	c := &CLI{}

	if got := c.datasetURL([]string{"family.csv"}); got != "family.csv" {
		t.Errorf("datasetURL with arg = %q, want family.csv", got)
	}
	if got := c.datasetURL(nil); got != source.DemoURL {
		t.Errorf("datasetURL without arg = %q, want demo", got)
	}

	c.Config.URL = "https://example.com/family.csv"
	if got := c.datasetURL(nil); got != c.Config.URL {
		t.Errorf("datasetURL without arg = %q, want configured default", got)
	}
}

func TestRenderBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		url    string
		want   string
	}{
		{name: "derive from url", output: "", url: "https://example.com/family.csv", want: "family"},
		{name: "derive from file", output: "", url: "records.csv", want: "records"},
		{name: "demo dataset", output: "", url: source.DemoURL, want: source.DemoURL},
		{name: "strip format extension", output: "tree.svg", url: "family.csv", want: "tree"},
		{name: "keep other extension", output: "tree.out", url: "family.csv", want: "tree.out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderBasePath(tt.output, tt.url); got != tt.want {
				t.Errorf("renderBasePath(%q, %q) = %q, want %q", tt.output, tt.url, got, tt.want)
			}
		})
	}
}
