package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/kindredtree/kindred/pkg/forest"
	"github.com/kindredtree/kindred/pkg/pipeline"
)

const testCSV = "id,name,fatherid,motherid,spouseid\nr,Root,,,s\ns,Spouse,,,r\nc,Child,r,s,\n"

type stubFetcher struct{ data []byte }

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger, &stubFetcher{data: []byte(testCSV)})
	srv := httptest.NewServer(New(runner, logger).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func createDataset(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body := bytes.NewBufferString(`{"url":"https://example.com/family.csv"}`)
	resp, err := http.Post(srv.URL+"/api/datasets", "application/json", body)
	if err != nil {
		t.Fatalf("POST /api/datasets: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var ds struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		t.Fatal(err)
	}
	if ds.ID == "" {
		t.Fatal("dataset handle is empty")
	}
	return ds.ID
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	var health map[string]string
	if status := getJSON(t, srv.URL+"/healthz", &health); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if health["status"] != "ok" {
		t.Errorf("status field = %q", health["status"])
	}
}

func TestForestEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var doc forest.Document
	if status := getJSON(t, srv.URL+"/api/forest?url=https://example.com/f.csv", &doc); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(doc.Persons) != 3 {
		t.Errorf("persons = %d, want 3", len(doc.Persons))
	}
}

func TestForestEndpoint_FocusDeepLink(t *testing.T) {
	srv := newTestServer(t)

	var doc forest.FocusDocument
	status := getJSON(t, srv.URL+"/api/forest?url=https://example.com/f.csv&focus=c", &doc)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(doc.Roots) == 0 {
		t.Fatal("focus document has no roots")
	}
	found := false
	for _, id := range doc.Highlighted {
		if id == "c" {
			found = true
		}
	}
	if !found {
		t.Errorf("focused person missing from highlight set: %v", doc.Highlighted)
	}

	// Unknown person is a 404.
	if status := getJSON(t, srv.URL+"/api/forest?focus=nobody&url=https://example.com/f.csv", nil); status != http.StatusNotFound {
		t.Errorf("unknown focus status = %d, want 404", status)
	}
}

func TestDatasetLifecycle(t *testing.T) {
	srv := newTestServer(t)
	id := createDataset(t, srv)

	// Metadata
	var ds struct {
		Persons int `json:"persons"`
		Roots   int `json:"roots"`
	}
	if status := getJSON(t, srv.URL+"/api/datasets/"+id, &ds); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if ds.Persons != 3 || ds.Roots != 1 {
		t.Errorf("persons=%d roots=%d, want 3 and 1", ds.Persons, ds.Roots)
	}

	// Full forest
	var doc forest.Document
	if status := getJSON(t, srv.URL+"/api/datasets/"+id+"/forest", &doc); status != http.StatusOK {
		t.Fatalf("forest status = %d, want 200", status)
	}
	if len(doc.Persons) != 3 {
		t.Errorf("persons = %d, want 3", len(doc.Persons))
	}

	// Focus subtree
	var focus forest.FocusDocument
	if status := getJSON(t, srv.URL+"/api/datasets/"+id+"/focus/c", &focus); status != http.StatusOK {
		t.Fatalf("focus status = %d, want 200", status)
	}
	if len(focus.Roots) == 0 {
		t.Error("focus roots empty")
	}

	// Reveal sequence covers every person exactly once.
	var steps []forest.RevealStep
	if status := getJSON(t, srv.URL+"/api/datasets/"+id+"/reveal", &steps); status != http.StatusOK {
		t.Fatalf("reveal status = %d, want 200", status)
	}
	seen := make(map[string]bool)
	for _, step := range steps {
		if seen[step.ID] {
			t.Errorf("person %s revealed twice", step.ID)
		}
		seen[step.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("reveal covers %d persons, want 3", len(seen))
	}
}

func TestDatasetNotFound(t *testing.T) {
	srv := newTestServer(t)

	status := getJSON(t, srv.URL+"/api/datasets/00000000-0000-0000-0000-000000000000", nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

func TestRenderEndpoint_DOT(t *testing.T) {
	srv := newTestServer(t)
	id := createDataset(t, srv)

	resp, err := http.Get(srv.URL + "/api/datasets/" + id + "/render?format=dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "digraph kindred") {
		t.Errorf("render body is not DOT:\n%s", body)
	}

	// Unsupported format is a 400.
	resp2, err := http.Get(srv.URL + "/api/datasets/" + id + "/render?format=pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", resp2.StatusCode)
	}
}

func TestCreateDataset_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/datasets", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
