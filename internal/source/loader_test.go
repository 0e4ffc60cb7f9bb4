package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"datacatalog/internal/config"

	"github.com/klauspost/compress/zstd"
)

const catalogJSON = `{"datasets":[{"name":"us_ofac_sdn","title":"OFAC SDN"},{"name":"eu_fsf"}]}`

func fastRetry() config.RetryPolicy {
	return config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 2.0,
		TimeoutSec:        5,
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	return path
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)

	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}

	return buf.Bytes()
}

func zstded(t *testing.T, data []byte) []byte {
	t.Helper()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer failed: %v", err)
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil)
}

func TestLoader_LoadFile(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"plain", func(*testing.T) []byte { return []byte(catalogJSON) }},
		{"gzip", func(t *testing.T) []byte { return gzipped(t, []byte(catalogJSON)) }},
		{"zstd", func(t *testing.T) []byte { return zstded(t, []byte(catalogJSON)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "index.json", tt.data(t))

			catalog, err := NewLoader(fastRetry(), nil).Load(context.Background(), path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if len(catalog.Datasets) != 2 || catalog.Datasets[0].Name != "us_ofac_sdn" {
				t.Errorf("Datasets = %+v", catalog.Datasets)
			}

			if catalog.Datasets[0].Title == nil || *catalog.Datasets[0].Title != "OFAC SDN" {
				t.Error("Title not decoded")
			}
		})
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	loader := NewLoader(fastRetry(), nil)
	ctx := context.Background()

	if _, err := loader.Load(ctx, ""); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("Empty location error = %v, want ErrEmptyLocation", err)
	}

	if _, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Missing file error = %v, want os.ErrNotExist", err)
	}

	bad := writeFile(t, "bad.json", []byte("{not json"))
	if _, err := loader.Load(ctx, bad); err == nil {
		t.Error("Expected an error for malformed JSON")
	}

	big := writeFile(t, "big.json", []byte(catalogJSON))
	if _, err := loader.WithMaxBytes(10).Load(ctx, big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Oversized file error = %v, want ErrTooLarge", err)
	}
}

func TestLoader_LoadURL_RetriesTemporaryFailures(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Request sent without a User-Agent")
		}

		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer server.Close()

	catalog, err := NewLoader(fastRetry(), nil).Load(context.Background(), server.URL+"/index.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(catalog.Datasets) != 2 {
		t.Errorf("Expected 2 datasets, got %d", len(catalog.Datasets))
	}

	if got := requests.Load(); got != 3 {
		t.Errorf("Requests = %d, want 3", got)
	}
}

func TestLoader_LoadURL_NoRetryOnClientError(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewLoader(fastRetry(), nil).Load(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Load error = %v, want ErrUnexpectedStatusCode", err)
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("Requests = %d, want 1", got)
	}
}

func TestLoader_LoadURL_GivesUp(t *testing.T) {
	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := NewLoader(fastRetry(), nil).Load(context.Background(), server.URL); err == nil {
		t.Fatal("Expected an error after exhausting retries")
	}

	if got := requests.Load(); got != 3 {
		t.Errorf("Requests = %d, want 3", got)
	}
}

func TestLoader_LoadURL_Compressed(t *testing.T) {
	payload := zstded(t, []byte(catalogJSON))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	catalog, err := NewLoader(fastRetry(), nil).Load(context.Background(), server.URL+"/index.json.zst")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(catalog.Datasets) != 2 {
		t.Errorf("Expected 2 datasets, got %d", len(catalog.Datasets))
	}
}

func TestLoader_LoadURL_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLoader(fastRetry(), nil).Load(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Errorf("Load error = %v, want context.Canceled", err)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	tests := map[int]bool{
		http.StatusServiceUnavailable: true,
		http.StatusTooManyRequests:    true,
		http.StatusBadGateway:         true,
		http.StatusNotFound:           false,
		http.StatusForbidden:          false,
	}

	for code, want := range tests {
		if got := isRetryableStatus(code); got != want {
			t.Errorf("isRetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}
