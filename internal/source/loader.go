// Package source reads the raw catalog document from a local file or an
// HTTP(S) URL, decompressing gzip and zstd payloads.
package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"datacatalog/internal/config"
	"datacatalog/internal/logger"
	"datacatalog/internal/models"
	"datacatalog/pkg/utils"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxBytes caps the size of a decoded catalog document.
const DefaultMaxBytes = 512 << 20

var (
	// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrEmptyLocation is returned when no catalog location is configured.
	ErrEmptyLocation = errors.New("catalog location is empty")
	// ErrTooLarge is returned when a catalog exceeds the size limit.
	ErrTooLarge = errors.New("catalog exceeds size limit")
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Loader fetches raw catalogs with config-driven retry logic.
type Loader struct {
	client      *http.Client
	retryPolicy config.RetryPolicy
	headers     http.Header
	urls        *utils.HTTPHelper
	logger      *logger.Logger
	maxBytes    int64
}

// NewLoader creates a loader using the given retry policy.
func NewLoader(retryPolicy config.RetryPolicy, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}

	helper := utils.NewHTTPHelper()

	return &Loader{
		client:      &http.Client{Timeout: retryPolicy.GetTimeout()},
		retryPolicy: retryPolicy,
		headers:     helper.BuildHeaders(nil),
		urls:        helper,
		logger:      log,
		maxBytes:    DefaultMaxBytes,
	}
}

// WithClient replaces the HTTP client.
func (l *Loader) WithClient(client *http.Client) *Loader {
	l.client = client
	return l
}

// WithMaxBytes replaces the decoded size limit.
func (l *Loader) WithMaxBytes(n int64) *Loader {
	l.maxBytes = n
	return l
}

// Load reads and decodes the catalog at location, an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, location string) (*models.RawCatalog, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	start := time.Now()

	var (
		data []byte
		err  error
	)

	if l.urls.IsValidURL(location) {
		data, err = l.fetch(ctx, location)
	} else {
		data, err = l.readFile(location)
	}

	if err != nil {
		return nil, err
	}

	catalog, err := l.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", location, err)
	}

	l.logger.Info("catalog loaded",
		"location", location,
		"bytes", len(data),
		"datasets", len(catalog.Datasets),
		"duration", time.Since(start),
	)

	return catalog, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	attempts := max(l.retryPolicy.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		if delay := l.retryPolicy.GetRetryDelay(attempt); delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retry, err := l.get(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, attempts, err)

		if !retry || ctx.Err() != nil {
			break
		}

		l.logger.Warn("retrying catalog fetch", "url", url, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

// get performs one request. The bool reports whether a failure is worth retrying.
func (l *Loader) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = l.headers.Clone()

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, true, err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, isRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := l.readLimited(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, false, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file %s: %w", path, err)
	}
	defer f.Close()

	data, err := l.readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	return data, nil
}

func (l *Loader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}

	return data, nil
}

// decode unwraps a gzip or zstd payload, detected by its magic bytes, and
// parses the catalog JSON.
func (l *Loader) decode(data []byte) (*models.RawCatalog, error) {
	var err error

	switch {
	case bytes.HasPrefix(data, gzipMagic):
		data, err = l.gunzip(data)
	case bytes.HasPrefix(data, zstdMagic):
		data, err = l.unzstd(data)
	}

	if err != nil {
		return nil, err
	}

	var catalog models.RawCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	return &catalog, nil
}

func (l *Loader) gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	out, err := l.readLimited(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip stream: %w", err)
	}

	return out, nil
}

func (l *Loader) unzstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(uint64(l.maxBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	defer dec.Close()

	out, err := l.readLimited(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress zstd stream: %w", err)
	}

	return out, nil
}

// isRetryableStatus reports whether a status code signals a temporary failure.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusBadGateway,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
