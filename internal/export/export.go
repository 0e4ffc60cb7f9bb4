// Package export writes the static catalog bundle: the listing page data,
// one detail document per dataset and the Markdown report.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"datacatalog/internal/config"
	"datacatalog/internal/facets"
	"datacatalog/internal/logger"
	"datacatalog/internal/models"
	"datacatalog/internal/normalizer"

	"golang.org/x/sync/errgroup"
)

// File names inside the output directory.
const (
	IndexFile  = "index.json"
	ReportFile = "catalog.md"
	DetailsDir = "datasets"
	detailsExt = ".json"
	filePerm   = 0o644
	dirPerm    = 0o755

	maxConcurrentWrites = 8
)

// ErrInvalidDatasetName is returned for names that cannot be used as a file name.
var ErrInvalidDatasetName = errors.New("dataset name is not a valid file name")

// Bundle is the listing page data: dehydrated datasets with their facet
// counts and country names, all computed over the full catalog.
type Bundle struct {
	GeneratedAt       time.Time           `json:"generatedAt"`
	Datasets          []models.Dataset    `json:"datasets"`
	FilterValueCounts facets.ValueCounts  `json:"filterValueCounts"`
	CountryNames      models.CountryNames `json:"countryNames"`
}

// Detail is the data of one dataset page.
type Detail struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Dataset     models.Dataset `json:"dataset"`
}

// Build assembles the bundle for datasets.
func Build(datasets []models.Dataset, engine *facets.Engine, generatedAt time.Time) Bundle {
	dehydrated := make([]models.Dataset, len(datasets))
	for i, ds := range datasets {
		dehydrated[i] = normalizer.Dehydrate(ds)
	}

	return Bundle{
		GeneratedAt:       generatedAt.UTC(),
		Datasets:          dehydrated,
		FilterValueCounts: engine.Compute(datasets),
		CountryNames:      normalizer.CountryNames(datasets),
	}
}

// Writer writes export files below an output directory.
type Writer struct {
	dir    string
	pretty bool
	logger *logger.Logger
}

// NewWriter creates a writer for the configured output directory.
func NewWriter(cfg config.OutputConfig, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Nop()
	}

	return &Writer{dir: cfg.Dir, pretty: cfg.PrettyPrint, logger: log}
}

// WriteBundle writes the bundle to index.json and returns its path.
func (w *Writer) WriteBundle(b Bundle) (string, error) {
	path := filepath.Join(w.dir, IndexFile)
	if err := WriteJSON(path, b, w.pretty); err != nil {
		return "", err
	}

	w.logger.Info("catalog bundle written", "path", path, "datasets", len(b.Datasets))

	return path, nil
}

// WriteDetails writes one detail document per dataset and returns the number
// written. Files are written concurrently; the first failure stops the rest.
// When names repeat, the first dataset with the name is written.
func (w *Writer) WriteDetails(datasets []models.Dataset, generatedAt time.Time) (int, error) {
	dir := filepath.Join(w.dir, DetailsDir)

	var (
		written atomic.Int64
		g       errgroup.Group
	)

	g.SetLimit(maxConcurrentWrites)

	seen := make(map[string]struct{}, len(datasets))

	for _, ds := range datasets {
		path, err := DetailPath(dir, ds.Name)
		if err != nil {
			w.logger.Warn("skipping dataset detail", "dataset", ds.Name, "error", err)
			continue
		}

		if _, dup := seen[ds.Name]; dup {
			w.logger.Warn("skipping duplicate dataset detail", "dataset", ds.Name)
			continue
		}

		seen[ds.Name] = struct{}{}

		ds := ds
		g.Go(func() error {
			detail := Detail{
				GeneratedAt: generatedAt.UTC(),
				Title:       ds.Title,
				Description: ds.Summary,
				Dataset:     ds,
			}

			if err := WriteJSON(path, detail, w.pretty); err != nil {
				return fmt.Errorf("failed to write detail for %s: %w", ds.Name, err)
			}

			written.Add(1)

			return nil
		})
	}

	err := g.Wait()

	w.logger.Debug("dataset details written", "dir", dir, "count", written.Load())

	return int(written.Load()), err
}

// WriteReport writes the Markdown report and returns its path.
func (w *Writer) WriteReport(content string) (string, error) {
	path := filepath.Join(w.dir, ReportFile)

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// DetailPath returns the detail file path of dataset name inside dir.
func DetailPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDatasetName, name)
	}

	return filepath.Join(dir, name+detailsExt), nil
}

// WriteJSON marshals v to path, creating parent directories.
func WriteJSON(path string, v any, pretty bool) error {
	var (
		data []byte
		err  error
	)

	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
