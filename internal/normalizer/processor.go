// Package normalizer turns raw catalog records into normalized datasets.
package normalizer

import (
	"datacatalog/internal/logger"
	"datacatalog/internal/models"
)

// Result is the outcome of processing a raw catalog.
type Result struct {
	Datasets []models.Dataset
	Issues   []Issue
}

// Processor validates and transforms a raw catalog.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	logger      *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}

	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
		logger:      log,
	}
}

// Process normalizes the catalog. Record issues are logged and returned but
// never stop processing.
func (p *Processor) Process(raw models.RawCatalog) Result {
	issues := p.validator.Validate(raw)
	for _, issue := range issues {
		p.logger.Warn("degraded dataset record", "index", issue.Index, "dataset", issue.Dataset, "error", issue.Err)
	}

	datasets := p.transformer.TransformCatalog(raw)

	p.logger.Debug("catalog normalized", "datasets", len(datasets), "issues", len(issues))

	return Result{Datasets: datasets, Issues: issues}
}
