package normalizer

import (
	"errors"
	"fmt"

	"datacatalog/internal/models"
)

// Record issues. None of them reject a record; they only degrade it.
var (
	ErrMissingName        = errors.New("dataset has no name")
	ErrDuplicateName      = errors.New("dataset name is not unique")
	ErrInvalidUpdatedAt   = errors.New("updated_at is not a recognised timestamp")
	ErrNegativeCount      = errors.New("breakdown contains a negative count")
	ErrMissingCountryCode = errors.New("country breakdown entry has no code")
)

// Issue describes a problem found in one raw dataset record.
type Issue struct {
	Err     error
	Dataset string
	Index   int
}

func (i Issue) Error() string {
	if i.Dataset == "" {
		return fmt.Sprintf("dataset[%d]: %v", i.Index, i.Err)
	}

	return fmt.Sprintf("dataset[%d] %q: %v", i.Index, i.Dataset, i.Err)
}

func (i Issue) Unwrap() error {
	return i.Err
}

// Validator inspects raw catalog records for data-quality problems.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns every issue found in the catalog, in record order.
func (v *Validator) Validate(raw models.RawCatalog) []Issue {
	var issues []Issue

	seen := make(map[string]int, len(raw.Datasets))

	for i, ds := range raw.Datasets {
		report := func(err error) {
			issues = append(issues, Issue{Err: err, Dataset: ds.Name, Index: i})
		}

		if ds.Name == "" {
			report(ErrMissingName)
		} else if first, ok := seen[ds.Name]; ok {
			report(fmt.Errorf("%w: first seen at index %d", ErrDuplicateName, first))
		} else {
			seen[ds.Name] = i
		}

		if ds.UpdatedAt != nil && *ds.UpdatedAt != "" {
			if _, ok := parseTimestamp(*ds.UpdatedAt); !ok {
				report(fmt.Errorf("%w: %q", ErrInvalidUpdatedAt, *ds.UpdatedAt))
			}
		}

		for _, b := range []*models.Breakdown{ds.Things, ds.Intervals} {
			if b == nil {
				continue
			}

			for _, c := range b.Countries {
				if c.Code == "" {
					report(ErrMissingCountryCode)
				}

				if c.Count < 0 {
					report(fmt.Errorf("%w: country %s", ErrNegativeCount, c.Code))
				}
			}

			for _, s := range b.Schemata {
				if s.Count < 0 {
					report(fmt.Errorf("%w: schema %s", ErrNegativeCount, s.Name))
				}
			}
		}
	}

	return issues
}
