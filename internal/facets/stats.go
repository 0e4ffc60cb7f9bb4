package facets

import (
	"cmp"
	"fmt"
	"slices"

	"datacatalog/internal/models"
)

// ValueCount is one facet option with the number of in-scope datasets carrying it.
type ValueCount struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
	Count int    `json:"count"`
}

// ValueCounts holds the facet counts of every field.
type ValueCounts struct {
	ContentType []ValueCount `json:"contentType"`
	Countries   []ValueCount `json:"countries"`
	Frequency   []ValueCount `json:"frequency"`
	Tags        []ValueCount `json:"tags"`
}

// Get returns the counts of field.
func (vc ValueCounts) Get(field Field) []ValueCount {
	switch field {
	case FieldContentType:
		return vc.ContentType
	case FieldCountries:
		return vc.Countries
	case FieldFrequency:
		return vc.Frequency
	case FieldTags:
		return vc.Tags
	default:
		return nil
	}
}

// Engine computes facet counts against a fixed option table. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	options Options
}

// NewEngine creates an engine for the given option table.
func NewEngine(options Options) (*Engine, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid facet options: %w", err)
	}

	return &Engine{options: options}, nil
}

// Compute returns the facet counts of datasets. Output depends only on the
// datasets and their order.
func (e *Engine) Compute(datasets []models.Dataset) ValueCounts {
	return ValueCounts{
		ContentType: e.orderedCounts(datasets, FieldContentType),
		Countries:   countryCounts(datasets),
		Frequency:   e.orderedCounts(datasets, FieldFrequency),
		Tags:        tagValues(datasets),
	}
}

// orderedCounts emits one row per allowed value of field, zeros included.
// Values outside the allowed list are not reported.
func (e *Engine) orderedCounts(datasets []models.Dataset, field Field) []ValueCount {
	counts := make(map[string]int)
	for i := range datasets {
		counts[scalarValue(&datasets[i], field)]++
	}

	order := e.options.Values(field)
	result := make([]ValueCount, 0, len(order))

	for _, value := range order {
		result = append(result, ValueCount{Value: value, Count: counts[value]})
	}

	return result
}

// countryCounts counts, per country code, the datasets that list it.
func countryCounts(datasets []models.Dataset) []ValueCount {
	index := make(map[string]int)
	result := make([]ValueCount, 0)

	for _, ds := range datasets {
		for _, c := range ds.Countries {
			if c.Code == "" {
				continue
			}

			if i, ok := index[c.Code]; ok {
				result[i].Count++
				if result[i].Label == "" && c.Label != nil {
					result[i].Label = *c.Label
				}

				continue
			}

			vc := ValueCount{Value: c.Code, Count: 1}
			if c.Label != nil {
				vc.Label = *c.Label
			}

			index[c.Code] = len(result)
			result = append(result, vc)
		}
	}

	slices.SortStableFunc(result, func(a, b ValueCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return result
}

// tagValues lists the distinct tags in first-seen order. Tag counts are not
// tracked and are always zero.
func tagValues(datasets []models.Dataset) []ValueCount {
	seen := make(map[string]bool)
	result := make([]ValueCount, 0)

	for _, ds := range datasets {
		for _, tag := range ds.Tags {
			if tag == "" || seen[tag] {
				continue
			}

			seen[tag] = true
			result = append(result, ValueCount{Value: tag})
		}
	}

	return result
}

func scalarValue(ds *models.Dataset, field Field) string {
	switch field {
	case FieldContentType:
		return ds.ContentType
	case FieldFrequency:
		return ds.Frequency
	default:
		return ""
	}
}
