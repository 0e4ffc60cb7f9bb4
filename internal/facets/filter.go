package facets

import (
	"fmt"
	"slices"

	"datacatalog/internal/models"
)

// Selection maps facet fields to the values selected for them. A dataset
// matches when, for every field with a non-empty selection, its value is one
// of the selected values. Fields are ANDed, values within a field are ORed.
type Selection map[Field][]string

// Validate rejects selections on unknown fields.
func (s Selection) Validate() error {
	for field := range s {
		if !field.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownField, field)
		}
	}

	return nil
}

// Count returns the total number of selected values across all fields.
func (s Selection) Count() int {
	n := 0
	for _, values := range s {
		n += len(values)
	}

	return n
}

// Empty reports whether the selection constrains nothing.
func (s Selection) Empty() bool {
	return s.Count() == 0
}

// Clone returns a deep copy of the selection without empty fields.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for field, values := range s {
		if len(values) == 0 {
			continue
		}

		out[field] = slices.Clone(values)
	}

	return out
}

// Fields returns the constrained fields in display order.
func (s Selection) Fields() []Field {
	fields := make([]Field, 0, len(s))
	for _, f := range Fields {
		if len(s[f]) > 0 {
			fields = append(fields, f)
		}
	}

	return fields
}

// Matches reports whether ds satisfies the selection.
func (s Selection) Matches(ds *models.Dataset) bool {
	for field, values := range s {
		if len(values) == 0 {
			continue
		}

		if !matchField(ds, field, values) {
			return false
		}
	}

	return true
}

// Apply returns the datasets matching sel, in input order. An empty
// selection returns datasets unchanged.
func Apply(datasets []models.Dataset, sel Selection) []models.Dataset {
	if sel.Empty() {
		return datasets
	}

	sets := compile(sel)
	result := make([]models.Dataset, 0, len(datasets))

	for i := range datasets {
		if sets.matches(&datasets[i]) {
			result = append(result, datasets[i])
		}
	}

	return result
}

type compiled map[Field]map[string]struct{}

func compile(sel Selection) compiled {
	c := make(compiled, len(sel))
	for field, values := range sel {
		if len(values) == 0 {
			continue
		}

		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}

		c[field] = set
	}

	return c
}

func (c compiled) matches(ds *models.Dataset) bool {
	for field, set := range c {
		if !matchSet(ds, field, set) {
			return false
		}
	}

	return true
}

func matchField(ds *models.Dataset, field Field, values []string) bool {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return matchSet(ds, field, set)
}

func matchSet(ds *models.Dataset, field Field, set map[string]struct{}) bool {
	switch field {
	case FieldContentType, FieldFrequency:
		_, ok := set[scalarValue(ds, field)]
		return ok
	case FieldCountries:
		for code := range set {
			if ds.HasCountry(code) {
				return true
			}
		}

		return false
	case FieldTags:
		for _, tag := range ds.Tags {
			if _, ok := set[tag]; ok {
				return true
			}
		}

		return false
	default:
		return false
	}
}
