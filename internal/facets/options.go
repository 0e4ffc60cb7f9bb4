// Package facets computes faceted value counts and applies facet filters to datasets.
package facets

import (
	"errors"
	"fmt"

	"datacatalog/internal/config"
)

// Field names a facet dimension of a dataset.
type Field string

// Facet fields.
const (
	FieldContentType Field = "contentType"
	FieldCountries   Field = "countries"
	FieldFrequency   Field = "frequency"
	FieldTags        Field = "tags"
)

// Fields lists every facet field in display order.
var Fields = []Field{FieldContentType, FieldCountries, FieldFrequency, FieldTags}

// Option table errors.
var (
	ErrUnknownField   = errors.New("unknown facet field")
	ErrNotOrdered     = errors.New("facet field does not take an allowed-value list")
	ErrDuplicateField = errors.New("facet field declared twice")
	ErrDuplicateValue = errors.New("facet value declared twice")
)

// Valid reports whether f is a known facet field.
func (f Field) Valid() bool {
	switch f {
	case FieldContentType, FieldCountries, FieldFrequency, FieldTags:
		return true
	default:
		return false
	}
}

// Ordered reports whether f uses a closed, configured value list.
func (f Field) Ordered() bool {
	return f == FieldContentType || f == FieldFrequency
}

// FieldOptions is the ordered allowed-value list of one closed-world facet.
type FieldOptions struct {
	Field  Field
	Values []string
}

// Options is the read-only facet option table.
type Options []FieldOptions

// DefaultOptions returns the built-in option table.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default().Facets)
}

// OptionsFromConfig converts the configured facet table.
func OptionsFromConfig(groups []config.FacetOptions) Options {
	opts := make(Options, 0, len(groups))
	for _, g := range groups {
		values := make([]string, len(g.Values))
		copy(values, g.Values)
		opts = append(opts, FieldOptions{Field: Field(g.Field), Values: values})
	}

	return opts
}

// Validate checks that every group names an ordered field once, without duplicate values.
func (o Options) Validate() error {
	seen := make(map[Field]bool, len(o))

	for _, group := range o {
		if !group.Field.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownField, group.Field)
		}

		if !group.Field.Ordered() {
			return fmt.Errorf("%w: %s", ErrNotOrdered, group.Field)
		}

		if seen[group.Field] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, group.Field)
		}

		seen[group.Field] = true

		values := make(map[string]bool, len(group.Values))
		for _, v := range group.Values {
			if values[v] {
				return fmt.Errorf("%w: %s=%s", ErrDuplicateValue, group.Field, v)
			}

			values[v] = true
		}
	}

	return nil
}

// Values returns the allowed values of field, or nil when the table does not declare it.
func (o Options) Values(field Field) []string {
	for _, group := range o {
		if group.Field == field {
			return group.Values
		}
	}

	return nil
}
