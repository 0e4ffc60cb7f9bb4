package normalizer

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"datacatalog/internal/models"
)

// Defaults applied to datasets that do not declare the field.
const (
	DefaultCategory    = "Other"
	DefaultContentType = "Structured"
)

// timestampLayouts are tried in order when ordering datasets by updated_at.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Transformer converts raw catalog records into normalized datasets.
type Transformer struct {
	defaultCategory    string
	defaultContentType string
}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{
		defaultCategory:    DefaultCategory,
		defaultContentType: DefaultContentType,
	}
}

// Transform normalizes a single raw dataset. It never fails: missing fields
// are replaced by defaults.
func (t *Transformer) Transform(raw models.RawDataset) models.Dataset {
	var thingCountries, intervalCountries []models.Country

	var thingSchemata, intervalSchemata []models.Schema

	if raw.Things != nil {
		thingCountries = raw.Things.Countries
		thingSchemata = raw.Things.Schemata
	}

	if raw.Intervals != nil {
		intervalCountries = raw.Intervals.Countries
		intervalSchemata = raw.Intervals.Schemata
	}

	countries := MergeCountries(thingCountries, intervalCountries)

	codes := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		codes[c.Code] = struct{}{}
	}

	tags := make([]string, 0, len(raw.Tags))
	tags = append(tags, raw.Tags...)

	var frequency string
	if raw.Coverage != nil {
		frequency = raw.Coverage.Frequency
	}

	return models.Dataset{
		Name:         raw.Name,
		Title:        deref(raw.Title),
		Summary:      deref(raw.Summary),
		Category:     orDefault(deref(raw.Category), t.defaultCategory),
		ContentType:  orDefault(deref(raw.ContentType), t.defaultContentType),
		Frequency:    frequency,
		UpdatedAt:    nonEmpty(raw.UpdatedAt),
		Tags:         tags,
		Countries:    countries,
		CountryCodes: codes,
		EntityTypes:  MergeSchemata(thingSchemata, intervalSchemata),
		EntityCount:  raw.EntityCount,
		AlephURL:     raw.AlephURL,
		Publisher:    raw.Publisher,
		Maintainer:   raw.Maintainer,
		Resources:    raw.Resources,
	}
}

// TransformCatalog normalizes every dataset of the catalog and orders the
// result by updated_at, most recent first. Datasets with a timestamp sort
// before those without one; equal or missing timestamps keep catalog order.
func (t *Transformer) TransformCatalog(raw models.RawCatalog) []models.Dataset {
	type keyed struct {
		dataset models.Dataset
		key     updatedKey
	}

	items := make([]keyed, len(raw.Datasets))
	for i, rd := range raw.Datasets {
		ds := t.Transform(rd)
		items[i] = keyed{dataset: ds, key: newUpdatedKey(ds.UpdatedAt)}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.compare(b.key)
	})

	datasets := make([]models.Dataset, len(items))
	for i, it := range items {
		datasets[i] = it.dataset
	}

	return datasets
}

// MergeCountries combines country breakdowns: counts of repeated codes are
// summed, the first label seen for a code wins, and the result is sorted by
// count descending with ties kept in first-seen order.
func MergeCountries(lists ...[]models.Country) []models.Country {
	index := make(map[string]int)

	var merged []models.Country

	for _, list := range lists {
		for _, c := range list {
			if c.Code == "" {
				continue
			}

			if i, ok := index[c.Code]; ok {
				merged[i].Count += c.Count
				if merged[i].Label == nil {
					merged[i].Label = c.Label
				}

				continue
			}

			index[c.Code] = len(merged)
			merged = append(merged, c)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.Country) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if merged == nil {
		return []models.Country{}
	}

	return merged
}

// MergeSchemata applies the MergeCountries rule to schema breakdowns, keyed by schema name.
func MergeSchemata(lists ...[]models.Schema) []models.Schema {
	index := make(map[string]int)

	var merged []models.Schema

	for _, list := range lists {
		for _, s := range list {
			if s.Name == "" {
				continue
			}

			if i, ok := index[s.Name]; ok {
				merged[i].Count += s.Count
				continue
			}

			index[s.Name] = len(merged)
			merged = append(merged, s)
		}
	}

	slices.SortStableFunc(merged, func(a, b models.Schema) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if merged == nil {
		return []models.Schema{}
	}

	return merged
}

// CountryNames collects a code to label lookup over all datasets. Codes
// without a label map to themselves; later datasets overwrite earlier ones.
func CountryNames(datasets []models.Dataset) models.CountryNames {
	names := make(models.CountryNames)

	for _, ds := range datasets {
		for _, c := range ds.Countries {
			label := deref(c.Label)
			if label == "" {
				label = c.Code
			}

			names[c.Code] = label
		}
	}

	return names
}

// Dehydrate drops the fields only needed on the dataset detail page.
func Dehydrate(ds models.Dataset) models.Dataset {
	ds.Summary = ""
	ds.EntityTypes = nil

	return ds
}

// updatedKey orders timestamps in three tiers: parsable (newest first),
// present but unparsable (lexically descending), then absent.
type updatedKey struct {
	raw  string
	at   time.Time
	tier int
}

func newUpdatedKey(v *string) updatedKey {
	if v == nil {
		return updatedKey{tier: 2}
	}

	if at, ok := parseTimestamp(*v); ok {
		return updatedKey{raw: *v, at: at}
	}

	return updatedKey{raw: *v, tier: 1}
}

func (k updatedKey) compare(o updatedKey) int {
	if k.tier != o.tier {
		return cmp.Compare(k.tier, o.tier)
	}

	switch k.tier {
	case 0:
		return o.at.Compare(k.at)
	case 1:
		return strings.Compare(o.raw, k.raw)
	default:
		return 0
	}
}

func parseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if at, err := time.Parse(layout, v); err == nil {
			return at, true
		}
	}

	return time.Time{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}

	v := *s

	return &v
}
