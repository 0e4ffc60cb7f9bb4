package normalizer

import (
	"reflect"
	"testing"

	"datacatalog/internal/models"
)

func strPtr(s string) *string { return &s }

func country(code string, count int) models.Country {
	return models.Country{Code: code, Count: count}
}

func codes(countries []models.Country) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.Code)
	}

	return out
}

func datasetNames(datasets []models.Dataset) []string {
	out := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, ds.Name)
	}

	return out
}

func TestNewTransformer(t *testing.T) {
	tr := NewTransformer()
	if tr == nil {
		t.Fatal("NewTransformer returned nil")
	}
}

func TestTransformer_Transform(t *testing.T) {
	tr := NewTransformer()

	raw := models.RawDataset{
		Name:        "us_ofac_sdn",
		Title:       strPtr("OFAC SDN List"),
		Summary:     strPtr("Specially designated nationals"),
		ContentType: strPtr("Leaks"),
		Category:    strPtr("Sanctions"),
		Coverage:    &models.Coverage{Frequency: "daily"},
		Tags:        []string{"list.sanction", "juris.us"},
		UpdatedAt:   strPtr("2024-05-01T10:00:00"),
		Publisher:   &models.Publisher{Name: "Treasury"},
		Things: &models.Breakdown{
			Countries: []models.Country{country("us", 3)},
			Schemata:  []models.Schema{{Name: "Person", Count: 4}},
		},
		Intervals: &models.Breakdown{
			Countries: []models.Country{country("us", 2), country("ru", 7)},
			Schemata:  []models.Schema{{Name: "Sanction", Count: 9}, {Name: "Person", Count: 1}},
		},
	}

	ds := tr.Transform(raw)

	if ds.Name != "us_ofac_sdn" || ds.Title != "OFAC SDN List" {
		t.Errorf("Name/Title = %q/%q", ds.Name, ds.Title)
	}

	if ds.ContentType != "Leaks" || ds.Category != "Sanctions" || ds.Frequency != "daily" {
		t.Errorf("ContentType/Category/Frequency = %q/%q/%q", ds.ContentType, ds.Category, ds.Frequency)
	}

	if got := codes(ds.Countries); !reflect.DeepEqual(got, []string{"ru", "us"}) {
		t.Errorf("Countries = %v, want [ru us]", got)
	}

	if ds.Countries[1].Count != 5 {
		t.Errorf("us count = %d, want 5", ds.Countries[1].Count)
	}

	if !ds.HasCountry("ru") || ds.HasCountry("de") {
		t.Error("CountryCodes does not reflect merged countries")
	}

	wantSchemata := []models.Schema{{Name: "Sanction", Count: 9}, {Name: "Person", Count: 5}}
	if !reflect.DeepEqual(ds.EntityTypes, wantSchemata) {
		t.Errorf("EntityTypes = %v, want %v", ds.EntityTypes, wantSchemata)
	}

	if ds.PublisherName() != "Treasury" || ds.MaintainerName() != "" {
		t.Errorf("PublisherName/MaintainerName = %q/%q", ds.PublisherName(), ds.MaintainerName())
	}
}

func TestTransformer_Transform_Defaults(t *testing.T) {
	ds := NewTransformer().Transform(models.RawDataset{Name: "bare", UpdatedAt: strPtr("  ")})

	if ds.Category != DefaultCategory {
		t.Errorf("Category = %q, want %q", ds.Category, DefaultCategory)
	}

	if ds.ContentType != DefaultContentType {
		t.Errorf("ContentType = %q, want %q", ds.ContentType, DefaultContentType)
	}

	if ds.Tags == nil || len(ds.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil slice", ds.Tags)
	}

	if ds.Countries == nil || len(ds.Countries) != 0 {
		t.Errorf("Countries = %#v, want empty non-nil slice", ds.Countries)
	}

	if ds.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %q, want nil for a blank value", *ds.UpdatedAt)
	}
}

func TestTransformer_Transform_DoesNotAliasTags(t *testing.T) {
	raw := models.RawDataset{Name: "x", Tags: []string{"a"}}
	ds := NewTransformer().Transform(raw)

	raw.Tags[0] = "changed"
	if ds.Tags[0] != "a" {
		t.Errorf("Tags aliased the raw record: %v", ds.Tags)
	}
}

func TestTransformCatalog_OrderByUpdatedAt(t *testing.T) {
	raw := models.RawCatalog{Datasets: []models.RawDataset{
		{Name: "absent-1"},
		{Name: "old", UpdatedAt: strPtr("2022-01-01T00:00:00")},
		{Name: "garbage-a", UpdatedAt: strPtr("a while ago")},
		{Name: "new", UpdatedAt: strPtr("2024-03-01")},
		{Name: "tie-1", UpdatedAt: strPtr("2023-06-01T12:00:00Z")},
		{Name: "absent-2"},
		{Name: "tie-2", UpdatedAt: strPtr("2023-06-01T12:00:00Z")},
		{Name: "garbage-z", UpdatedAt: strPtr("zzz")},
	}}

	got := datasetNames(NewTransformer().TransformCatalog(raw))
	want := []string{"new", "tie-1", "tie-2", "old", "garbage-z", "garbage-a", "absent-1", "absent-2"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestTransformCatalog_Deterministic(t *testing.T) {
	raw := models.RawCatalog{Datasets: []models.RawDataset{
		{Name: "a", UpdatedAt: strPtr("2023-01-01")},
		{Name: "b"},
		{Name: "c", UpdatedAt: strPtr("2023-01-01")},
	}}

	tr := NewTransformer()
	first := tr.TransformCatalog(raw)
	second := tr.TransformCatalog(raw)

	if !reflect.DeepEqual(first, second) {
		t.Error("TransformCatalog is not deterministic")
	}
}

func TestMergeCountries(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]models.Country
		want  []models.Country
	}{
		{
			name: "sum and sort",
			lists: [][]models.Country{
				{country("US", 3)},
				{country("US", 2), country("DE", 1)},
			},
			want: []models.Country{country("US", 5), country("DE", 1)},
		},
		{
			name:  "ties keep first-seen order",
			lists: [][]models.Country{{country("FR", 1), country("GB", 2)}, {country("IT", 1)}},
			want:  []models.Country{country("GB", 2), country("FR", 1), country("IT", 1)},
		},
		{
			name:  "empty codes dropped",
			lists: [][]models.Country{{country("", 9), country("NL", 1)}},
			want:  []models.Country{country("NL", 1)},
		},
		{
			name:  "no input",
			lists: nil,
			want:  []models.Country{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeCountries(tt.lists...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeCountries = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeCountries_Commutative(t *testing.T) {
	a := []models.Country{country("US", 3), country("RU", 1)}
	b := []models.Country{country("US", 2), country("DE", 4)}

	total := func(list []models.Country) map[string]int {
		out := make(map[string]int)
		for _, c := range list {
			out[c.Code] += c.Count
		}

		return out
	}

	if ab, ba := total(MergeCountries(a, b)), total(MergeCountries(b, a)); !reflect.DeepEqual(ab, ba) {
		t.Errorf("Merged counts differ by argument order: %v vs %v", ab, ba)
	}
}

func TestMergeCountries_FirstLabelWins(t *testing.T) {
	got := MergeCountries(
		[]models.Country{{Code: "us", Count: 1}},
		[]models.Country{{Code: "us", Label: strPtr("United States"), Count: 1}},
		[]models.Country{{Code: "us", Label: strPtr("USA"), Count: 1}},
	)

	if len(got) != 1 || got[0].Label == nil || *got[0].Label != "United States" {
		t.Errorf("MergeCountries = %+v, want label United States", got)
	}
}

func TestCountryNames(t *testing.T) {
	datasets := []models.Dataset{
		{Countries: []models.Country{{Code: "de", Label: strPtr("Germany")}, {Code: "xk"}}},
		{Countries: []models.Country{{Code: "de", Label: strPtr("Deutschland")}}},
	}

	got := CountryNames(datasets)
	want := models.CountryNames{"de": "Deutschland", "xk": "xk"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountryNames = %v, want %v", got, want)
	}

	if got.Label("zz") != "zz" {
		t.Errorf("Label of unknown code = %q, want zz", got.Label("zz"))
	}
}

func TestDehydrate(t *testing.T) {
	ds := models.Dataset{
		Name:        "x",
		Summary:     "long text",
		EntityTypes: []models.Schema{{Name: "Person", Count: 1}},
		Tags:        []string{"a"},
	}

	got := Dehydrate(ds)

	if got.Summary != "" || got.EntityTypes != nil {
		t.Errorf("Dehydrate kept detail fields: %+v", got)
	}

	if got.Name != "x" || len(got.Tags) != 1 {
		t.Errorf("Dehydrate dropped listing fields: %+v", got)
	}

	if ds.Summary != "long text" {
		t.Error("Dehydrate modified its input")
	}
}
