package search

import (
	"reflect"
	"testing"

	"datacatalog/internal/models"
)

func testDatasets() []models.Dataset {
	return []models.Dataset{
		{Name: "ru_sanctions", Title: "Russian Sanctions List",
			Publisher: &models.Publisher{Name: "Ministry of Finance"}},
		{Name: "de_companies", Title: "Handelsregister Unternehmen",
			Publisher:  &models.Publisher{Name: "Bundesanzeiger"},
			Maintainer: &models.Maintainer{Name: "Société Générale Data"}},
		{Name: "leak", Title: "Offshore Leaks",
			Maintainer: &models.Maintainer{Name: "Investigative Desk"}},
		{Name: "untitled"},
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Société  Générale": "societe generale",
		"  ÅRHUS\tKommune ": "arhus kommune",
		"ÉCOLE Normale":     "ecole normale",
		"":                  "",
	}

	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndex_Search(t *testing.T) {
	idx := Build(testDatasets())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title substring", "sanction", []string{"ru_sanctions"}},
		{"case insensitive", "OFFSHORE", []string{"leak"}},
		{"publisher", "bundesanz", []string{"de_companies"}},
		{"maintainer without diacritics", "societe gen", []string{"de_companies"}},
		{"query with diacritics", "Générale", []string{"de_companies"}},
		{"match anywhere", "desk", []string{"leak"}},
		{"shared substring keeps catalog order", "ist", []string{"ru_sanctions", "de_companies"}},
		{"no tolerance for typos", "sanctoins", []string{}},
		{"short query scans", "le", []string{"de_companies", "leak"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(idx.Search(tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := Build(testDatasets())

	if got := idx.Search("   "); len(got) != idx.Len() {
		t.Errorf("Empty query returned %d datasets, want %d", len(got), idx.Len())
	}
}

func TestIntersect(t *testing.T) {
	got := intersect([]int32{1, 3, 5, 7}, []int32{2, 3, 4, 7, 9})
	if !reflect.DeepEqual(got, []int32{3, 7}) {
		t.Errorf("intersect = %v, want [3 7]", got)
	}
}

func TestTrigrams(t *testing.T) {
	got := trigrams("abcabc")
	want := []string{"abc", "bca", "cab"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("trigrams = %v, want %v", got, want)
	}

	if trigrams("ab") != nil {
		t.Error("Expected no trigrams for a two-rune string")
	}
}

func names(datasets []models.Dataset) []string {
	out := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, ds.Name)
	}

	return out
}
