package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"datacatalog/internal/models"
)

// gramSize is the n-gram length of the posting lists.
const gramSize = 3

// Key extracts one searchable field from a dataset.
type Key struct {
	Name  string
	Value func(*models.Dataset) string
}

// DefaultKeys are the fields searched by the catalog: title, publisher name
// and maintainer name.
var DefaultKeys = []Key{
	{Name: "title", Value: func(d *models.Dataset) string { return d.Title }},
	{Name: "publisher.name", Value: (*models.Dataset).PublisherName},
	{Name: "maintainer.name", Value: (*models.Dataset).MaintainerName},
}

// Index is an immutable trigram index over selected dataset fields. A query
// matches a dataset when its normalized form occurs, unchanged, anywhere in
// one of the normalized fields. There is no edit-distance tolerance and no
// positional weighting. An Index is safe for concurrent use.
type Index struct {
	datasets []models.Dataset
	fields   [][]string
	postings map[string][]int32
}

// Build indexes datasets on DefaultKeys.
func Build(datasets []models.Dataset) *Index {
	return BuildWithKeys(datasets, DefaultKeys)
}

// BuildWithKeys indexes datasets on the given keys.
func BuildWithKeys(datasets []models.Dataset, keys []Key) *Index {
	idx := &Index{
		datasets: datasets,
		fields:   make([][]string, len(datasets)),
		postings: make(map[string][]int32),
	}

	for i := range datasets {
		values := make([]string, 0, len(keys))
		grams := make(map[string]struct{})

		for _, key := range keys {
			v := Normalize(key.Value(&datasets[i]))
			if v == "" {
				continue
			}

			values = append(values, v)
			for _, g := range trigrams(v) {
				grams[g] = struct{}{}
			}
		}

		idx.fields[i] = values
		for g := range grams {
			idx.postings[g] = append(idx.postings[g], int32(i))
		}
	}

	return idx
}

// Len returns the number of indexed datasets.
func (idx *Index) Len() int {
	return len(idx.datasets)
}

// Search returns the datasets matching query, in indexed order.
func (idx *Index) Search(query string) []models.Dataset {
	q := Normalize(query)
	if q == "" {
		return idx.datasets
	}

	var candidates []int32
	if utf8.RuneCountInString(q) < gramSize {
		candidates = make([]int32, len(idx.datasets))
		for i := range candidates {
			candidates[i] = int32(i)
		}
	} else {
		candidates = idx.candidates(q)
	}

	result := make([]models.Dataset, 0, len(candidates))

	for _, i := range candidates {
		for _, field := range idx.fields[i] {
			if strings.Contains(field, q) {
				result = append(result, idx.datasets[i])
				break
			}
		}
	}

	return result
}

// candidates intersects the posting lists of every trigram of q, shortest first.
func (idx *Index) candidates(q string) []int32 {
	grams := trigrams(q)
	lists := make([][]int32, 0, len(grams))

	for _, g := range grams {
		list, ok := idx.postings[g]
		if !ok {
			return nil
		}

		lists = append(lists, list)
	}

	slices.SortFunc(lists, func(a, b []int32) int { return len(a) - len(b) })

	result := lists[0]
	for _, list := range lists[1:] {
		result = intersect(result, list)
		if len(result) == 0 {
			return nil
		}
	}

	return result
}

// trigrams returns the distinct rune trigrams of s in first-seen order.
func trigrams(s string) []string {
	rs := []rune(s)
	if len(rs) < gramSize {
		return nil
	}

	seen := make(map[string]struct{}, len(rs))
	grams := make([]string, 0, len(rs)-gramSize+1)

	for i := 0; i+gramSize <= len(rs); i++ {
		g := string(rs[i : i+gramSize])
		if _, ok := seen[g]; ok {
			continue
		}

		seen[g] = struct{}{}
		grams = append(grams, g)
	}

	return grams
}

// intersect merges two ascending posting lists.
func intersect(a, b []int32) []int32 {
	out := make([]int32, 0, min(len(a), len(b)))

	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}

	return out
}
