package store

import (
	"datacatalog/internal/facets"
	"datacatalog/internal/models"
	"datacatalog/internal/search"
)

// Phase is the externally visible lifecycle phase of a store.
type Phase int

// Store phases. A store starts loading and becomes ready after its first
// completed filter or search computation. It never returns to loading.
const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is a snapshot of the catalog store. It is a value: slices and maps
// are shared with the store and must not be modified.
//
// FilteredDatasets and FilterValueCounts are derived from Datasets,
// ActiveFilters and SearchValue and are always committed together.
type State struct {
	Datasets          []models.Dataset
	CountryNames      models.CountryNames
	SearchIndex       *search.Index
	FilteredDatasets  []models.Dataset
	FilterValueCounts facets.ValueCounts
	ActiveFilters     facets.Selection
	SearchValue       string
	Loading           bool

	// Version increases with every committed change.
	Version uint64
}

// Phase returns the lifecycle phase of the snapshot.
func (s State) Phase() Phase {
	if s.Loading {
		return PhaseLoading
	}

	return PhaseReady
}

// TotalCount returns the number of datasets in the catalog.
func (s State) TotalCount() int {
	return len(s.Datasets)
}

// ActiveCount returns the number of datasets passing the current search and filters.
func (s State) ActiveCount() int {
	return len(s.FilteredDatasets)
}

// ActiveFilterCount returns the number of individually selected facet values.
func (s State) ActiveFilterCount() int {
	return s.ActiveFilters.Count()
}

// SearchActive reports whether the search value is long enough to narrow results.
func (s State) SearchActive() bool {
	return searchActive(s.SearchValue)
}
