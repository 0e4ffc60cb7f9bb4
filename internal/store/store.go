// Package store holds the catalog state: the datasets, the active filters and
// search text, and the filtered view and facet counts derived from them.
package store

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"datacatalog/internal/facets"
	"datacatalog/internal/logger"
	"datacatalog/internal/models"
	"datacatalog/internal/search"

	"golang.org/x/sync/singleflight"
)

// SearchThreshold is the longest search value, in runes, that is ignored.
// Shorter queries match too broadly to be useful.
const SearchThreshold = 3

// Store misuse errors.
var (
	ErrNotInitialized = errors.New("store: not initialized, use store.New")
	ErrClosed         = errors.New("store: closed")
	ErrDetached       = errors.New("store: subscription detached")
	ErrNoEngine       = errors.New("store: facet engine is required")
	ErrNilListener    = errors.New("store: listener is nil")
	ErrNoIndex        = errors.New("store: index builder returned no index")
)

// ErrSuperseded is returned by a mutation whose result was discarded because
// a newer mutation was issued while it waited for the search index.
var ErrSuperseded = errors.New("store: superseded by a newer request")

// IndexBuilder builds the search index over the catalog datasets.
type IndexBuilder func([]models.Dataset) *search.Index

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIndexBuilder replaces the search index builder.
func WithIndexBuilder(b IndexBuilder) Option {
	return func(s *Store) {
		if b != nil {
			s.buildIndex = b
		}
	}
}

// request is the filter and search intent of the latest mutation.
type request struct {
	filters facets.Selection
	search  string
}

// Store is the catalog state container. All methods are safe for concurrent
// use. Every mutation takes a sequence number; a result computed for a
// sequence number that is no longer the latest is discarded, so the last
// issued mutation always determines the committed state.
type Store struct {
	mu         sync.Mutex
	state      State
	byName     map[string]int
	engine     *facets.Engine
	logger     *logger.Logger
	buildIndex IndexBuilder
	builds     singleflight.Group
	index      *search.Index
	wanted     request
	seq        uint64
	listeners  []*Subscription
	nextID     uint64
	closed     bool
}

// New creates a store over datasets. The store starts in the loading phase
// with no filters and no search. When initialCounts is the zero value the
// counts are computed from datasets.
func New(datasets []models.Dataset, countryNames models.CountryNames, initialCounts facets.ValueCounts, engine *facets.Engine, opts ...Option) (*Store, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}

	if initialCounts.ContentType == nil && initialCounts.Countries == nil &&
		initialCounts.Frequency == nil && initialCounts.Tags == nil {
		initialCounts = engine.Compute(datasets)
	}

	if countryNames == nil {
		countryNames = models.CountryNames{}
	}

	s := &Store{
		engine:     engine,
		logger:     logger.Nop(),
		buildIndex: search.Build,
		byName:     make(map[string]int, len(datasets)),
		wanted:     request{filters: facets.Selection{}},
		state: State{
			Datasets:          datasets,
			CountryNames:      countryNames,
			FilteredDatasets:  datasets,
			FilterValueCounts: initialCounts,
			ActiveFilters:     facets.Selection{},
			Loading:           true,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	for i, ds := range datasets {
		if _, dup := s.byName[ds.Name]; !dup {
			s.byName[ds.Name] = i
		}
	}

	s.logger.Debug("catalog store created", "datasets", len(datasets), "countries", len(countryNames))

	return s, nil
}

// Snapshot returns the current state.
func (s *Store) Snapshot() (State, error) {
	if err := s.ready(); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return State{}, ErrClosed
	}

	return s.state, nil
}

// Lookup returns the dataset with the given name. A closed store finds nothing.
func (s *Store) Lookup(name string) (models.Dataset, bool) {
	if s.ready() != nil {
		return models.Dataset{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.Dataset{}, false
	}

	i, ok := s.byName[name]
	if !ok {
		return models.Dataset{}, false
	}

	return s.state.Datasets[i], true
}

// SetFilters replaces the active filters and recomputes the filtered
// datasets and facet counts within the current search scope.
func (s *Store) SetFilters(ctx context.Context, sel facets.Selection) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := sel.Validate(); err != nil {
		return err
	}

	sel = sel.Clone()

	return s.submit(ctx, func(r *request) { r.filters = sel })
}

// SetSearch replaces the search value. Values of SearchThreshold runes or
// fewer disable search. Longer values build the search index on first use and
// narrow the datasets to those matching the value, before filters are applied.
func (s *Store) SetSearch(ctx context.Context, value string) error {
	if err := s.ready(); err != nil {
		return err
	}

	return s.submit(ctx, func(r *request) { r.search = value })
}

// Close detaches all subscriptions. Later mutations and snapshots fail with ErrClosed.
func (s *Store) Close() error {
	if err := s.ready(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	for _, sub := range s.listeners {
		sub.detached.Store(true)
	}

	s.listeners = nil

	return nil
}

func (s *Store) submit(ctx context.Context, mutate func(*request)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	s.seq++
	token := s.seq
	mutate(&s.wanted)
	req := s.wanted
	idx := s.index
	base := s.state.Datasets
	s.mu.Unlock()

	if searchActive(req.search) && idx == nil {
		var err error
		if idx, err = s.awaitIndex(ctx); err != nil {
			return err
		}
	}

	if searchActive(req.search) {
		base = idx.Search(req.search)
	}

	filtered := facets.Apply(base, req.filters)
	counts := s.engine.Compute(filtered)

	s.mu.Lock()

	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case token != s.seq:
		s.mu.Unlock()
		s.logger.Debug("discarding stale catalog update", "token", token, "latest", s.latestToken())

		return ErrSuperseded
	case ctx.Err() != nil:
		s.mu.Unlock()
		return ctx.Err()
	}

	s.state.ActiveFilters = req.filters
	s.state.SearchValue = req.search
	s.state.FilteredDatasets = filtered
	s.state.FilterValueCounts = counts
	s.state.SearchIndex = s.index
	s.state.Loading = false
	s.state.Version++

	state := s.state
	listeners := append([]*Subscription(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("catalog view updated",
		"version", state.Version,
		"search", state.SearchValue,
		"filters", state.ActiveFilterCount(),
		"results", state.ActiveCount(),
	)

	notify(state, listeners)

	return nil
}

// awaitIndex returns the search index, building it once in the background.
// Concurrent callers share one build; a cancelled caller stops waiting but
// the build still completes and is cached.
func (s *Store) awaitIndex(ctx context.Context) (*search.Index, error) {
	ch := s.builds.DoChan("index", func() (any, error) {
		s.mu.Lock()
		if s.index != nil {
			idx := s.index
			s.mu.Unlock()

			return idx, nil
		}
		datasets := s.state.Datasets
		s.mu.Unlock()

		idx := s.buildIndex(datasets)
		if idx == nil {
			return nil, ErrNoIndex
		}

		s.mu.Lock()
		s.index = idx
		s.mu.Unlock()

		s.logger.Debug("search index built", "datasets", idx.Len())

		return idx, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*search.Index), nil
	}
}

func (s *Store) latestToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seq
}

func (s *Store) ready() error {
	if s == nil || s.engine == nil {
		return ErrNotInitialized
	}

	return nil
}

func searchActive(value string) bool {
	return utf8.RuneCountInString(value) > SearchThreshold
}
