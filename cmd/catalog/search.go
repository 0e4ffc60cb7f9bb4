package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"datacatalog/internal/facets"
	"datacatalog/internal/formatter"
	"datacatalog/internal/store"

	"github.com/spf13/cobra"
)

// ErrInvalidFilter is returned for --filter values not of the form field=value.
var ErrInvalidFilter = errors.New("filter must be field=value")

func newSearchCmd(a *app) *cobra.Command {
	var (
		query   string
		filters []string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter and search the catalog",
		Long: `Filter and search the catalog.

Filters on different fields must all match; repeated filters on the same
field match any of their values. Queries of three characters or fewer are
ignored.`,
		Example: `  catalog search --query sanctions --filter frequency=daily --filter countries=us`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := parseFilters(filters)
			if err != nil {
				return err
			}

			cat, err := a.loadCatalog(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			sub, err := cat.store.Subscribe(func(st store.State) {
				fmt.Fprintf(cmd.ErrOrStderr(), "🔎 %d of %d datasets\n", st.ActiveCount(), st.TotalCount())
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			ctx := cmd.Context()

			if err := cat.store.SetSearch(ctx, query); err != nil {
				return err
			}

			if err := cat.store.SetFilters(ctx, sel); err != nil {
				return err
			}

			state, err := sub.Snapshot()
			if err != nil {
				return err
			}

			if asJSON {
				return writeResultsJSON(cmd, state, limit)
			}

			opts := formatter.DefaultReportOptions()
			opts.Title = "Search results"
			opts.MaxDatasets = limit

			fmt.Fprintln(cmd.OutOrStdout(), formatter.CatalogReport(state, opts))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&query, "query", "q", "", "search text (title, publisher, maintainer)")
	flags.StringArrayVarP(&filters, "filter", "f", nil, "facet filter as field=value (repeatable)")
	flags.IntVar(&limit, "limit", 25, "maximum number of datasets to list (0 for all)")
	flags.BoolVar(&asJSON, "json", false, "print results as JSON")

	return cmd
}

// parseFilters turns field=value pairs into a selection. Repeated fields
// accumulate values in flag order.
func parseFilters(pairs []string) (facets.Selection, error) {
	sel := facets.Selection{}

	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)

		if !ok || field == "" || value == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, pair)
		}

		sel[facets.Field(field)] = append(sel[facets.Field(field)], value)
	}

	if err := sel.Validate(); err != nil {
		return nil, err
	}

	return sel, nil
}

type searchResult struct {
	Total    int                `json:"total"`
	Matched  int                `json:"matched"`
	Search   string             `json:"search,omitempty"`
	Filters  facets.Selection   `json:"filters,omitempty"`
	Datasets []string           `json:"datasets"`
	Counts   facets.ValueCounts `json:"counts"`
}

func writeResultsJSON(cmd *cobra.Command, state store.State, limit int) error {
	res := searchResult{
		Total:    state.TotalCount(),
		Matched:  state.ActiveCount(),
		Filters:  state.ActiveFilters,
		Datasets: make([]string, 0, state.ActiveCount()),
		Counts:   state.FilterValueCounts,
	}

	if state.SearchActive() {
		res.Search = state.SearchValue
	}

	for i, ds := range state.FilteredDatasets {
		if limit > 0 && i >= limit {
			break
		}

		res.Datasets = append(res.Datasets, ds.Name)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}
