package main

import (
	"encoding/json"
	"fmt"

	"datacatalog/internal/facets"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the facet counts of the whole catalog as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := a.loadCatalog(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			state, err := cat.store.Snapshot()
			if err != nil {
				return err
			}

			var v any = state.FilterValueCounts

			if field != "" {
				f := facets.Field(field)
				if !f.Valid() {
					return fmt.Errorf("%w: %q", facets.ErrUnknownField, field)
				}

				v = state.FilterValueCounts.Get(f)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(v)
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "only print one facet (contentType, countries, frequency, tags)")

	return cmd
}
