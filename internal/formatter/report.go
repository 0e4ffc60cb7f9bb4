package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"datacatalog/internal/facets"
	"datacatalog/internal/store"
	"datacatalog/pkg/metadata"
	"datacatalog/pkg/utils"
)

// ReportOptions controls CatalogReport output.
type ReportOptions struct {
	Title string
	// MaxTitleWidth truncates dataset titles to this many display columns. Zero disables truncation.
	MaxTitleWidth int
	// MaxDatasets limits the dataset table. Zero lists every dataset.
	MaxDatasets int
	GeneratedAt time.Time
}

// DefaultReportOptions returns the options used by the export command.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Title:         "Dataset catalog",
		MaxTitleWidth: 60,
		GeneratedAt:   time.Now(),
	}
}

var facetTitles = map[facets.Field]string{
	facets.FieldContentType: "Content type",
	facets.FieldFrequency:   "Update frequency",
	facets.FieldCountries:   "Countries",
}

// CatalogReport renders the filtered view of state as a signed Markdown
// document: a summary, one table per facet and the dataset list.
func CatalogReport(state store.State, opts ReportOptions) string {
	strs := utils.NewStringHelper()

	var lines []string

	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# %s", opts.Title)
	add("")
	add("Showing %d of %d datasets.", state.ActiveCount(), state.TotalCount())

	if state.SearchActive() {
		add("")
		add("Search: `%s`", state.SearchValue)
	}

	if fields := state.ActiveFilters.Fields(); len(fields) > 0 {
		add("")
		add("Filters:")

		for _, field := range fields {
			add("- %s: %s", field, strings.Join(state.ActiveFilters[field], ", "))
		}
	}

	for _, field := range []facets.Field{facets.FieldContentType, facets.FieldFrequency, facets.FieldCountries} {
		counts := state.FilterValueCounts.Get(field)
		if len(counts) == 0 {
			continue
		}

		add("")
		add("## %s", facetTitles[field])
		add("")
		add("| Value | Datasets |")
		add("| --- | --- |")

		for _, vc := range counts {
			label := vc.Value
			if field == facets.FieldCountries {
				label = fmt.Sprintf("%s (%s)", countryLabel(state, vc), vc.Value)
			}

			add("| %s | %d |", strs.EscapeTableCell(label), vc.Count)
		}
	}

	if tags := state.FilterValueCounts.Tags; len(tags) > 0 {
		values := make([]string, 0, len(tags))
		for _, vc := range tags {
			values = append(values, "`"+vc.Value+"`")
		}

		add("")
		add("## Tags")
		add("")
		add("%s", strings.Join(values, " "))
	}

	add("")
	add("## Datasets")
	add("")
	add("| Name | Title | Type | Updated | Countries |")
	add("| --- | --- | --- | --- | --- |")

	listed := state.FilteredDatasets
	if opts.MaxDatasets > 0 && len(listed) > opts.MaxDatasets {
		listed = listed[:opts.MaxDatasets]
	}

	for _, ds := range listed {
		title := ds.Title
		if opts.MaxTitleWidth > 0 {
			title = strs.TruncateString(title, opts.MaxTitleWidth)
		}

		updated := "-"
		if ds.UpdatedAt != nil {
			updated = *ds.UpdatedAt
		}

		add("| %s | %s | %s | %s | %s |",
			strs.EscapeTableCell(ds.Name),
			strs.EscapeTableCell(title),
			strs.EscapeTableCell(ds.ContentType),
			strs.EscapeTableCell(updated),
			strconv.Itoa(len(ds.Countries)),
		)
	}

	if hidden := len(state.FilteredDatasets) - len(listed); hidden > 0 {
		add("")
		add("… and %d more.", hidden)
	}

	content := strings.Join(alignTables(lines), "\n")

	return metadata.Sign(content, state.ActiveCount(), opts.GeneratedAt)
}

func countryLabel(state store.State, vc facets.ValueCount) string {
	if vc.Label != "" {
		return vc.Label
	}

	return state.CountryNames.Label(vc.Value)
}
