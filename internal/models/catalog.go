package models

// RawCatalog is the catalog document as published by the upstream catalog source.
type RawCatalog struct {
	Name        string       `json:"name,omitempty"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	UpdatedAt   *string      `json:"updated_at,omitempty"`
	Datasets    []RawDataset `json:"datasets"`
}

// RawDataset is one dataset record of the upstream catalog. Every field is optional.
type RawDataset struct {
	Name        string      `json:"name"`
	Title       *string     `json:"title,omitempty"`
	Summary     *string     `json:"summary,omitempty"`
	Category    *string     `json:"category,omitempty"`
	ContentType *string     `json:"content_type,omitempty"`
	Coverage    *Coverage   `json:"coverage,omitempty"`
	Maintainer  *Maintainer `json:"maintainer,omitempty"`
	Publisher   *Publisher  `json:"publisher,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	UpdatedAt   *string     `json:"updated_at,omitempty"`
	AlephURL    *string     `json:"aleph_url,omitempty"`
	EntityCount *int        `json:"entity_count,omitempty"`
	Resources   []Resource  `json:"resources,omitempty"`
	Things      *Breakdown  `json:"things,omitempty"`
	Intervals   *Breakdown  `json:"intervals,omitempty"`
}

// Coverage describes the temporal and geographic scope of a dataset.
type Coverage struct {
	Frequency string   `json:"frequency,omitempty"`
	Start     *string  `json:"start,omitempty"`
	End       *string  `json:"end,omitempty"`
	Countries []string `json:"countries,omitempty"`
}

// Breakdown groups the per-schema and per-country entity counts of a dataset.
// Datasets carry one for "things" and one for "intervals".
type Breakdown struct {
	Total     int       `json:"total,omitempty"`
	Countries []Country `json:"countries,omitempty"`
	Schemata  []Schema  `json:"schemata,omitempty"`
}

// Country is a country code with its entity count.
type Country struct {
	Code  string  `json:"code"`
	Label *string `json:"label,omitempty"`
	Count int     `json:"count"`
}

// Schema is an entity schema with its entity count.
type Schema struct {
	Name   string `json:"name"`
	Label  string `json:"label,omitempty"`
	Plural string `json:"plural,omitempty"`
	Count  int    `json:"count"`
}

// Publisher is the organisation that publishes the source data.
type Publisher struct {
	Name        string  `json:"name"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Official    bool    `json:"official,omitempty"`
	Country     *string `json:"country,omitempty"`
}

// Maintainer is the organisation that maintains the dataset.
type Maintainer struct {
	Name        string  `json:"name"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Resource is a downloadable file of a dataset.
type Resource struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Title         *string `json:"title,omitempty"`
	MimeType      *string `json:"mime_type,omitempty"`
	MimeTypeLabel *string `json:"mime_type_label,omitempty"`
	Size          *int64  `json:"size,omitempty"`
}
