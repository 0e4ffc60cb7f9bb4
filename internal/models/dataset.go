// Package models holds the raw catalog records and the normalized datasets built from them.
package models

// Dataset is a normalized, display-ready catalog record.
// Datasets are created once at catalog load time and never mutated afterwards.
type Dataset struct {
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Category    string      `json:"category"`
	ContentType string      `json:"contentType"`
	Frequency   string      `json:"frequency,omitempty"`
	UpdatedAt   *string     `json:"updatedAt"`
	Tags        []string    `json:"tags"`
	Countries   []Country   `json:"countries"`
	EntityTypes []Schema    `json:"entityTypes,omitempty"`
	EntityCount *int        `json:"entityCount,omitempty"`
	AlephURL    *string     `json:"alephUrl,omitempty"`
	Publisher   *Publisher  `json:"publisher,omitempty"`
	Maintainer  *Maintainer `json:"maintainer,omitempty"`
	Resources   []Resource  `json:"resources,omitempty"`

	// CountryCodes indexes Countries by code for constant-time filtering.
	CountryCodes map[string]struct{} `json:"-"`
}

// HasCountry reports whether the dataset covers the given country code.
func (d *Dataset) HasCountry(code string) bool {
	if d.CountryCodes != nil {
		_, ok := d.CountryCodes[code]
		return ok
	}

	for _, c := range d.Countries {
		if c.Code == code {
			return true
		}
	}

	return false
}

// PublisherName returns the publisher name or an empty string.
func (d *Dataset) PublisherName() string {
	if d.Publisher == nil {
		return ""
	}

	return d.Publisher.Name
}

// MaintainerName returns the maintainer name or an empty string.
func (d *Dataset) MaintainerName() string {
	if d.Maintainer == nil {
		return ""
	}

	return d.Maintainer.Name
}

// CountryNames maps country codes to display labels.
type CountryNames map[string]string

// Label returns the display label for code, or the code itself when unknown.
func (n CountryNames) Label(code string) string {
	if label, ok := n[code]; ok && label != "" {
		return label
	}

	return code
}
