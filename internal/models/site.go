// Package models defines the domain types shared across binsite packages.
package models

// Commit identifies the revision a page was generated from.
type Commit struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

// Markers are the literal placeholder tokens substituted in the template.
type Markers struct {
	Links     string `yaml:"links"`
	ShortHash string `yaml:"short_hash"`
	LongHash  string `yaml:"long_hash"`
}

// DefaultMarkers returns the placeholder tokens used by the site template.
func DefaultMarkers() Markers {
	return Markers{
		Links:     "<!-- TO REPLACE -->",
		ShortHash: "short_hash",
		LongHash:  "long_hash",
	}
}
