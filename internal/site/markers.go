package site

import (
	"strings"

	"github.com/starford/binsite/internal/models"
)

// Counts reports how many times each marker was replaced.
type Counts struct {
	Links     int `json:"links"`
	ShortHash int `json:"short_hash"`
	LongHash  int `json:"long_hash"`
}

// Substitute replaces the links marker with links, then the short-hash
// marker with the short hash, then the long-hash marker with the long hash.
// The document is scanned once, so text inserted for one marker is never
// rescanned for another.
func Substitute(doc string, m models.Markers, links string, c models.Commit) (string, Counts) {
	counts := Counts{
		Links:     count(doc, m.Links),
		ShortHash: count(doc, m.ShortHash),
		LongHash:  count(doc, m.LongHash),
	}

	var pairs []string
	for _, p := range [][2]string{
		{m.Links, links},
		{m.ShortHash, c.Short},
		{m.LongHash, c.Long},
	} {
		if p[0] != "" {
			pairs = append(pairs, p[0], p[1])
		}
	}
	if len(pairs) == 0 {
		return doc, counts
	}
	return strings.NewReplacer(pairs...).Replace(doc), counts
}

func count(doc, marker string) int {
	if marker == "" {
		return 0
	}
	return strings.Count(doc, marker)
}
