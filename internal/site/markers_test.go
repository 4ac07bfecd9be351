package site

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starford/binsite/internal/models"
)

func TestSubstitute_AllMarkers(t *testing.T) {
	doc := "<ul>\n<!-- TO REPLACE -->\n</ul><p>short_hash / long_hash</p>"
	c := models.Commit{Long: "abc1234def", Short: "abc1234"}

	got, counts := Substitute(doc, models.DefaultMarkers(), "LINKS", c)

	assert.Equal(t, "<ul>\nLINKS\n</ul><p>abc1234 / abc1234def</p>", got)
	assert.Equal(t, Counts{Links: 1, ShortHash: 1, LongHash: 1}, counts)
}

func TestSubstitute_RepeatedMarkers(t *testing.T) {
	doc := "short_hash short_hash long_hash"
	got, counts := Substitute(doc, models.DefaultMarkers(), "", models.Commit{Long: "L", Short: "S"})
	assert.Equal(t, "S S L", got)
	assert.Equal(t, 2, counts.ShortHash)
	assert.Equal(t, 0, counts.Links)
}

func TestSubstitute_InsertedTextNotRescanned(t *testing.T) {
	// An artifact literally named short_hash must survive as-is.
	doc := "<!-- TO REPLACE --> short_hash"
	got, _ := Substitute(doc, models.DefaultMarkers(), "short_hash", models.Commit{Long: "L", Short: "S"})
	assert.Equal(t, "short_hash S", got)
}

func TestSubstitute_NoMarkers(t *testing.T) {
	doc := "<html>nothing to do</html>"
	got, counts := Substitute(doc, models.DefaultMarkers(), "x", models.Commit{Long: "L", Short: "S"})
	assert.Equal(t, doc, got)
	assert.Equal(t, Counts{}, counts)
}

func TestSubstitute_EmptyLinks(t *testing.T) {
	doc := "a<!-- TO REPLACE -->b"
	got, _ := Substitute(doc, models.DefaultMarkers(), "", models.Commit{})
	assert.Equal(t, "ab", got)
}
