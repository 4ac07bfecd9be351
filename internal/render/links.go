// Package render turns artifact names into the HTML link fragments listed
// on the download page.
package render

import (
	"fmt"
	"html/template"
	"strings"
)

// DefaultPrefix is the URL path the artifacts are published under.
const DefaultPrefix = "bin/"

const linkTemplate = `            <a href="{{.Href}}" class="link" onmouseover="style='text-decoration:underline'" onmouseout="style='text-decoration:none'"><span style="font-size: x-large;">{{.Name}}</span></a>`

var linkTmpl = template.Must(template.New("link").Parse(linkTemplate))

type link struct {
	Href string
	Name string
}

// Renderer renders link fragments for a fixed URL prefix.
type Renderer struct {
	prefix string
}

// New returns a Renderer. An empty prefix falls back to DefaultPrefix.
func New(prefix string) *Renderer {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Renderer{prefix: prefix}
}

// Fragment renders the anchor for a single artifact name.
func (r *Renderer) Fragment(name string) (string, error) {
	var b strings.Builder
	if err := linkTmpl.Execute(&b, link{Href: r.prefix + name, Name: name}); err != nil {
		return "", fmt.Errorf("render: link for %q: %w", name, err)
	}
	return b.String(), nil
}

// Links renders every name in order and joins the fragments with a newline.
// No names yields the empty string.
func (r *Renderer) Links(names []string) (string, error) {
	fragments := make([]string, 0, len(names))
	for _, name := range names {
		f, err := r.Fragment(name)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, f)
	}
	return strings.Join(fragments, "\n"), nil
}
