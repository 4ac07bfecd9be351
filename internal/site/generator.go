// Package site regenerates the download page: it lists the artifacts,
// renders a link for each, stamps the current commit into the template and
// writes the result.
package site

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/binsite/internal/checksum"
	"github.com/starford/binsite/internal/models"
	"github.com/starford/binsite/internal/render"
	"github.com/starford/binsite/internal/revision"
	"github.com/starford/binsite/internal/storage"
)

// Result describes one regeneration.
type Result struct {
	Artifacts []string      `json:"artifacts"`
	Commit    models.Commit `json:"commit"`
	Counts    Counts        `json:"counts"`
	Document  []byte        `json:"-"`
	Checksum  string        `json:"checksum"`
	// Unchanged is set when the output already held the same bytes and the
	// write was skipped.
	Unchanged bool `json:"unchanged"`
}

// Generator regenerates a page from a template.
type Generator struct {
	store    storage.Provider
	resolver revision.Resolver
	renderer *render.Renderer
	markers  models.Markers
	inPlace  bool
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithMarkers overrides the placeholder tokens.
func WithMarkers(m models.Markers) Option {
	return func(g *Generator) { g.markers = m }
}

// WithRenderer overrides the link renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithInPlace marks the output as the template itself. The write is then
// never skipped, since the template is the source of the markers.
func WithInPlace(inPlace bool) Option {
	return func(g *Generator) { g.inPlace = inPlace }
}

// NewGenerator creates a Generator reading and writing through store and
// stamping the commit returned by resolver.
func NewGenerator(store storage.Provider, resolver revision.Resolver, opts ...Option) *Generator {
	g := &Generator{
		store:    store,
		resolver: resolver,
		renderer: render.New(render.DefaultPrefix),
		markers:  models.DefaultMarkers(),
		inPlace:  true,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render builds the substituted document without writing it.
func (g *Generator) Render(ctx context.Context) (*Result, error) {
	tmpl, err := g.store.ReadTemplate()
	if err != nil {
		return nil, err
	}

	names, err := g.store.ListArtifacts()
	if err != nil {
		return nil, err
	}

	links, err := g.renderer.Links(names)
	if err != nil {
		return nil, err
	}

	commit, err := g.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	doc, counts := Substitute(string(tmpl), g.markers, links, commit)
	g.warnMissing(counts)

	out := []byte(doc)
	return &Result{
		Artifacts: names,
		Commit:    commit,
		Counts:    counts,
		Document:  out,
		Checksum:  checksum.Sum(out),
	}, nil
}

// Regenerate renders the document and overwrites the output with it. Nothing
// is written if any step before the write fails.
func (g *Generator) Regenerate(ctx context.Context) (*Result, error) {
	res, err := g.Render(ctx)
	if err != nil {
		return nil, err
	}

	if !g.inPlace {
		if prev, err := g.store.ReadOutput(); err == nil && checksum.Matches(prev, res.Checksum) {
			res.Unchanged = true
			g.logger.Debug("site: output unchanged, skipping write",
				slog.String("checksum", res.Checksum))
			return res, nil
		}
	}

	if err := g.store.WriteOutput(res.Document); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	g.logger.Info("site: regenerated",
		slog.Int("artifacts", len(res.Artifacts)),
		slog.String("commit", res.Commit.Short),
		slog.String("checksum", res.Checksum))
	return res, nil
}

func (g *Generator) warnMissing(c Counts) {
	for _, m := range []struct {
		marker string
		n      int
	}{
		{g.markers.Links, c.Links},
		{g.markers.ShortHash, c.ShortHash},
		{g.markers.LongHash, c.LongHash},
	} {
		if m.n == 0 {
			g.logger.Warn("site: marker not found in template", slog.String("marker", m.marker))
		}
	}
}
