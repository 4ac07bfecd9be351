package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/binsite/internal/models"
	"github.com/starford/binsite/internal/render"
	"github.com/starford/binsite/internal/revision"
	"github.com/starford/binsite/internal/watch"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Site       SiteConfig        `yaml:"site"`
	Markers    MarkersConfig     `yaml:"markers"`
	Repository RepositoryConfig  `yaml:"repository"`
	Watch      WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Markers.Validate(); err != nil {
		return fmt.Errorf("markers: %w", err)
	}
	if err := c.Repository.Validate(); err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if c.Watch.Enabled && c.Site.InPlace() {
		return errors.New("watch: site.output must differ from site.template, otherwise the first run consumes the markers")
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SiteConfig locates the template, the artifacts and the generated page.
type SiteConfig struct {
	Template string `yaml:"template"`
	Bins     string `yaml:"bins"`
	// Output defaults to Template, which is then rewritten in place.
	Output      string `yaml:"output"`
	LinkPrefix  string `yaml:"link_prefix"`
	AtomicWrite bool   `yaml:"atomic_write"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Template, validation.Required),
		validation.Field(&c.Bins, validation.Required),
	)
}

// OutputPath returns the path the page is written to.
func (c *SiteConfig) OutputPath() string {
	if c.Output == "" {
		return c.Template
	}
	return c.Output
}

// InPlace reports whether the template is overwritten by the output.
func (c *SiteConfig) InPlace() bool {
	if c.Output == "" {
		return true
	}
	a, errA := filepath.Abs(c.Template)
	b, errB := filepath.Abs(c.Output)
	if errA != nil || errB != nil {
		return filepath.Clean(c.Template) == filepath.Clean(c.Output)
	}
	return a == b
}

// MarkersConfig holds the placeholder tokens looked for in the template.
type MarkersConfig struct {
	models.Markers `yaml:",inline"`
}

// Validate validates the markers. Markers must be non-empty and none may
// contain another, so each occurrence maps to exactly one substitution.
func (c *MarkersConfig) Validate() error {
	if err := validation.ValidateStruct(&c.Markers,
		validation.Field(&c.Markers.Links, validation.Required),
		validation.Field(&c.Markers.ShortHash, validation.Required),
		validation.Field(&c.Markers.LongHash, validation.Required),
	); err != nil {
		return err
	}
	all := []string{c.Links, c.ShortHash, c.LongHash}
	for i, a := range all {
		for j, b := range all {
			if i != j && strings.Contains(a, b) {
				return fmt.Errorf("marker %q overlaps marker %q", a, b)
			}
		}
	}
	return nil
}

// RepositoryConfig locates the git working copy the commit is read from.
type RepositoryConfig struct {
	Path        string `yaml:"path"`
	ShortLength int    `yaml:"short_length"`
}

// Validate validates the repository configuration.
func (c *RepositoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.ShortLength, validation.Required, validation.Min(4), validation.Max(40)),
	)
}

// WatchConfig controls regeneration on change.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with values that reproduce the
// layout of the site directory: site/index.html rewritten in place from
// site/bins and the repository in the working directory.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Site: SiteConfig{
			Template:    "site/index.html",
			Bins:        "site/bins",
			LinkPrefix:  render.DefaultPrefix,
			AtomicWrite: true,
		},
		Markers: MarkersConfig{Markers: models.DefaultMarkers()},
		Repository: RepositoryConfig{
			Path:        ".",
			ShortLength: revision.DefaultShortLength,
		},
		Watch: WatchConfig{
			Debounce: watch.DefaultDebounce,
		},
	}
}
