// Package revision resolves the commit a site is generated from using
// go-git, so no git executable is needed at build time.
package revision

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/starford/binsite/internal/apperr"
	"github.com/starford/binsite/internal/models"
)

// DefaultShortLength matches git's default abbreviation length.
const DefaultShortLength = 7

// Resolver returns the current commit of a working copy.
type Resolver interface {
	Resolve(ctx context.Context) (models.Commit, error)
}

// Repository resolves HEAD of a git repository opened from disk.
type Repository struct {
	repo     *git.Repository
	path     string
	shortLen int
}

// Open opens the repository containing path. Parent directories are searched
// for .git the same way `git rev-parse` does.
func Open(path string, shortLen int) (*Repository, error) {
	if shortLen <= 0 {
		shortLen = DefaultShortLength
	}
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("revision: open repository %s: %w: %w", path, apperr.ErrRevision, err)
	}
	return &Repository{repo: repo, path: path, shortLen: shortLen}, nil
}

// Resolve reads HEAD and abbreviates it to the shortest prefix that is
// unique among the repository's objects and at least shortLen long.
func (r *Repository) Resolve(ctx context.Context) (models.Commit, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return models.Commit{}, fmt.Errorf("revision: resolve HEAD in %s: %w: %w", r.path, apperr.ErrRevision, err)
	}
	long := ref.Hash().String()

	n, err := r.uniquePrefixLen(ctx, ref.Hash())
	if err != nil {
		return models.Commit{}, fmt.Errorf("revision: abbreviate %s: %w: %w", long, apperr.ErrRevision, err)
	}

	return models.Commit{
		Long:  strings.TrimSpace(long),
		Short: strings.TrimSpace(long[:n]),
	}, nil
}

// uniquePrefixLen walks every object and tracks the longest prefix head
// shares with any other object id.
func (r *Repository) uniquePrefixLen(ctx context.Context, head plumbing.Hash) (int, error) {
	iter, err := r.repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	want := head.String()
	shared := 0
	count := 0
	err = iter.ForEach(func(obj plumbing.EncodedObject) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
		h := obj.Hash()
		if h == head {
			return nil
		}
		if n := commonPrefix(want, h.String()); n > shared {
			shared = n
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return 0, err
	}
	return AbbrevLen(shared, max(r.shortLen, AutoMinLen(count)), len(want)), nil
}

// AutoMinLen is git's core.abbrev=auto minimum for a repository holding
// count objects: enough hex digits to cover twice the bits of count, and
// never fewer than DefaultShortLength.
func AutoMinLen(count int) int {
	if count <= 0 {
		return DefaultShortLength
	}
	n := (bits.Len(uint(count)) + 1) / 2
	return max(n, DefaultShortLength)
}

// AbbrevLen returns the abbreviation length for a hash of total length that
// shares shared leading characters with its closest neighbour.
func AbbrevLen(shared, minLen, total int) int {
	n := shared + 1
	if n < minLen {
		n = minLen
	}
	if n > total {
		n = total
	}
	return n
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// WatchPaths returns the files that change when HEAD moves: HEAD itself,
// the branch ref it points to and packed-refs. Repositories not backed by a
// .git directory on disk return nil.
func (r *Repository) WatchPaths() []string {
	fsStore, ok := r.repo.Storer.(*filesystem.Storage)
	if !ok {
		return nil
	}
	gitDir := fsStore.Filesystem().Root()
	out := []string{
		filepath.Join(gitDir, "HEAD"),
		filepath.Join(gitDir, "packed-refs"),
	}
	ref, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err == nil && ref.Type() == plumbing.SymbolicReference {
		out = append(out, filepath.Join(gitDir, filepath.FromSlash(ref.Target().String())))
	}
	return out
}
