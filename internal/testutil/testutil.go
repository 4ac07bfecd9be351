// Package testutil provides shared test helpers for setting up sites and
// repositories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Site is a temporary site layout: a template file and an artifacts dir.
type Site struct {
	Root     string
	Template string
	Bins     string
}

// TestSite creates site/index.html holding template and an empty site/bins
// directory populated with the given artifact files.
func TestSite(t *testing.T, template string, artifacts ...string) Site {
	t.Helper()
	root := t.TempDir()
	s := Site{
		Root:     root,
		Template: filepath.Join(root, "site", "index.html"),
		Bins:     filepath.Join(root, "site", "bins"),
	}
	if err := os.MkdirAll(s.Bins, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Template, []byte(template), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range artifacts {
		if err := os.WriteFile(filepath.Join(s.Bins, name), []byte(name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// TestRepo initialises a git repository at dir with a single commit and
// returns the full commit hash.
func TestRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return Commit(t, repo, dir, "README.md", "initial")
}

// Commit writes name under dir, stages it and commits it.
func Commit(t *testing.T, repo *git.Repository, dir, name, msg string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(msg), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := w.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	hash, err := w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Unix(1700000000, 0),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash.String()
}
