package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/binsite/internal/apperr"
)

func tempSite(t *testing.T, atomicWrite bool) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "bins"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p><!-- TO REPLACE --></p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, err := NewFS(Paths{
		Template: filepath.Join(dir, "index.html"),
		Bins:     filepath.Join(dir, "bins"),
	}, atomicWrite)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func TestReadTemplate(t *testing.T) {
	s, _ := tempSite(t, true)
	got, err := s.ReadTemplate()
	if err != nil {
		t.Fatalf("ReadTemplate: %v", err)
	}
	if string(got) != "<p><!-- TO REPLACE --></p>" {
		t.Errorf("content = %q", got)
	}
}

func TestReadTemplate_Missing(t *testing.T) {
	s, dir := tempSite(t, true)
	_ = os.Remove(filepath.Join(dir, "index.html"))
	_, err := s.ReadTemplate()
	if !errors.Is(err, apperr.ErrMissingResource) {
		t.Errorf("err = %v, want ErrMissingResource", err)
	}
}

func TestListArtifacts_FilesAndDirs(t *testing.T) {
	s, dir := tempSite(t, true)
	_ = os.WriteFile(filepath.Join(dir, "bins", "toolA"), []byte("a"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "bins", "toolB.exe"), []byte("b"), 0o755)
	_ = os.Mkdir(filepath.Join(dir, "bins", "darwin"), 0o755)

	names, err := s.ListArtifacts()
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	sort.Strings(names)
	want := []string{"darwin", "toolA", "toolB.exe"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListArtifacts_Empty(t *testing.T) {
	s, _ := tempSite(t, true)
	names, err := s.ListArtifacts()
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v, want none", names)
	}
}

func TestListArtifacts_MissingDir(t *testing.T) {
	s, dir := tempSite(t, true)
	_ = os.Remove(filepath.Join(dir, "bins"))
	_, err := s.ListArtifacts()
	if !errors.Is(err, apperr.ErrMissingResource) {
		t.Errorf("err = %v, want ErrMissingResource", err)
	}
}

func TestWriteOutput_InPlace(t *testing.T) {
	for _, atomicWrite := range []bool{true, false} {
		s, dir := tempSite(t, atomicWrite)
		if err := s.WriteOutput([]byte("done")); err != nil {
			t.Fatalf("WriteOutput(atomic=%v): %v", atomicWrite, err)
		}
		got, _ := os.ReadFile(filepath.Join(dir, "index.html"))
		if string(got) != "done" {
			t.Errorf("atomic=%v: content = %q", atomicWrite, got)
		}
	}
}

func TestWriteOutput_Truncates(t *testing.T) {
	s, dir := tempSite(t, false)
	if err := s.WriteOutput([]byte("x")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dir, "index.html"))
	if string(got) != "x" {
		t.Errorf("content = %q, want %q", got, "x")
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s, dir := tempSite(t, true)
	if err := s.WriteOutput([]byte("first")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	if err := s.WriteOutput([]byte("second")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	got, _ := s.ReadOutput()
	if string(got) != "second" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".binsite-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestSeparateOutput(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "index.tmpl.html")
	out := filepath.Join(dir, "index.html")
	_ = os.WriteFile(tmpl, []byte("template"), 0o644)

	s, err := NewFS(Paths{Template: tmpl, Bins: dir, Output: out}, true)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if err := s.WriteOutput([]byte("page")); err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}
	if got, _ := os.ReadFile(tmpl); string(got) != "template" {
		t.Errorf("template modified: %q", got)
	}
	if got, _ := os.ReadFile(out); string(got) != "page" {
		t.Errorf("output = %q", got)
	}
}

func TestNewFS_EmptyPaths(t *testing.T) {
	if _, err := NewFS(Paths{Bins: "bins"}, true); err == nil {
		t.Error("expected error for empty template path")
	}
	if _, err := NewFS(Paths{Template: "index.html"}, true); err == nil {
		t.Error("expected error for empty artifacts path")
	}
}

func TestWriteOutput_MissingDirClassified(t *testing.T) {
	for _, atomicWrite := range []bool{true, false} {
		dir := t.TempDir()
		tmpl := filepath.Join(dir, "index.html")
		_ = os.WriteFile(tmpl, []byte("template"), 0o644)
		s, err := NewFS(Paths{Template: tmpl, Bins: dir, Output: filepath.Join(dir, "nope", "out.html")}, atomicWrite)
		if err != nil {
			t.Fatalf("NewFS: %v", err)
		}
		err = s.WriteOutput([]byte("page"))
		if !errors.Is(err, apperr.ErrMissingResource) {
			t.Errorf("atomic=%v: err = %v, want ErrMissingResource", atomicWrite, err)
		}
	}
}

func TestWriteOutput_NewFileMode(t *testing.T) {
	for _, atomicWrite := range []bool{true, false} {
		dir := t.TempDir()
		tmpl := filepath.Join(dir, "index.html")
		out := filepath.Join(dir, "out.html")
		_ = os.WriteFile(tmpl, []byte("template"), 0o644)
		s, err := NewFS(Paths{Template: tmpl, Bins: dir, Output: out}, atomicWrite)
		if err != nil {
			t.Fatalf("NewFS: %v", err)
		}
		if err := s.WriteOutput([]byte("page")); err != nil {
			t.Fatalf("atomic=%v: WriteOutput: %v", atomicWrite, err)
		}
		info, err := os.Stat(out)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != 0o644 {
			t.Errorf("atomic=%v: mode = %v, want 0644", atomicWrite, got)
		}
	}
}

func TestWriteOutput_KeepsExistingMode(t *testing.T) {
	for _, atomicWrite := range []bool{true, false} {
		s, dir := tempSite(t, atomicWrite)
		path := filepath.Join(dir, "index.html")
		if err := os.Chmod(path, 0o600); err != nil {
			t.Fatal(err)
		}
		if err := s.WriteOutput([]byte("page")); err != nil {
			t.Fatalf("atomic=%v: WriteOutput: %v", atomicWrite, err)
		}
		info, _ := os.Stat(path)
		if got := info.Mode().Perm(); got != 0o600 {
			t.Errorf("atomic=%v: mode = %v, want 0600", atomicWrite, got)
		}
	}
}
