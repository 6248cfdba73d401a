package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	removed []string
	roots   map[string]string
}

func newRecorder() *recorder {
	return &recorder{roots: make(map[string]string)}
}

func (r *recorder) onChange(root, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, path)
	r.roots[path] = root
}

func (r *recorder) onRemove(root, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
}

func (r *recorder) snapshot() (changed, removed []string, roots map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roots = make(map[string]string, len(r.roots))
	for k, v := range r.roots {
		roots[k] = v
	}
	return append([]string(nil), r.changed...), append([]string(nil), r.removed...), roots
}

func startWatcher(t *testing.T, roots, exts []string, rec *recorder) *Watcher {
	t.Helper()
	w := New(roots, exts, true, rec.onChange, rec.onRemove,
		WithDebounce(100*time.Millisecond), WithLogger(zap.NewNop()))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_AddRemoveDirectories(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, nil, []string{".txt"}, newRecorder())

	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	if err := w.AddDirectory(dir, false); err != nil {
		t.Fatal(err)
	}
	dirs := w.Directories()
	if len(dirs) != 1 || dirs[0] != filepath.Clean(dir) {
		t.Errorf("Directories() = %v", dirs)
	}

	if err := w.RemoveDirectory(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.Directories()) != 0 {
		t.Errorf("after remove: %v", w.Directories())
	}
}

func TestWatcher_ReportsChangeWithRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := mkdirAll(sub); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, []string{dir}, []string{".txt"}, rec)

	fPath := filepath.Join(sub, "f.txt")
	if err := writeFile(fPath, "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(sub, "skip.bin"), "x"); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, func() bool {
		changed, _, _ := rec.snapshot()
		return len(changed) > 0
	})
	if !ok {
		t.Fatal("expected a change callback")
	}
	changed, _, roots := rec.snapshot()
	for _, p := range changed {
		if strings.HasSuffix(p, "skip.bin") {
			t.Error("skip.bin should be filtered by extension")
		}
	}
	if roots[fPath] != filepath.Clean(dir) {
		t.Errorf("root of %s = %q, want %q", fPath, roots[fPath], dir)
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "gone.txt")
	if err := writeFile(fPath, "bye"); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	startWatcher(t, []string{dir}, []string{".txt"}, rec)

	if err := os.Remove(fPath); err != nil {
		t.Fatal(err)
	}
	ok := waitFor(t, func() bool {
		_, removed, _ := rec.snapshot()
		return len(removed) == 1 && removed[0] == fPath
	})
	if !ok {
		_, removed, _ := rec.snapshot()
		t.Errorf("removed = %v, want [%s]", removed, fPath)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{"txt"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		got := matchExtension(tt.path, tt.extensions)
		if got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		got := inDir(tt.dir, tt.path)
		if got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

func TestWatcher_RootOfPrefersInnermost(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "inner")
	w := New([]string{outer, inner}, nil, true, nil, nil)
	root, ok := w.rootOf(filepath.Join(inner, "a.txt"))
	if !ok || root != inner {
		t.Errorf("rootOf = %q, %v; want %q", root, ok, inner)
	}
	if _, ok := w.rootOf("/elsewhere/a.txt"); ok {
		t.Error("path outside roots should not match")
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(filepath.Join(dir, "a.txt"), "hello"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, "ignore.xyz"), "x"); err != nil {
		t.Fatal(err)
	}
	rec := newRecorder()
	w := startWatcher(t, []string{dir}, []string{".txt"}, rec)
	w.SyncExistingFiles()

	changed, _, roots := rec.snapshot()
	if len(changed) != 1 || !strings.HasSuffix(changed[0], "a.txt") {
		t.Errorf("expected one reported file a.txt, got %v", changed)
	}
	if len(changed) == 1 && roots[changed[0]] != filepath.Clean(dir) {
		t.Errorf("root = %q", roots[changed[0]])
	}
}

func TestWatcher_StartCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "watch", "me")
	startWatcher(t, []string{root}, []string{".txt"}, newRecorder())
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
}

func TestWatcher_NewDirectoryFilesAreReported(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, []string{dir}, []string{".txt", ".md"}, rec)

	nested := filepath.Join(dir, "level1", "level2")
	if err := mkdirAll(nested); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "deep.txt"), "deep content"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(nested, "note.md"), "note"); err != nil {
		t.Fatal(err)
	}

	ok := waitFor(t, func() bool {
		changed, _, _ := rec.snapshot()
		txt, md := false, false
		for _, p := range changed {
			txt = txt || strings.HasSuffix(p, "deep.txt")
			md = md || strings.HasSuffix(p, "note.md")
		}
		return txt && md
	})
	if !ok {
		changed, _, _ := rec.snapshot()
		t.Errorf("expected deep.txt and note.md to be reported, got %v", changed)
	}
}

func mkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
