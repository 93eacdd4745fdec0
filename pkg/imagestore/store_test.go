package imagestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDirResolve(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	if _, ok := d.Resolve("sv1-025"); ok {
		t.Fatalf("missing image must resolve to false")
	}
	if err := os.WriteFile(filepath.Join(d.Base(), "sv1-025.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	path, ok := d.Resolve("sv1-025")
	if !ok || path != filepath.Join(d.Base(), "sv1-025.png") {
		t.Fatalf("expected hit got %q ok=%v", path, ok)
	}
}

func TestDirSaveThenResolve(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	name, err := d.Save("base1-4", strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if name != "base1-4.png" {
		t.Fatalf("unexpected stored name %q", name)
	}
	path, ok := d.Resolve("base1-4")
	if !ok {
		t.Fatalf("saved image must resolve")
	}
	body, err := os.ReadFile(path)
	if err != nil || string(body) != "image-bytes" {
		t.Fatalf("stored content mismatch: %q err=%v", body, err)
	}
	if !d.Has("base1-4") || d.Has("base1-5") {
		t.Fatalf("Has out of sync with Resolve")
	}
}

func TestWatchedSelfHealsOnMiss(t *testing.T) {
	w, err := NewWatched(t.TempDir())
	if err != nil {
		t.Fatalf("new watched: %v", err)
	}
	defer w.Close()

	if w.Count() != 0 {
		t.Fatalf("expected empty index got %d", w.Count())
	}
	// Bypass Save so no event-friendly rename happens first.
	if err := os.WriteFile(filepath.Join(w.Base(), "sv1-025.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, ok := w.Resolve("sv1-025"); !ok {
		t.Fatalf("miss must fall back to disk")
	}
	if w.Count() != 1 {
		t.Fatalf("resolve must repair the index, count=%d", w.Count())
	}
}

func TestWatchedFollowsDirectoryEvents(t *testing.T) {
	w, err := NewWatched(t.TempDir())
	if err != nil {
		t.Fatalf("new watched: %v", err)
	}
	defer w.Close()

	target := filepath.Join(w.Base(), "sv2-001.png")
	if err := os.WriteFile(target, []byte("png"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	waitForCount(t, w, 1)

	if err := os.Remove(target); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}
	waitForCount(t, w, 0)
}

func waitForCount(t *testing.T, w *Watched, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if w.Count() == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("index never reached count %d (at %d)", want, w.Count())
}

func TestRescanPicksUpExisting(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "a-1.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	w, err := NewWatched(base)
	if err != nil {
		t.Fatalf("new watched: %v", err)
	}
	defer w.Close()
	if w.Count() != 1 {
		t.Fatalf("initial scan should index only pngs, count=%d", w.Count())
	}
}
