package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, dir string, ignore ...string) (changes, removals chan string) {
	t.Helper()
	changes = make(chan string, 16)
	removals = make(chan string, 16)

	w, err := New(Config{
		VaultPath:     dir,
		Ignore:        ignore,
		DebounceDelay: 20 * time.Millisecond,
		OnChange:      func(rel string) { changes <- rel },
		OnRemove:      func(rel string) { removals <- rel },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)
	return changes, removals
}

func expect(t *testing.T, ch chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without vault path")
	}
	if _, err := New(Config{VaultPath: t.TempDir()}); err == nil {
		t.Error("expected error without callbacks")
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "notes"), 0755); err != nil {
		t.Fatal(err)
	}
	changes, removals := startWatcher(t, dir)

	path := filepath.Join(dir, "notes", "a.md")
	if err := os.WriteFile(path, []byte("# A\n"), 0644); err != nil {
		t.Fatal(err)
	}
	expect(t, changes, "notes/a.md")

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	expect(t, removals, "notes/a.md")
}

func TestWatcherIgnores(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{".git", "archive"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	changes, _ := startWatcher(t, dir, "archive")

	os.WriteFile(filepath.Join(dir, ".git", "x.md"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "archive", "y.md"), []byte("y"), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("z"), 0644)
	os.WriteFile(filepath.Join(dir, "kept.md"), []byte("k"), 0644)

	// kept.md is written last; anything reported before it was ignored wrongly.
	select {
	case got := <-changes:
		if got != "kept.md" {
			t.Fatalf("unexpected change %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for kept.md")
	}
}

func TestShouldIgnore(t *testing.T) {
	w, err := New(Config{
		VaultPath: "/vault",
		Ignore:    []string{"drafts/old"},
		OnChange:  func(string) {},
		OnRemove:  func(string) {},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]bool{
		"/vault/a.md":               false,
		"/vault/.git/a.md":          true,
		"/vault/sub/node_modules/x": true,
		"/vault/drafts/old/a.md":    true,
		"/vault/drafts/new/a.md":    false,
		"/elsewhere/a.md":           true,
	}
	for p, want := range tests {
		if got := w.shouldIgnore(filepath.FromSlash(p)); got != want {
			t.Errorf("shouldIgnore(%s) = %v, want %v", p, got, want)
		}
	}
}

func TestNoCallbacksAfterStartReturns(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	w, err := New(Config{
		VaultPath:     dir,
		DebounceDelay: 20 * time.Millisecond,
		OnChange:      func(string) { calls.Add(1) },
		OnRemove:      func(string) { calls.Add(1) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("# A\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	cancel()
	<-done

	after := calls.Load()
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != after {
		t.Fatalf("callbacks ran after Start returned: %d then %d", after, got)
	}
}
