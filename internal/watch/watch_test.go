package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"flowscanner/internal/targets"
)

func startWatcher(t *testing.T, root string) (*atomic.Int32, func()) {
	t.Helper()
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		Root:     root,
		Debounce: 20 * time.Millisecond,
		Relevant: func(p string) bool { return targets.IsFlowFile(filepath.Base(p)) },
	}
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()
	// Let the watcher register its directories.
	time.Sleep(100 * time.Millisecond)

	return &calls, func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("Run did not stop after cancel")
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_TriggersOnFlowChange(t *testing.T) {
	root := t.TempDir()
	calls, stop := startWatcher(t, root)
	defer stop()

	if err := os.WriteFile(filepath.Join(root, "Lead.flow-meta.xml"), []byte("<Flow/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	root := t.TempDir()
	calls, stop := startWatcher(t, root)
	defer stop()

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected no trigger, got %d", n)
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	calls, stop := startWatcher(t, root)
	defer stop()

	dir := filepath.Join(root, "force-app", "flows")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a chance to add the new directories.
	time.Sleep(150 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "Case.flow-meta.xml"), []byte("<Flow/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := &Watcher{Root: filepath.Join(t.TempDir(), "missing")}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// A missing root watches nothing; Run still exits cleanly on cancel.
	if err := w.Run(ctx, func(context.Context) {}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
