package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, cfg WatcherConfig) (*Watcher, <-chan []Change) {
	t.Helper()

	watcher := NewWatcher(cfg)
	batches := make(chan []Change, 10)
	watcher.OnChange(func(c []Change) {
		batches <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-watcher.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for watcher")
	}
	return watcher, batches
}

func waitBatch(t *testing.T, batches <-chan []Change) []Change {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return nil
	}
}

// waitChange waits for a batch holding a change for path and returns it.
func waitChange(t *testing.T, batches <-chan []Change, path string) Change {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case batch := <-batches:
			for _, c := range batch {
				if c.Path == path {
					return c
				}
			}
		case <-deadline:
			t.Fatalf("timeout waiting for a change to %s", path)
			return Change{}
		}
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_Basic(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "hello.go")
	writeFile(t, testFile, "package hello")

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{tmpDir},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	writeFile(t, testFile, "package hello\n\nvar X = 1\n")

	batch := waitBatch(t, batches)
	require.Len(t, batch, 1)
	assert.Equal(t, testFile, batch[0].Path)
}

func TestWatcher_NewDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{tmpDir},
		Extensions: []string{".go"},
		Debounce:   50 * time.Millisecond,
	})

	dir := filepath.Join(tmpDir, "api", "v1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	// Give the watcher a moment to follow the new directories.
	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(dir, "users.go")
	writeFile(t, newFile, "package v1")

	waitChange(t, batches, newFile)
}

func TestWatcher_DirectoryMovedIn(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	writeFile(t, filepath.Join(staging, "widgets", "index.go"), "package widgets")

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{root},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	moved := filepath.Join(root, "widgets")
	require.NoError(t, os.Rename(filepath.Join(staging, "widgets"), moved))

	c := waitChange(t, batches, moved)
	assert.Equal(t, ChangeCreate, c.Type)

	// The moved directory is watched from now on.
	file := filepath.Join(moved, "index.go")
	writeFile(t, file, "package widgets\n\nvar X = 1\n")
	waitChange(t, batches, file)
}

func TestWatcher_DirectoryMovedOut(t *testing.T) {
	root := t.TempDir()
	staging := t.TempDir()
	writeFile(t, filepath.Join(root, "widgets", "index.go"), "package widgets")

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{root},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	dir := filepath.Join(root, "widgets")
	require.NoError(t, os.Rename(dir, filepath.Join(staging, "widgets")))

	c := waitChange(t, batches, dir)
	assert.Contains(t, []ChangeType{ChangeRename, ChangeRemove}, c.Type)
}

func TestWatcher_DirectoryRemoved(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "notes.txt"), "x")

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{root},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	dir := filepath.Join(root, "docs")
	require.NoError(t, os.RemoveAll(dir))

	c := waitChange(t, batches, dir)
	assert.Equal(t, ChangeRemove, c.Type)
}

func TestWatcher_EmptyDirectoryIsQuiet(t *testing.T) {
	root := t.TempDir()

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{root},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0o755))

	select {
	case batch := <-batches:
		t.Fatalf("unexpected batch %v", batch)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_FiltersExtensionAndIgnore(t *testing.T) {
	tmpDir := t.TempDir()

	_, batches := startWatcher(t, WatcherConfig{
		Paths:      []string{tmpDir},
		Extensions: []string{".go"},
		Debounce:   20 * time.Millisecond,
	})

	for _, name := range []string{"notes.txt", "hello_test.go"} {
		writeFile(t, filepath.Join(tmpDir, name), "x")
	}
	routeFile := filepath.Join(tmpDir, "route.go")
	writeFile(t, routeFile, "package route")

	for _, c := range waitBatch(t, batches) {
		assert.Equal(t, routeFile, c.Path, "unexpected change %v", c)
	}
}

func TestWatcher_CoalescesWhileBusy(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	var mu sync.Mutex
	var calls, active, maxActive int
	release := make(chan struct{})
	first := make(chan struct{})
	watcher.OnChange(func([]Change) {
		mu.Lock()
		calls++
		active++
		if active > maxActive {
			maxActive = active
		}
		n := calls
		mu.Unlock()

		if n == 1 {
			close(first)
			<-release
		}

		mu.Lock()
		active--
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)
	<-watcher.Ready()

	writeFile(t, filepath.Join(tmpDir, "a.go"), "x")
	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first delivery")
	}

	// Several bursts while the callback is busy.
	for _, name := range []string{"b.go", "c.go", "d.go"} {
		writeFile(t, filepath.Join(tmpDir, name), "x")
		time.Sleep(80 * time.Millisecond)
	}
	close(release)
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive, "deliveries must be serialized")
	assert.Equal(t, 2, calls)
}

func TestWatcher_StopAndRestart(t *testing.T) {
	tmpDir := t.TempDir()
	watcher := NewWatcher(WatcherConfig{Paths: []string{tmpDir}})
	assert.False(t, watcher.IsRunning())

	done := make(chan error, 1)
	go func() { done <- watcher.Start(context.Background()) }()
	<-watcher.Ready()

	assert.Error(t, watcher.Start(context.Background()), "a running watcher cannot start again")

	watcher.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Stop")
	}
	assert.False(t, watcher.IsRunning())
}

func TestWatcher_MissingPath(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Paths: []string{filepath.Join(t.TempDir(), "missing")}})
	assert.Error(t, watcher.Start(context.Background()))
}

func TestMatchIgnore(t *testing.T) {
	patterns := []string{"*_test.go", "vendor", "tmp", "build/out", "gen/*.go"}

	tests := []struct {
		path   string
		ignore bool
	}{
		{filepath.Join("routes", "foo_test.go"), true},
		{filepath.Join("routes", "vendor", "lib.go"), true},
		{filepath.Join("foo", "tmp", "bar.go"), true},
		{filepath.Join("foo", "attempt.go"), false},
		{filepath.Join("app", "build", "out", "x.go"), true},
		{filepath.Join("app", "build", "x.go"), false},
		{"gen/a.go", true},
		{filepath.Join("routes", "main.go"), false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignore, MatchIgnore(tt.path, patterns))
		})
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]Change{
		{Path: "a.go", Type: ChangeCreate},
		{Path: "b.go", Type: ChangeWrite},
		{Path: "a.go", Type: ChangeRemove},
	})
	assert.Equal(t, []Change{
		{Path: "a.go", Type: ChangeRemove},
		{Path: "b.go", Type: ChangeWrite},
	}, got)
}

func TestChangeTypeString(t *testing.T) {
	assert.Equal(t, "rename", ChangeRename.String())
	assert.Equal(t, "unknown", ChangeType(99).String())
}
