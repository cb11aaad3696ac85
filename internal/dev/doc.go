// Package dev provides the development-time file watching used to reload
// routes while a host is running.
//
// The Watcher subscribes to filesystem notifications for a set of
// directories (recursively, following directories created later), filters
// them by extension and ignore patterns, debounces bursts of events, and
// delivers batches of changes to a single callback one at a time.
//
// # Usage
//
//	w := dev.NewWatcher(dev.WatcherConfig{
//	    Paths:      []string{"app/routes/http"},
//	    Extensions: []string{".go"},
//	})
//	w.OnChange(func(changes []dev.Change) {
//	    // re-scan
//	})
//
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package dev
