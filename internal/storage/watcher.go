package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each observed blob change.
// kind is one of "created", "updated", "removed".
type EventCallback func(kind string, key string)

// Watch starts an fsnotify watcher on the blob root and reports blob
// changes until ctx is cancelled. It is used to surface out-of-band
// edits to the blob directory (manual copies, external sync tools).
//
// New directories created at runtime are automatically added to the
// watch list. Rename events fire on the old path only, so a short
// debounced reconciliation pass diffs the known key set against disk
// to catch the new path.
func Watch(ctx context.Context, store *FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, store.Root()); err != nil {
		return err
	}

	known := make(map[string]int64)
	if blobs, listErr := store.List(); listErr == nil {
		for _, b := range blobs {
			known[b.Key] = b.Size
		}
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(store, known, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					scheduleReconcile()
					continue
				}
			}

			if strings.HasPrefix(filepath.Base(absPath), ".") {
				continue
			}

			rel, relErr := filepath.Rel(store.Root(), absPath)
			if relErr != nil {
				continue
			}
			key := filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				info, statErr := os.Stat(absPath)
				if statErr != nil {
					continue
				}
				kind := "updated"
				if _, seen := known[key]; !seen {
					kind = "created"
				}
				known[key] = info.Size()
				logger.Debug("watcher: blob changed", slog.String("key", key), slog.String("op", kind))
				if cb != nil {
					cb(kind, key)
				}

			case ev.Op&fsnotify.Remove != 0:
				if _, seen := known[key]; !seen {
					continue
				}
				delete(known, key)
				logger.Debug("watcher: blob removed", slog.String("key", key))
				if cb != nil {
					cb("removed", key)
				}

			case ev.Op&fsnotify.Rename != 0:
				// The new path arrives as a separate Create event if it
				// stays inside the root. Drop the old key now and let the
				// reconciliation pass pick up anything that moved.
				if _, seen := known[key]; seen {
					delete(known, key)
					logger.Debug("watcher: blob renamed away", slog.String("key", key))
					if cb != nil {
						cb("removed", key)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile diffs the known key set against disk and reports the delta.
func reconcile(store *FS, known map[string]int64, logger *slog.Logger, cb EventCallback) {
	blobs, err := store.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]int64, len(blobs))
	for _, b := range blobs {
		disk[b.Key] = b.Size
	}

	for key := range known {
		if _, ok := disk[key]; !ok {
			delete(known, key)
			logger.Debug("reconcile: removed stale", slog.String("key", key))
			if cb != nil {
				cb("removed", key)
			}
		}
	}

	for key, size := range disk {
		if prev, seen := known[key]; seen && prev == size {
			continue
		}
		_, seen := known[key]
		known[key] = size
		kind := "updated"
		if !seen {
			kind = "created"
		}
		logger.Debug("reconcile: picked up", slog.String("key", key), slog.String("op", kind))
		if cb != nil {
			cb(kind, key)
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
