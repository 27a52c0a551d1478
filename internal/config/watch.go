package config

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls file modification times and triggers a callback on change.
// Files that do not exist yet are picked up once they appear.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	lastMTime map[string]time.Time

	// Discover, when set, runs before every scan; paths it returns are added
	// to Paths, so files created after startup are watched too.
	Discover func() []string
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Start polls in a goroutine until ctx is done.
func (w *FileWatcher) Start(ctx context.Context) {
	w.scan(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// scan records mtimes; unless priming, it reports files that are new or newer.
func (w *FileWatcher) scan(prime bool) {
	if w.Discover != nil {
		w.addPaths(w.Discover())
	}
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, seen := w.lastMTime[p]
		if seen && !mt.After(last) {
			continue
		}
		w.lastMTime[p] = mt
		if !prime && w.onChange != nil {
			w.onChange(p)
		}
	}
}

func (w *FileWatcher) addPaths(paths []string) {
	known := make(map[string]bool, len(w.Paths))
	for _, p := range w.Paths {
		known[p] = true
	}
	for _, p := range paths {
		if !known[p] {
			known[p] = true
			w.Paths = append(w.Paths, p)
		}
	}
}
