package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/wrkdir/omni/internal/logging"
)

// Watcher watches a workdir's contributing config files for mtime changes,
// driving both C1's in-memory cache invalidation (spec.md §3 "Lifecycle")
// and C4's "User notification" reminder (§4.4: "If any workdir config
// file's mtime has changed since the last successful up, print a one-line
// reminder"). This repurposes the teacher's fsnotify dependency, which the
// retrieved file subset never exercised.
type Watcher struct {
	fsw    *fsnotify.Watcher
	engine *Engine
	key    string
	onFire func()
}

// NewWatcher starts watching paths for cacheKey's config tree, calling
// engine.Invalidate and onFire (if non-nil) on any write/create/rename.
func NewWatcher(engine *Engine, cacheKey string, paths []string, onFire func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: starting watcher: %w", err)
	}
	for _, p := range paths {
		// Best effort: a file that doesn't exist yet simply isn't watched
		// until it's created in a directory we do watch.
		_ = fsw.Add(p)
	}

	w := &Watcher{fsw: fsw, engine: engine, key: cacheKey, onFire: onFire}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				logging.Debugf("config: watcher fired for %s: %s", w.key, ev.Name)
				w.engine.Invalidate(w.key)
				if w.onFire != nil {
					w.onFire()
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warnf("config: watcher error for %s: %v", w.key, err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }

// ModtimeHash summarizes a config_modtimes map into a short stable digest,
// used as the value of __omni_wd_config_modtime (spec.md §4.4): "the
// notification itself is suppressed when the hashed mtime set matches a
// variable already set in the environment."
func ModtimeHash(modtimes map[string]int64) string {
	keys := make([]string, 0, len(modtimes))
	for k := range modtimes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%d\n", k, modtimes[k])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
