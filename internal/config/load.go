package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wrkdir/omni/internal/errs"
	"github.com/wrkdir/omni/internal/logging"
)

// Document is one YAML source to ingest: its scope and, for File/Package
// sources, the path the merger resolves relative paths against.
type Document struct {
	Scope   Scope
	Source  Source
	Options MergeOptions
}

// LoadFile reads a YAML document from disk and lifts it into a tagged Value
// tree with the given provenance. A missing file is not an error — it
// yields a null Value, the same way an absent optional scope behaves in the
// merge (spec.md §4.1 "Null / absent").
func LoadFile(path string, scope Scope, h *errs.Handler) *Value {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewNull(Source{Kind: SourceFile, Path: path}, scope)
		}
		h.Add(errs.Record{Kind: errs.IoError, File: path, Extra: map[string]string{"error": err.Error()}})
		return NewNull(Source{Kind: SourceFile, Path: path}, scope)
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		h.Add(errs.Record{Kind: errs.ParseError, File: path, Extra: map[string]string{"error": err.Error()}})
		return NewNull(Source{Kind: SourceFile, Path: path}, scope)
	}

	return ValueFromAny(generic, Source{Kind: SourceFile, Path: path}, scope)
}

// MergeAll ingests documents in order, accumulating into one tree. Later
// documents override earlier ones per their own strategy, which is
// StrategyDefault unless a document's YAML uses key-suffix reinterpretation
// (handled transparently inside Merge).
func MergeAll(docs []*Value, h *errs.Handler) *Value {
	var tree *Value
	for _, doc := range docs {
		tree = Merge(tree, doc, MergeOptions{Strategy: StrategyDefault, Transform: true}, nil)
	}
	if tree == nil {
		tree = NewMapping(Source{Kind: SourceDefault}, ScopeDefault)
	}
	return tree
}

// cacheEntry holds a merged tree plus the mtimes of every file that
// contributed to it, so a later Stat mismatch invalidates it (spec.md §3
// "Lifecycle": "retained per-workdir-root with an in-memory cache
// invalidated when any contributing file's mtime changes").
type cacheEntry struct {
	tree    *Value
	mtimes  map[string]time.Time
	errs    *errs.Handler
}

// Engine is the threaded-through, per-invocation config merger (spec.md §9
// "Global singletons": "in the target this becomes an explicit Engine value
// threaded through commands ... not a global").
type Engine struct {
	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// NewEngine returns a fresh, empty Engine.
func NewEngine() *Engine {
	return &Engine{cache: map[string]*cacheEntry{}}
}

// Load merges the given files (each already scope-assigned) for
// cacheKey (typically a workdir root), reusing a cached tree when every
// contributing file's mtime is unchanged.
func (e *Engine) Load(cacheKey string, files []struct {
	Path  string
	Scope Scope
}) (*Value, *errs.Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if entry, ok := e.cache[cacheKey]; ok && e.stillValid(entry) {
		logging.Debugf("config: cache hit for %s", cacheKey)
		return entry.tree, entry.errs
	}

	h := errs.NewHandler()
	mtimes := map[string]time.Time{}
	var docs []*Value
	for _, f := range files {
		docs = append(docs, LoadFile(f.Path, f.Scope, h))
		if st, err := os.Stat(f.Path); err == nil {
			mtimes[f.Path] = st.ModTime()
		}
	}

	tree := MergeAll(docs, h)
	e.cache[cacheKey] = &cacheEntry{tree: tree, mtimes: mtimes, errs: h}
	return tree, h
}

// Invalidate drops a cached tree unconditionally (used when a watcher fires
// or a command knows it just mutated a contributing file).
func (e *Engine) Invalidate(cacheKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cache, cacheKey)
}

func (e *Engine) stillValid(entry *cacheEntry) bool {
	for path, mtime := range entry.mtimes {
		st, err := os.Stat(path)
		if err != nil {
			return false
		}
		if !st.ModTime().Equal(mtime) {
			return false
		}
	}
	return true
}

// ConfigModtimes returns a path->unix-epoch map for every file known to have
// contributed to cacheKey's cached tree, matching the Up environment's
// config_modtimes field (spec.md §3) used to detect a stale `up` later.
func (e *Engine) ConfigModtimes(cacheKey string) map[string]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.cache[cacheKey]
	if !ok {
		return nil
	}
	out := make(map[string]int64, len(entry.mtimes))
	for path, mtime := range entry.mtimes {
		out[path] = mtime.Unix()
	}
	return out
}

// ErrSummary returns a single combined error for cacheKey's accumulated
// Config-scope records, or nil if there were none and the tree loaded
// cleanly.
func (e *Engine) ErrSummary(cacheKey string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.cache[cacheKey]
	if !ok {
		return fmt.Errorf("config: no cached tree for %s", cacheKey)
	}
	return entry.errs.Err()
}
