// Package cache implements the C3 provisioning caches of spec.md §3: a
// TTL-bounded JSON blob cache for remote version/release lists, and a
// many-to-many installed/required-by edge graph (see graph.go).
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// TTLCache is a JSON file on disk guarded by a short-lived advisory lock
// during writes; reads tolerate stale data, and an entry whose content
// fails to deserialize is treated as absent, per spec.md §5 "Shared
// resources".
type TTLCache struct {
	dir string
}

func New(dir string) *TTLCache {
	return &TTLCache{dir: dir}
}

type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

func (c *TTLCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get loads key's cached payload into out if present and within ttl,
// reporting whether the value was fresh.
func (c *TTLCache) Get(key string, ttl time.Duration, out any) (fresh bool, err error) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return false, nil
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return false, nil // tolerate corrupt cache: treat as absent
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return false, nil
	}
	return time.Since(e.StoredAt) < ttl, nil
}

// GetStale loads key's cached payload regardless of age, for the
// "refresh failed, fall back to cached list" path of spec.md §4.3 step 2.
func (c *TTLCache) GetStale(key string, out any) (ok bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return false
	}
	return json.Unmarshal(e.Payload, out) == nil
}

// Set writes value under key, guarded by a short-lived advisory lock.
func (c *TTLCache) Set(key string, value any) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := entry{StoredAt: time.Now(), Payload: payload}
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}

	lockPath := c.path(key) + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()

	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path(key))
}
