package release

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/dchest/safefile"

	"geman/internal/tag"
)

type latestCacheEntry struct {
	Tag       string    `json:"tag"`
	FetchedAt time.Time `json:"fetched_at"`
}

type latestCacheFile struct {
	Entries map[string]latestCacheEntry `json:"entries"`
}

// LatestCache remembers the latest upstream tag per kind for a limited time.
// Reads never fail; an unreadable cache is treated as empty.
type LatestCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewLatestCache returns a cache stored at path. A ttl of zero disables it.
func NewLatestCache(path string, ttl time.Duration) *LatestCache {
	return &LatestCache{path: path, ttl: ttl, now: time.Now}
}

// Get returns a cached tag that has not expired.
func (c *LatestCache) Get(kind tag.Kind) (tag.Tag, bool) {
	if c == nil || c.ttl <= 0 {
		return tag.Tag{}, false
	}
	entry, ok := c.load().Entries[kind.String()]
	if !ok || entry.Tag == "" {
		return tag.Tag{}, false
	}
	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return tag.Tag{}, false
	}
	return tag.New(entry.Tag), true
}

// Put records t as the latest tag of kind.
func (c *LatestCache) Put(kind tag.Kind, t tag.Tag) error {
	if c == nil || c.ttl <= 0 {
		return nil
	}
	file := c.load()
	file.Entries[kind.String()] = latestCacheEntry{Tag: t.Value(), FetchedAt: c.now().UTC()}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return safefile.WriteFile(c.path, data, 0o644)
}

func (c *LatestCache) load() latestCacheFile {
	empty := latestCacheFile{Entries: map[string]latestCacheEntry{}}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return empty
	}
	var file latestCacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return empty
	}
	if file.Entries == nil {
		file.Entries = map[string]latestCacheEntry{}
	}
	return file
}
