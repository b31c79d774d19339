package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"geman/internal/registry"
	"geman/internal/tag"
)

// Entry is a managed version annotated with whether it is active.
type Entry struct {
	registry.ManagedVersion
	Active bool `json:"active"`
}

// List returns managed versions of the given kinds in registry order, or only
// the latest per kind when newest is set.
func (m *Manager) List(kinds []tag.Kind, newest bool) []Entry {
	active := map[tag.Kind]string{}
	for _, kind := range kinds {
		if dir, ok := m.activeDirectory(kind); ok {
			active[kind] = dir
		}
	}

	var entries []Entry
	for _, kind := range kinds {
		var versions []registry.ManagedVersion
		if newest {
			if mv, ok := m.reg.LatestByKind(kind); ok {
				versions = append(versions, mv)
			}
		} else {
			versions = m.reg.OfKind(kind)
		}
		for _, mv := range versions {
			dir, ok := active[kind]
			entries = append(entries, Entry{ManagedVersion: mv, Active: ok && dir == mv.DirectoryName})
		}
	}
	return entries
}

// ListDir returns the directory names inside kind's tool directory, whether
// managed or not.
func (m *Manager) ListDir(kind tag.Kind) ([]string, error) {
	dir := m.paths.ToolDir(kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
