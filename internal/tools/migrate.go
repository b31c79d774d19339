package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"geman/internal/paths"
	"geman/internal/registry"
	"geman/internal/tag"
	"geman/internal/version"
)

// MigrateOptions configures Migrate.
type MigrateOptions struct {
	// Source is an existing extracted release directory.
	Source string
	Label  string
}

// Migrate brings an existing directory under management. A directory already
// inside the tool directory is recorded as-is; anything else is moved there.
func (m *Manager) Migrate(kind tag.Kind, rawTag string, opts MigrateOptions) (registry.ManagedVersion, error) {
	if err := registry.ValidateLabel(opts.Label); err != nil {
		return registry.ManagedVersion{}, err
	}
	src, err := filepath.Abs(opts.Source)
	if err != nil {
		return registry.ManagedVersion{}, fmt.Errorf("resolve source: %w", err)
	}
	if ok, err := paths.DirExists(src); err != nil {
		return registry.ManagedVersion{}, err
	} else if !ok {
		return registry.ManagedVersion{}, fmt.Errorf("source %s is not a directory", src)
	}

	v := version.New(rawTag, kind)
	label := m.reg.NextLabel(v, opts.Label)
	toolDir := m.paths.ToolDir(kind)
	dirName := filepath.Base(src)

	if filepath.Clean(filepath.Dir(src)) != filepath.Clean(toolDir) {
		target := filepath.Join(toolDir, dirName)
		if exists, err := paths.DirExists(target); err != nil {
			return registry.ManagedVersion{}, err
		} else if exists {
			return registry.ManagedVersion{}, fmt.Errorf("%s: %w", target, ErrDirectoryExists)
		}
		if err := os.MkdirAll(toolDir, 0o755); err != nil {
			return registry.ManagedVersion{}, fmt.Errorf("prepare tool dir: %w", err)
		}
		if err := moveDir(src, target); err != nil {
			return registry.ManagedVersion{}, fmt.Errorf("move %s: %w", src, err)
		}
		m.log.Info().Str("path", src).Str("directory", target).Msg("moved into tool directory")
	}

	mv := m.reg.Add(registry.ManagedVersion{Version: v, Label: label, DirectoryName: dirName})
	return mv, nil
}
