package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"geman/internal/archive"
	"geman/internal/paths"
	"geman/internal/registry"
	"geman/internal/release"
	"geman/internal/tag"
)

// InstallOptions configures install behaviour.
type InstallOptions struct {
	// Tag selects a release; empty means the latest.
	Tag          string
	SkipChecksum bool
	// Apply makes the new version active in the host application.
	Apply bool
	// Duplicate installs another labelled copy of an already managed release.
	Duplicate bool
	Progress  release.ProgressFunc
}

// InstallResult describes the outcome of Install.
type InstallResult struct {
	Version        registry.ManagedVersion `json:"version"`
	Release        release.Release         `json:"-"`
	AlreadyManaged bool                    `json:"already_managed"`
	Applied        bool                    `json:"applied"`
	Path           string                  `json:"path,omitempty"`
}

// Install downloads, verifies and extracts a release into the host
// application's tool directory and records it in the registry. A release
// that is already managed is reported, not reinstalled, unless Duplicate is
// set. Apply is honoured in both cases.
func (m *Manager) Install(ctx context.Context, kind tag.Kind, opts InstallOptions) (InstallResult, error) {
	rel, err := m.releases.FetchRelease(ctx, kind, opts.Tag)
	if err != nil {
		return InstallResult{}, err
	}
	v := rel.Version()

	if existing, ok := m.reg.Find(v); ok && !opts.Duplicate {
		m.log.Info().Str("tag", v.Tag.Value()).Str("kind", kind.String()).Msg("already managed")
		result := InstallResult{Version: existing, Release: rel, AlreadyManaged: true}
		if opts.Apply {
			if err := m.applyManaged(existing); err != nil {
				return result, err
			}
			result.Applied = true
		}
		return result, nil
	}

	label := m.reg.NextLabel(v, "")
	if err := registry.ValidateLabel(label); err != nil {
		return InstallResult{}, err
	}

	if err := os.MkdirAll(m.paths.StagingDir, 0o755); err != nil {
		return InstallResult{}, fmt.Errorf("prepare staging dir: %w", err)
	}
	staging, err := os.MkdirTemp(m.paths.StagingDir, kind.String()+"-")
	if err != nil {
		return InstallResult{}, fmt.Errorf("create staging dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	res, err := m.acquirer.Acquire(ctx, archive.Request{
		Kind:         kind,
		Release:      &rel,
		SkipChecksum: opts.SkipChecksum,
		Progress:     opts.Progress,
	}, staging)
	if err != nil {
		return InstallResult{}, err
	}

	dirName := res.DirectoryName + strings.TrimPrefix(label, v.Tag.Value())

	toolDir := m.paths.ToolDir(kind)
	target := filepath.Join(toolDir, dirName)
	if exists, err := paths.DirExists(target); err != nil {
		return InstallResult{}, err
	} else if exists {
		return InstallResult{}, fmt.Errorf("%s: %w; use migrate to adopt it", target, ErrDirectoryExists)
	}
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		return InstallResult{}, fmt.Errorf("prepare tool dir: %w", err)
	}
	if err := moveDir(res.Path, target); err != nil {
		return InstallResult{}, fmt.Errorf("commit %s: %w", dirName, err)
	}

	mv := m.reg.Add(registry.ManagedVersion{Version: v, Label: label, DirectoryName: dirName})
	m.log.Info().Str("tag", v.Tag.Value()).Str("kind", kind.String()).Str("directory", dirName).Msg("installed")

	result := InstallResult{Version: mv, Release: rel, Path: target}
	if opts.Apply {
		if err := m.applyManaged(mv); err != nil {
			return result, err
		}
		result.Applied = true
	}
	return result, nil
}
