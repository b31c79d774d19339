package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"geman/internal/registry"
	"geman/internal/tag"
	"geman/internal/version"
)

// RemoveOptions configures Remove.
type RemoveOptions struct {
	Label string
	// Forget drops the registry entry but leaves the directory on disk.
	Forget bool
}

// Remove deletes a managed version. The version the host application is
// currently using cannot be removed.
func (m *Manager) Remove(kind tag.Kind, rawTag string, opts RemoveOptions) (registry.ManagedVersion, error) {
	mv, err := m.lookup(kind, rawTag, opts.Label)
	if err != nil {
		return registry.ManagedVersion{}, err
	}
	if err := m.removeManaged(mv, opts.Forget); err != nil {
		return registry.ManagedVersion{}, err
	}
	return mv, nil
}

func (m *Manager) removeManaged(mv registry.ManagedVersion, forget bool) error {
	if m.inUse(mv) {
		return fmt.Errorf("%s is used by %s: %w", mv, mv.Kind.AppName(), ErrVersionInUse)
	}
	if !forget {
		dir := filepath.Join(m.paths.ToolDir(mv.Kind), mv.DirectoryName)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	m.reg.RemoveLabel(mv.Version, mv.EffectiveLabel())
	m.log.Info().Str("tag", mv.Tag.Value()).Str("kind", mv.Kind.String()).Bool("forget", forget).Msg("removed")
	return nil
}

// CleanOptions selects the versions Clean removes. Either Before or both
// Start and End must be set.
type CleanOptions struct {
	Before string
	Start  string
	End    string
	Forget bool
	DryRun bool
}

// CleanFailure records a version Clean could not remove.
type CleanFailure struct {
	Version registry.ManagedVersion `json:"version"`
	Error   string                  `json:"error"`
}

// CleanResult lists what Clean removed, or would remove on a dry run.
type CleanResult struct {
	Removed []registry.ManagedVersion `json:"removed"`
	Failed  []CleanFailure            `json:"failed,omitempty"`
	DryRun  bool                      `json:"dry_run"`
}

// Clean removes every managed version of kind older than a cutoff or inside
// an inclusive range. A version that cannot be removed is reported and kept.
func (m *Manager) Clean(kind tag.Kind, opts CleanOptions) (CleanResult, error) {
	var (
		candidates []registry.ManagedVersion
		err        error
	)
	switch {
	case opts.Before != "":
		candidates, err = m.reg.Before(version.New(opts.Before, kind))
	case opts.Start != "" && opts.End != "":
		candidates, err = m.reg.InRange(version.New(opts.Start, kind), version.New(opts.End, kind))
	default:
		return CleanResult{}, ErrMissingRangeBound
	}
	if err != nil {
		return CleanResult{}, err
	}

	result := CleanResult{DryRun: opts.DryRun}
	if len(candidates) == 0 {
		return result, ErrNothingToRemove
	}

	for _, mv := range candidates {
		if opts.DryRun {
			if m.inUse(mv) {
				result.Failed = append(result.Failed, CleanFailure{Version: mv, Error: ErrVersionInUse.Error()})
				continue
			}
			result.Removed = append(result.Removed, mv)
			continue
		}
		if err := m.removeManaged(mv, opts.Forget); err != nil {
			if !errors.Is(err, ErrVersionInUse) {
				m.log.Error().Err(err).Str("tag", mv.Tag.Value()).Msg("clean failed")
			}
			result.Failed = append(result.Failed, CleanFailure{Version: mv, Error: err.Error()})
			continue
		}
		result.Removed = append(result.Removed, mv)
	}
	return result, nil
}
