package tools

import (
	"fmt"

	"geman/internal/appconfig"
	"geman/internal/registry"
	"geman/internal/tag"
)

// Apply makes a managed version the active tool of its host application.
// An empty tag selects the latest managed version of kind.
func (m *Manager) Apply(kind tag.Kind, rawTag, label string) (registry.ManagedVersion, error) {
	var mv registry.ManagedVersion
	if rawTag == "" {
		latest, ok := m.reg.LatestByKind(kind)
		if !ok {
			return registry.ManagedVersion{}, fmt.Errorf("no %s version: %w", kind.ToolName(), ErrNotManaged)
		}
		mv = latest
	} else {
		found, err := m.lookup(kind, rawTag, label)
		if err != nil {
			return registry.ManagedVersion{}, err
		}
		mv = found
	}

	if err := m.applyManaged(mv); err != nil {
		return registry.ManagedVersion{}, err
	}
	return mv, nil
}

func (m *Manager) applyManaged(mv registry.ManagedVersion) error {
	kind := mv.Kind
	if _, err := appconfig.Apply(m.paths.HostConfig(kind), m.paths.BackupFile(kind), kind, mv.DirectoryName); err != nil {
		return fmt.Errorf("apply %s: %w", mv, err)
	}
	m.log.Info().Str("tag", mv.Tag.Value()).Str("directory", mv.DirectoryName).Msg("applied")
	return nil
}

// ActiveVersion returns the directory name kind's host application uses.
func (m *Manager) ActiveVersion(kind tag.Kind) (string, error) {
	cfg, err := appconfig.Read(m.paths.HostConfig(kind), kind)
	if err != nil {
		return "", err
	}
	return cfg.ActiveVersion(), nil
}
