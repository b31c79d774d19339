package tools

import (
	"fmt"
	"path/filepath"

	"geman/internal/paths"
	"geman/internal/tag"
)

const userSettingsFile = "user_settings.py"

// CopyUserSettings copies Proton's user_settings.py from one managed version
// to another.
func (m *Manager) CopyUserSettings(srcTag, dstTag string) (string, error) {
	src, err := m.lookup(tag.Proton, srcTag, "")
	if err != nil {
		return "", err
	}
	dst, err := m.lookup(tag.Proton, dstTag, "")
	if err != nil {
		return "", err
	}

	toolDir := m.paths.ToolDir(tag.Proton)
	from := filepath.Join(toolDir, src.DirectoryName, userSettingsFile)
	to := filepath.Join(toolDir, dst.DirectoryName, userSettingsFile)

	if ok, err := paths.FileExists(from); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("%s: %w", from, ErrNoUserSettings)
	}
	if err := copyFile(from, to); err != nil {
		return "", fmt.Errorf("copy user settings: %w", err)
	}
	return to, nil
}
