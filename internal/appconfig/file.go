package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dchest/safefile"

	"geman/internal/tag"
)

// Read loads and parses the config at path. A missing file yields an error
// matching fs.ErrNotExist; a file without the attribute yields
// ErrAttributeNotFound.
func Read(path string, kind tag.Kind) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s config: %w", kind.AppName(), err)
	}
	c, err := Parse(data, kind)
	if err != nil {
		var attrErr *AttributeError
		if errors.As(err, &attrErr) {
			attrErr.Path = path
		}
		return nil, err
	}
	c.Path = path
	return c, nil
}

// Apply makes directoryName the active version in the config at path. The
// current file is copied to backupPath before it is rewritten. A missing
// Lutris config is created from scratch instead.
func Apply(path, backupPath string, kind tag.Kind, directoryName string) (*Config, error) {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && kind.IsWine() {
			return createLutrisConfig(path, kind, directoryName)
		}
		return nil, fmt.Errorf("stat %s config: %w", kind.AppName(), err)
	}

	c, err := Read(target, kind)
	if err != nil {
		return nil, err
	}
	c.Path = path

	original, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read %s config: %w", kind.AppName(), err)
	}
	if err := Backup(original, backupPath); err != nil {
		return nil, err
	}

	c.SetActiveVersion(directoryName)
	if err := safefile.WriteFile(target, c.Bytes(), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write %s config: %w", kind.AppName(), err)
	}
	return c, nil
}

// Backup overwrites backupPath with data.
func Backup(data []byte, backupPath string) error {
	if err := os.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return fmt.Errorf("prepare backup directory: %w", err)
	}
	if err := safefile.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("write backup %s: %w", backupPath, err)
	}
	return nil
}

func createLutrisConfig(path string, kind tag.Kind, directoryName string) (*Config, error) {
	data := InitialLutrisConfig(directoryName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare Lutris config directory: %w", err)
	}
	if err := safefile.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("create Lutris config: %w", err)
	}
	c, err := Parse(data, kind)
	if err != nil {
		return nil, err
	}
	c.Path = path
	return c, nil
}
