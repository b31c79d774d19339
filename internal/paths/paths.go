package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"geman/internal/config"
	"geman/internal/tag"
)

const appDir = "geman"

// Paths captures every location geman reads or writes.
type Paths struct {
	DataDir   string
	ConfigDir string
	CacheDir  string
	LogsDir   string

	ConfigFile       string
	RegistryFile     string
	StagingDir       string
	ReleaseCacheFile string

	SteamRoot     string
	SteamConfig   string
	SteamToolsDir string
	SteamBackup   string

	LutrisRunnersDir string
	LutrisWineConfig string
	LutrisBackup     string
}

// Resolve derives locations from the XDG base directories.
func Resolve() Paths {
	return New(xdg.DataHome, xdg.ConfigHome, xdg.CacheHome, xdg.StateHome)
}

// New lays out every location below the given base directories.
func New(dataHome, configHome, cacheHome, stateHome string) Paths {
	dataDir := filepath.Join(dataHome, appDir)
	configDir := filepath.Join(configHome, appDir)
	cacheDir := filepath.Join(cacheHome, appDir)

	p := Paths{
		DataDir:   dataDir,
		ConfigDir: configDir,
		CacheDir:  cacheDir,
		LogsDir:   filepath.Join(stateHome, appDir, "logs"),

		ConfigFile:       filepath.Join(configDir, "config.yaml"),
		RegistryFile:     filepath.Join(dataDir, "managed_versions.json"),
		StagingDir:       filepath.Join(dataDir, "staging"),
		ReleaseCacheFile: filepath.Join(cacheDir, "release_cache.json"),

		SteamBackup: filepath.Join(configDir, "steam-config-backup.vdf"),

		LutrisRunnersDir: filepath.Join(dataHome, "lutris", "runners", "wine"),
		LutrisWineConfig: filepath.Join(configHome, "lutris", "runners", "wine.yml"),
		LutrisBackup:     filepath.Join(configDir, "lutris-wine-runner-config-backup.yml"),
	}
	return p.WithSteamRoot(filepath.Join(dataHome, "Steam"))
}

// WithSteamRoot points every Steam location at root.
func (p Paths) WithSteamRoot(root string) Paths {
	p.SteamRoot = root
	p.SteamConfig = filepath.Join(root, "config", "config.vdf")
	p.SteamToolsDir = filepath.Join(root, "compatibilitytools.d")
	return p
}

// ApplyConfig honours the configured Steam root override.
func ApplyConfig(p Paths, cfg config.Config) Paths {
	if root := cfg.SteamRoot(); root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		p = p.WithSteamRoot(root)
	}
	return p
}

// ToolDir is the directory the host application scans for tools of kind.
func (p Paths) ToolDir(kind tag.Kind) string {
	if kind.IsWine() {
		return p.LutrisRunnersDir
	}
	return p.SteamToolsDir
}

// HostConfig is the host application's config file for kind.
func (p Paths) HostConfig(kind tag.Kind) string {
	if kind.IsWine() {
		return p.LutrisWineConfig
	}
	return p.SteamConfig
}

// BackupFile is where the host config is copied before it is modified.
// Both Wine variants share the Lutris backup.
func (p Paths) BackupFile(kind tag.Kind) string {
	if kind.IsWine() {
		return p.LutrisBackup
	}
	return p.SteamBackup
}

// EnsureDirs creates geman's own directories.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.DataDir, p.ConfigDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
