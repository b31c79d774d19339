package paths

import (
	"os"
	"path/filepath"
	"testing"

	"geman/internal/config"
	"geman/internal/tag"
)

func TestNewPathsLayout(t *testing.T) {
	p := New("/home/deck/.local/share", "/home/deck/.config", "/home/deck/.cache", "/home/deck/.local/state")

	checks := map[string][2]string{
		"registry":      {p.RegistryFile, "/home/deck/.local/share/geman/managed_versions.json"},
		"steam config":  {p.SteamConfig, "/home/deck/.local/share/Steam/config/config.vdf"},
		"steam tools":   {p.SteamToolsDir, "/home/deck/.local/share/Steam/compatibilitytools.d"},
		"lutris config": {p.LutrisWineConfig, "/home/deck/.config/lutris/runners/wine.yml"},
		"lutris tools":  {p.LutrisRunnersDir, "/home/deck/.local/share/lutris/runners/wine"},
		"steam backup":  {p.SteamBackup, "/home/deck/.config/geman/steam-config-backup.vdf"},
		"lutris backup": {p.LutrisBackup, "/home/deck/.config/geman/lutris-wine-runner-config-backup.yml"},
		"logs":          {p.LogsDir, "/home/deck/.local/state/geman/logs"},
		"release cache": {p.ReleaseCacheFile, "/home/deck/.cache/geman/release_cache.json"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s: got %s, want %s", name, c[0], c[1])
		}
	}
}

func TestKindDispatch(t *testing.T) {
	p := New("/d", "/c", "/k", "/s")
	if p.ToolDir(tag.Proton) != p.SteamToolsDir || p.ToolDir(tag.LoL) != p.LutrisRunnersDir {
		t.Fatal("unexpected tool dir dispatch")
	}
	if p.HostConfig(tag.Wine) != p.LutrisWineConfig || p.HostConfig(tag.Proton) != p.SteamConfig {
		t.Fatal("unexpected host config dispatch")
	}
	if p.BackupFile(tag.Wine) != p.BackupFile(tag.LoL) {
		t.Fatal("wine variants should share a backup")
	}
}

func TestApplyConfigSteamRoot(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GEMAN_TEST_STEAM", root)

	cfg := config.Default()
	cfg.SteamRootPath = "$GEMAN_TEST_STEAM"
	p := ApplyConfig(New("/d", "/c", "/k", "/s"), cfg)

	if p.SteamToolsDir != filepath.Join(root, "compatibilitytools.d") {
		t.Fatalf("unexpected tools dir %s", p.SteamToolsDir)
	}

	unchanged := ApplyConfig(New("/d", "/c", "/k", "/s"), config.Default())
	if unchanged.SteamRoot != "/d/Steam" {
		t.Fatalf("unexpected default steam root %s", unchanged.SteamRoot)
	}
}

func TestExistsHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := FileExists(file); err != nil || !ok {
		t.Fatalf("FileExists(file) = %v, %v", ok, err)
	}
	if ok, _ := FileExists(dir); ok {
		t.Fatal("directory reported as file")
	}
	if ok, err := DirExists(dir); err != nil || !ok {
		t.Fatalf("DirExists(dir) = %v, %v", ok, err)
	}
	if ok, err := DirExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Fatalf("DirExists(missing) = %v, %v", ok, err)
	}
}
