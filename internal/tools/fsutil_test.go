package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "files", "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "proton"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "files", "lib", "a.so"), []byte("elf"), 0o644))
	require.NoError(t, os.Symlink("files/lib/a.so", filepath.Join(src, "link")))

	dst := filepath.Join(t.TempDir(), "dst")
	require.NoError(t, copyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "files", "lib", "a.so"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))

	info, err := os.Stat(filepath.Join(dst, "proton"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	link, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "files/lib/a.so", link)
}

func TestMoveDirSameDevice(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "f"), []byte("x"), 0o644))

	dst := filepath.Join(root, "b")
	require.NoError(t, moveDir(src, dst))
	assert.NoDirExists(t, src)
	assert.FileExists(t, filepath.Join(dst, "f"))
}
