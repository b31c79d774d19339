package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"geman/internal/release"
	"geman/internal/tag"
)

type tarEntry struct {
	name     string
	body     string
	dir      bool
	linkname string
}

func buildTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		case e.linkname != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkname
			hdr.Size = 0
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write(data)
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

var protonEntries = []tarEntry{
	{name: "GE-Proton7-8/", dir: true},
	{name: "GE-Proton7-8/proton", body: "#!/usr/bin/env python3\n"},
	{name: "GE-Proton7-8/files/", dir: true},
	{name: "GE-Proton7-8/files/bin/wine", body: "ELF"},
	{name: "GE-Proton7-8/user_settings.sample.py", body: "user_settings = {}\n"},
	{name: "GE-Proton7-8/files/bin/wine64", linkname: "wine"},
}

func TestChecksum(t *testing.T) {
	data := []byte("GE-Proton archive bytes")
	digest := Digest(data)
	assert.Len(t, digest, 128)

	assert.True(t, ChecksumsMatch(data, digest))
	assert.True(t, ChecksumsMatch(data, digest+"  GE-Proton7-8.tar.gz\n"))
	assert.False(t, ChecksumsMatch(data, Digest([]byte("other"))+" GE-Proton7-8.tar.gz"))
	assert.False(t, ChecksumsMatch(data, ""))

	err := VerifyChecksum("GE-Proton7-8.tar.gz", data, "deadbeef file")
	var sumErr *ChecksumError
	require.True(t, errors.As(err, &sumErr))
	assert.Equal(t, "deadbeef", sumErr.Expected)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestExtractGzip(t *testing.T) {
	dest := t.TempDir()
	archive := gzipBytes(t, buildTar(t, protonEntries))

	path, err := Extract(tag.Proton, "GE-Proton7-8.tar.gz", bytes.NewReader(archive), dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "GE-Proton7-8"), path)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GE-Proton7-8", entries[0].Name())

	body, err := os.ReadFile(filepath.Join(path, "files", "bin", "wine"))
	require.NoError(t, err)
	assert.Equal(t, "ELF", string(body))

	link, err := os.Readlink(filepath.Join(path, "files", "bin", "wine64"))
	require.NoError(t, err)
	assert.Equal(t, "wine", link)
}

func TestExtractXz(t *testing.T) {
	dest := t.TempDir()
	archive := xzBytes(t, buildTar(t, []tarEntry{
		{name: "lutris-GE-Proton7-8-x86_64/", dir: true},
		{name: "lutris-GE-Proton7-8-x86_64/bin/wine", body: "ELF"},
	}))

	path, err := Extract(tag.Wine, "wine.tar.xz", bytes.NewReader(archive), dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "lutris-GE-Proton7-8-x86_64"), path)
	assert.FileExists(t, filepath.Join(path, "bin", "wine"))
}

func TestExtractTopLevelFromFirstFile(t *testing.T) {
	dest := t.TempDir()
	archive := gzipBytes(t, buildTar(t, []tarEntry{
		{name: "./Proton-6.21-GE-2/proton", body: "x"},
	}))

	path, err := Extract(tag.Proton, "p.tar.gz", bytes.NewReader(archive), dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "Proton-6.21-GE-2"), path)
}

func TestExtractWrongDecoder(t *testing.T) {
	gz := gzipBytes(t, buildTar(t, protonEntries))
	_, err := Extract(tag.Wine, "wine.tar.xz", bytes.NewReader(gz), t.TempDir())
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "xz", decodeErr.Format)
	assert.Equal(t, "wine.tar.xz", decodeErr.Archive)
	assert.False(t, errors.Is(err, ErrEmptyArchive))

	xzData := xzBytes(t, buildTar(t, protonEntries))
	_, err = Extract(tag.Proton, "proton.tar.gz", bytes.NewReader(xzData), t.TempDir())
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "gzip", decodeErr.Format)
}

func TestExtractEmptyArchive(t *testing.T) {
	archive := gzipBytes(t, buildTar(t, nil))
	_, err := Extract(tag.Proton, "empty.tar.gz", bytes.NewReader(archive), t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyArchive)
	var decodeErr *DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "tools")
	archive := gzipBytes(t, buildTar(t, []tarEntry{
		{name: "GE-Proton7-8/", dir: true},
		{name: "GE-Proton7-8/../../evil", body: "x"},
	}))
	_, err := Extract(tag.Proton, "evil.tar.gz", bytes.NewReader(archive), dest)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(dest), "evil"))
}

func TestExtractRejectsLinkEscapes(t *testing.T) {
	tests := []struct {
		name     string
		linkname string
	}{
		{"absolute", ""},
		{"relative", "../../outside"},
		{"parent of destination", "../.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			dest := filepath.Join(root, "tools")
			outside := filepath.Join(root, "outside")
			require.NoError(t, os.MkdirAll(outside, 0o755))

			linkname := tt.linkname
			if linkname == "" {
				linkname = outside
			}
			archive := gzipBytes(t, buildTar(t, []tarEntry{
				{name: "GE-Proton7-8/", dir: true},
				{name: "GE-Proton7-8/link", linkname: linkname},
				{name: "GE-Proton7-8/link/evil", body: "x"},
			}))

			_, err := Extract(tag.Proton, "evil.tar.gz", bytes.NewReader(archive), dest)
			require.ErrorIs(t, err, ErrUnsafeEntry)
			assert.NoFileExists(t, filepath.Join(outside, "evil"))
			assert.NoFileExists(t, filepath.Join(root, "evil"))
			_, err = os.Lstat(filepath.Join(dest, "GE-Proton7-8", "link"))
			assert.True(t, errors.Is(err, os.ErrNotExist), "escaping link must not be created")
		})
	}
}

func TestExtractRefusesWritingThroughExistingLink(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "tools")
	outside := filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "GE-Proton7-8"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(dest, "GE-Proton7-8", "link")))

	archive := gzipBytes(t, buildTar(t, []tarEntry{
		{name: "GE-Proton7-8/link/evil", body: "x"},
	}))
	_, err := Extract(tag.Proton, "evil.tar.gz", bytes.NewReader(archive), dest)
	require.ErrorIs(t, err, ErrUnsafeEntry)
	assert.NoFileExists(t, filepath.Join(outside, "evil"))
}

func TestExtractKeepsInternalLinks(t *testing.T) {
	dest := t.TempDir()
	archive := gzipBytes(t, buildTar(t, []tarEntry{
		{name: "GE-Proton7-8/", dir: true},
		{name: "GE-Proton7-8/files/lib/wine/x.so", body: "ELF"},
		{name: "GE-Proton7-8/files/lib64/x.so", linkname: "../lib/wine/x.so"},
		{name: "GE-Proton7-8/files/bin/wine", body: "old"},
		{name: "GE-Proton7-8/files/bin/wine64", linkname: "wine"},
		{name: "GE-Proton7-8/files/bin/wine64", body: "new"},
	}))

	path, err := Extract(tag.Proton, "GE-Proton7-8.tar.gz", bytes.NewReader(archive), dest)
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(path, "files", "lib64", "x.so"))
	require.NoError(t, err)
	assert.Equal(t, "ELF", string(body))

	// A regular entry replaces an earlier link instead of following it.
	wine, err := os.ReadFile(filepath.Join(path, "files", "bin", "wine"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(wine))
	wine64, err := os.ReadFile(filepath.Join(path, "files", "bin", "wine64"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(wine64))
}

type fakeSource struct {
	rel       release.Release
	files     map[string][]byte
	downloads []string
}

func (f *fakeSource) FetchRelease(_ context.Context, kind tag.Kind, rawTag string) (release.Release, error) {
	rel := f.rel
	rel.Kind = kind
	return rel, nil
}

func (f *fakeSource) Download(_ context.Context, asset release.Asset, progress release.ProgressFunc) ([]byte, error) {
	f.downloads = append(f.downloads, asset.Name)
	data := f.files[asset.DownloadURL]
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}
	return data, nil
}

func newFakeSource(t *testing.T, checksum func(archive []byte) string) *fakeSource {
	archive := gzipBytes(t, buildTar(t, protonEntries))
	return &fakeSource{
		rel: release.Release{
			TagName: "GE-Proton7-8",
			Assets: []release.Asset{
				{Name: "GE-Proton7-8.tar.gz", ContentType: "application/gzip", DownloadURL: "archive"},
				{Name: "GE-Proton7-8.sha512sum", ContentType: "application/octet-stream", DownloadURL: "sum"},
			},
		},
		files: map[string][]byte{
			"archive": archive,
			"sum":     []byte(checksum(archive)),
		},
	}
}

func TestAcquire(t *testing.T) {
	src := newFakeSource(t, func(a []byte) string { return Digest(a) + "  GE-Proton7-8.tar.gz\n" })
	acq := NewAcquirer(src, zerolog.Nop())
	dest := t.TempDir()

	var progressed int64
	res, err := acq.Acquire(context.Background(), Request{
		Kind:     tag.Proton,
		Progress: func(done, _ int64) { progressed = done },
	}, dest)
	require.NoError(t, err)
	assert.Equal(t, "GE-Proton7-8", res.DirectoryName)
	assert.Equal(t, filepath.Join(dest, "GE-Proton7-8"), res.Path)
	assert.Equal(t, "GE-Proton7-8", res.Release.TagName)
	assert.Equal(t, res.Size, progressed)
	assert.Equal(t, []string{"GE-Proton7-8.tar.gz", "GE-Proton7-8.sha512sum"}, src.downloads)
}

func TestAcquireChecksumMismatchSkipsExtraction(t *testing.T) {
	src := newFakeSource(t, func([]byte) string { return Digest([]byte("tampered")) + " x" })
	dest := filepath.Join(t.TempDir(), "compatibilitytools.d")

	_, err := NewAcquirer(src, zerolog.Nop()).Acquire(context.Background(), Request{Kind: tag.Proton}, dest)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.NoDirExists(t, dest)
}

func TestAcquireSkipChecksum(t *testing.T) {
	src := newFakeSource(t, func([]byte) string { return "bogus" })
	src.rel.Assets = src.rel.Assets[:1]

	res, err := NewAcquirer(src, zerolog.Nop()).Acquire(context.Background(), Request{Kind: tag.Proton, SkipChecksum: true}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "GE-Proton7-8", res.DirectoryName)
	assert.Equal(t, []string{"GE-Proton7-8.tar.gz"}, src.downloads)
}

func TestAcquireMissingChecksumAsset(t *testing.T) {
	src := newFakeSource(t, func([]byte) string { return "" })
	src.rel.Assets = src.rel.Assets[:1]

	_, err := NewAcquirer(src, zerolog.Nop()).Acquire(context.Background(), Request{Kind: tag.Proton}, t.TempDir())
	var missing *release.MissingAssetError
	assert.True(t, errors.As(err, &missing))
}
