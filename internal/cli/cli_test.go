package cli

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geman/internal/archive"
	"geman/internal/paths"
	"geman/internal/release"
	"geman/internal/tools"
)

const testTag = "GE-Proton9-27"

func protonArchive(t *testing.T) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: testTag + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
	body := []byte("#!/bin/sh\n")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: testTag + "/proton", Typeflag: tar.TypeReg, Mode: 0o755, Size: int64(len(body))}))
	_, err := tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	var gzBuf bytes.Buffer
	zw := gzip.NewWriter(&gzBuf)
	_, err = zw.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return gzBuf.Bytes()
}

// setup points geman at a temporary home and a fake GitHub API.
func setup(t *testing.T) (paths.Paths, string) {
	t.Helper()
	data := protonArchive(t)
	sum := archive.Digest(data) + "  " + testTag + ".tar.gz\n"

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/GloriousEggroll/proton-ge-custom/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(release.Release{
			TagName: testTag,
			Assets: []release.Asset{
				{Name: testTag + ".tar.gz", ContentType: "application/gzip", Size: int64(len(data)), DownloadURL: srv.URL + "/dl/archive"},
				{Name: testTag + ".sha512sum", ContentType: "application/octet-stream", DownloadURL: srv.URL + "/dl/sum"},
			},
		})
	})
	mux.HandleFunc("GET /dl/archive", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(data) })
	mux.HandleFunc("GET /dl/sum", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(sum)) })
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	root := t.TempDir()
	p := paths.New(filepath.Join(root, "data"), filepath.Join(root, "config"), filepath.Join(root, "cache"), filepath.Join(root, "state"))
	prev := resolvePaths
	resolvePaths = func() paths.Paths { return p }
	t.Cleanup(func() { resolvePaths = prev })

	cfgFile := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("github_api_url: "+srv.URL+"\nlog_level: debug\n"), 0o644))
	return p, cfgFile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddListRemove(t *testing.T) {
	p, cfg := setup(t)

	out, err := run(t, "--config", cfg, "--no-progress", "add", "proton")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Installed "+testTag)
	assert.FileExists(t, filepath.Join(p.SteamToolsDir, testTag, "proton"))
	assert.FileExists(t, p.RegistryFile)

	out, err = run(t, "--config", cfg, "add", "proton")
	require.NoError(t, err, out)
	assert.Contains(t, out, "already managed")

	out, err = run(t, "--config", cfg, "--json", "list", "--kind", "proton")
	require.NoError(t, err, out)
	var entries []tools.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, testTag, entries[0].Tag.Value())
	assert.False(t, entries[0].Active)

	out, err = run(t, "--config", cfg, "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, testTag)

	out, err = run(t, "--config", cfg, "list", "--file-system", "--kind", "p")
	require.NoError(t, err, out)
	assert.Contains(t, out, "  "+testTag)

	out, err = run(t, "--config", cfg, "remove", "proton", testTag)
	require.NoError(t, err, out)
	assert.NoDirExists(t, filepath.Join(p.SteamToolsDir, testTag))

	out, err = run(t, "--config", cfg, "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "No managed versions.")
}

func TestAddWithApply(t *testing.T) {
	p, cfg := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.SteamConfig), 0o755))
	steam := "\"InstallConfigStore\"\n{\n\t\"CompatToolMapping\"\n\t{\n\t\t\"0\"\n\t\t{\n\t\t\t\"name\"\t\t\"proton_8\"\n\t\t}\n\t}\n}\n"
	require.NoError(t, os.WriteFile(p.SteamConfig, []byte(steam), 0o644))

	out, err := run(t, "--config", cfg, "add", "proton", "--apply")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Steam now uses "+testTag)

	data, err := os.ReadFile(p.SteamConfig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"`+testTag+`"`)

	out, err = run(t, "--config", cfg, "remove", "proton", testTag)
	assert.ErrorIs(t, err, tools.ErrVersionInUse, out)
}

func TestApplyReportsPreviousVersion(t *testing.T) {
	p, cfg := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(p.SteamConfig), 0o755))
	steam := "\"InstallConfigStore\"\n{\n\t\"CompatToolMapping\"\n\t{\n\t\t\"0\"\n\t\t{\n\t\t\t\"name\"\t\t\"proton_8\"\n\t\t}\n\t}\n}\n"
	require.NoError(t, os.WriteFile(p.SteamConfig, []byte(steam), 0o644))

	out, err := run(t, "--config", cfg, "--no-progress", "add", "proton")
	require.NoError(t, err, out)

	out, err = run(t, "--config", cfg, "apply", "proton")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Steam now uses "+testTag+" (was proton_8)")

	// Re-adding a managed release with --apply still switches Steam over.
	require.NoError(t, os.WriteFile(p.SteamConfig, []byte(steam), 0o644))
	out, err = run(t, "--config", cfg, "--no-progress", "add", "proton", "--apply")
	require.NoError(t, err, out)
	assert.Contains(t, out, "already managed")
	assert.Contains(t, out, "Steam now uses "+testTag)

	data, err := os.ReadFile(p.SteamConfig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"`+testTag+`"`)
}

type deadlineRecorder struct {
	next      http.RoundTripper
	requests  int
	deadlines int
}

func (d *deadlineRecorder) RoundTrip(r *http.Request) (*http.Response, error) {
	d.requests++
	if _, ok := r.Context().Deadline(); ok {
		d.deadlines++
	}
	return d.next.RoundTrip(r)
}

func TestRequestsCarryNoDeadline(t *testing.T) {
	_, cfg := setup(t)
	rec := &deadlineRecorder{next: http.DefaultTransport}
	prev := http.DefaultClient.Transport
	http.DefaultClient.Transport = rec
	t.Cleanup(func() { http.DefaultClient.Transport = prev })

	out, err := run(t, "--config", cfg, "--no-progress", "add", "proton")
	require.NoError(t, err, out)
	out, err = run(t, "--config", cfg, "check", "--kind", "proton", "--refresh")
	require.NoError(t, err, out)

	assert.GreaterOrEqual(t, rec.requests, 4)
	assert.Zero(t, rec.deadlines, "downloads and tag scans must not time out")
}

func TestCheckJSON(t *testing.T) {
	_, cfg := setup(t)

	out, err := run(t, "--config", cfg, "--json", "check", "--kind", "proton")
	require.NoError(t, err, out)
	var results []tools.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, testTag, results[0].Latest)
	assert.False(t, results[0].Cached)

	out, err = run(t, "--config", cfg, "check", "--kind", "proton")
	require.NoError(t, err, out)
	assert.Contains(t, out, "cache")
}

func TestCleanNothingToRemove(t *testing.T) {
	_, cfg := setup(t)

	out, err := run(t, "--config", cfg, "clean", "proton", "--before", "GE-Proton8-1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Nothing to remove.")
}

func TestUnknownKind(t *testing.T) {
	_, cfg := setup(t)

	_, err := run(t, "--config", cfg, "add", "dxvk")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown tool kind"))
}

func TestConfigShowHidesToken(t *testing.T) {
	_, cfg := setup(t)
	t.Setenv("GITHUB_TOKEN", "secret-token")

	out, err := run(t, "--config", cfg, "--json", "config", "show")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "RegistryFile")
}
