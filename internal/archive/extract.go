package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"geman/internal/tag"
)

var (
	// ErrEmptyArchive is returned when a tarball has no entries.
	ErrEmptyArchive = errors.New("archive contains no entries")
	// ErrUnsafeEntry is returned when an entry or a link would reach outside
	// the destination.
	ErrUnsafeEntry = errors.New("entry escapes destination")
)

// DecodeError reports an archive that could not be decompressed or read as a
// tar stream.
type DecodeError struct {
	Archive string
	Kind    tag.Kind
	Format  string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s archive %s for %s: %v", e.Format, e.Archive, e.Kind.ToolName(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Format returns the compression used for kind's archives.
func Format(kind tag.Kind) string {
	if kind.IsWine() {
		return "xz"
	}
	return "gzip"
}

func decompress(kind tag.Kind, r io.Reader) (io.Reader, func(), error) {
	if kind.IsWine() {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() {}, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return gz, func() { _ = gz.Close() }, nil
}

// Extract decompresses r with the algorithm for kind and unpacks it into
// dest. The first entry names the archive's top-level directory; the joined
// path is returned. Partially written files are left in place on failure.
func Extract(kind tag.Kind, name string, r io.Reader, dest string) (string, error) {
	format := Format(kind)
	stream, closeFn, err := decompress(kind, r)
	if err != nil {
		return "", &DecodeError{Archive: name, Kind: kind, Format: format, Err: err}
	}
	defer closeFn()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("prepare destination: %w", err)
	}

	src := &trackingReader{r: stream}
	tr := tar.NewReader(src)
	topLevel := ""
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &DecodeError{Archive: name, Kind: kind, Format: format + "+tar", Err: err}
		}

		if topLevel == "" {
			topLevel = topLevelName(header.Name)
			if topLevel == "" {
				return "", fmt.Errorf("archive %s: first entry %q has no directory name", name, header.Name)
			}
		}
		if err := writeEntry(tr, header, dest); err != nil {
			if src.err != nil || errors.Is(err, io.ErrUnexpectedEOF) {
				return "", &DecodeError{Archive: name, Kind: kind, Format: format, Err: err}
			}
			return "", err
		}
	}

	if topLevel == "" {
		return "", fmt.Errorf("archive %s: %w", name, ErrEmptyArchive)
	}
	return filepath.Join(dest, topLevel), nil
}

// trackingReader remembers the first read failure of the decompressed
// stream so it can be told apart from filesystem errors.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}

func topLevelName(entry string) string {
	clean := path.Clean(strings.TrimPrefix(entry, "./"))
	if clean == "." || clean == "/" || strings.HasPrefix(clean, "../") {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(clean, "/"), "/")
	return first
}

// entryPath resolves name below dest and rejects entries that escape it.
func entryPath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !within(dest, target) {
		return "", fmt.Errorf("entry %q: %w", name, ErrUnsafeEntry)
	}
	return target, nil
}

func within(dest, target string) bool {
	rel, err := filepath.Rel(dest, target)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// symlinkTarget checks that a symlink placed at target stays inside dest.
func symlinkTarget(dest, target, linkname string) error {
	if linkname == "" || filepath.IsAbs(linkname) || path.IsAbs(linkname) {
		return fmt.Errorf("link %s -> %q: %w", target, linkname, ErrUnsafeEntry)
	}
	if !within(dest, filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))) {
		return fmt.Errorf("link %s -> %q: %w", target, linkname, ErrUnsafeEntry)
	}
	return nil
}

// checkParents fails when a directory between dest and target is a symlink,
// so that a later entry cannot be written through an earlier link.
func checkParents(dest, target string) error {
	rel, err := filepath.Rel(dest, filepath.Dir(target))
	if err != nil || rel == "." {
		return nil
	}
	cur := dest
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("inspect %s: %w", cur, err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("parent %s is a link: %w", cur, ErrUnsafeEntry)
		}
	}
	return nil
}

// removeLink drops an existing symlink at target so the new entry replaces
// it instead of being written through it.
func removeLink(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("replace link %s: %w", target, err)
	}
	return nil
}

func writeEntry(tr *tar.Reader, header *tar.Header, dest string) error {
	target, err := entryPath(dest, header.Name)
	if err != nil {
		return err
	}
	if err := checkParents(dest, target); err != nil {
		return err
	}
	mode := header.FileInfo().Mode().Perm()

	switch header.Typeflag {
	case tar.TypeDir:
		if err := removeLink(target); err != nil {
			return err
		}
		if err := os.MkdirAll(target, mode|0o700); err != nil {
			return fmt.Errorf("create dir %s: %w", target, err)
		}
	case tar.TypeReg, tar.TypeRegA:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("prepare file %s: %w", target, err)
		}
		if err := removeLink(target); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode|0o600)
		if err != nil {
			return fmt.Errorf("create file %s: %w", target, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("write file %s: %w", target, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", target, err)
		}
	case tar.TypeSymlink:
		if err := symlinkTarget(dest, target, header.Linkname); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("prepare link %s: %w", target, err)
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("replace link %s: %w", target, err)
		}
		if err := os.Symlink(header.Linkname, target); err != nil {
			return fmt.Errorf("create link %s: %w", target, err)
		}
	case tar.TypeLink:
		source, err := entryPath(dest, header.Linkname)
		if err != nil {
			return err
		}
		if err := checkParents(dest, source); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("prepare link %s: %w", target, err)
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("replace link %s: %w", target, err)
		}
		if err := os.Link(source, target); err != nil {
			return fmt.Errorf("create hard link %s: %w", target, err)
		}
	default:
		// Devices, fifos and pax metadata are not part of GE releases.
	}
	return nil
}
