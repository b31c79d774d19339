// Package registry persists the set of managed compatibility tool versions.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dchest/safefile"

	"geman/internal/tag"
	"geman/internal/version"
)

// ErrInvalidRange is wrapped by RangeError.
var ErrInvalidRange = errors.New("invalid version range")

// ErrLabelTooLong is returned by ValidateLabel.
var ErrLabelTooLong = errors.New("label is longer than 100 characters")

// MaxLabelLength bounds user supplied labels, in bytes.
const MaxLabelLength = 100

// ValidateLabel rejects labels longer than MaxLabelLength.
func ValidateLabel(label string) error {
	if len(label) > MaxLabelLength {
		return fmt.Errorf("%q: %w", label, ErrLabelTooLong)
	}
	return nil
}

// RangeError describes why a range query could not be ordered.
type RangeError struct {
	Start  version.Version
	End    version.Version
	Reason string
}

func (e *RangeError) Error() string {
	if e.End.Tag.IsZero() {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidRange, e.Start, e.Reason)
	}
	return fmt.Sprintf("%s: %s to %s: %s", ErrInvalidRange, e.Start, e.End, e.Reason)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// Registry is the in-memory collection of managed versions. Insertion order
// is kept for display.
type Registry struct {
	Versions []ManagedVersion `json:"versions"`
}

// Load reads the registry file. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save atomically replaces the registry file.
func (r *Registry) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare registry directory: %w", err)
	}

	versions := r.Versions
	if versions == nil {
		versions = []ManagedVersion{}
	}
	buf, err := json.MarshalIndent(Registry{Versions: versions}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	f, err := safefile.Create(path, 0o644)
	if err != nil {
		return fmt.Errorf("create registry temp: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := f.Commit(); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Len returns the number of managed versions.
func (r *Registry) Len() int { return len(r.Versions) }

// NextLabel returns the label an Add of v with the requested label would
// receive. An empty request means the raw tag. A taken label keeps its stem
// and gets a "_N" counter one above the highest in use, so a taken
// "TAG_1" becomes "TAG_2" rather than "TAG_1_1".
func (r *Registry) NextLabel(v version.Version, requested string) string {
	base := requested
	if base == "" {
		base = v.Tag.Value()
	}
	if !r.labelTaken(v, base) {
		return base
	}

	prefix := trimCounter(base) + "_"
	highest := 0
	for _, m := range r.Versions {
		if !m.Version.Equal(v) {
			continue
		}
		if n, ok := labelCounter(m.EffectiveLabel(), prefix); ok && n > highest {
			highest = n
		}
	}
	return prefix + strconv.Itoa(highest+1)
}

func (r *Registry) labelTaken(v version.Version, label string) bool {
	for _, m := range r.Versions {
		if m.sameKey(v, label) {
			return true
		}
	}
	return false
}

// trimCounter drops a trailing "_N" counter.
func trimCounter(label string) string {
	i := strings.LastIndexByte(label, '_')
	if i <= 0 || i == len(label)-1 {
		return label
	}
	for _, c := range label[i+1:] {
		if c < '0' || c > '9' {
			return label
		}
	}
	return label[:i]
}

func labelCounter(label, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(label, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Add records m. If its (tag, kind, label) is already present, a fresh label
// is synthesized instead of overwriting. The stored entry is returned.
func (r *Registry) Add(m ManagedVersion) ManagedVersion {
	label := r.NextLabel(m.Version, m.Label)
	if label == m.Tag.Value() {
		m.Label = ""
	} else {
		m.Label = label
	}
	r.Versions = append(r.Versions, m)
	return m
}

// Find returns the entry for v. Among several labelled installs of the same
// release the one carrying the default label wins, then the first added.
func (r *Registry) Find(v version.Version) (ManagedVersion, bool) {
	if i := r.index(v); i >= 0 {
		return r.Versions[i], true
	}
	return ManagedVersion{}, false
}

// FindLabel returns the entry for v with the given label.
func (r *Registry) FindLabel(v version.Version, label string) (ManagedVersion, bool) {
	if i := r.labelIndex(v, label); i >= 0 {
		return r.Versions[i], true
	}
	return ManagedVersion{}, false
}

// Contains reports whether any install of v is managed.
func (r *Registry) Contains(v version.Version) bool {
	return r.index(v) >= 0
}

// Remove deletes the entry Find would return.
func (r *Registry) Remove(v version.Version) (ManagedVersion, bool) {
	return r.removeAt(r.index(v))
}

// RemoveLabel deletes the entry for v with the given label.
func (r *Registry) RemoveLabel(v version.Version, label string) (ManagedVersion, bool) {
	return r.removeAt(r.labelIndex(v, label))
}

func (r *Registry) removeAt(i int) (ManagedVersion, bool) {
	if i < 0 {
		return ManagedVersion{}, false
	}
	removed := r.Versions[i]
	r.Versions = append(r.Versions[:i], r.Versions[i+1:]...)
	return removed, true
}

func (r *Registry) index(v version.Version) int {
	if i := r.labelIndex(v, v.Tag.Value()); i >= 0 {
		return i
	}
	for i, m := range r.Versions {
		if m.Version.Equal(v) {
			return i
		}
	}
	return -1
}

func (r *Registry) labelIndex(v version.Version, label string) int {
	if label == "" {
		label = v.Tag.Value()
	}
	for i, m := range r.Versions {
		if m.sameKey(v, label) {
			return i
		}
	}
	return -1
}

// OfKind returns the entries of one kind in insertion order.
func (r *Registry) OfKind(kind tag.Kind) []ManagedVersion {
	var out []ManagedVersion
	for _, m := range r.Versions {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// LatestByKind returns the entry of kind with the greatest semantic version.
func (r *Registry) LatestByKind(kind tag.Kind) (ManagedVersion, bool) {
	var (
		latest ManagedVersion
		found  bool
	)
	for _, m := range r.Versions {
		if m.Kind != kind {
			continue
		}
		if !found || tag.CompareSemver(m.Tag, latest.Tag) > 0 {
			latest = m
			found = true
		}
	}
	return latest, found
}

// LatestPerKind returns the latest entry for every kind present, in kind
// order.
func (r *Registry) LatestPerKind() []ManagedVersion {
	var out []ManagedVersion
	for _, kind := range tag.Kinds() {
		if m, ok := r.LatestByKind(kind); ok {
			out = append(out, m)
		}
	}
	return out
}

// Before returns entries of the cutoff's kind whose semantic version sorts
// strictly before it. Entries without a semantic version are skipped.
func (r *Registry) Before(cutoff version.Version) ([]ManagedVersion, error) {
	if _, ok := cutoff.Tag.Semver(); !ok {
		return nil, &RangeError{Start: cutoff, Reason: "cutoff has no semantic version"}
	}

	var out []ManagedVersion
	for _, m := range r.Versions {
		if m.Kind != cutoff.Kind {
			continue
		}
		if _, ok := m.Tag.Semver(); !ok {
			continue
		}
		if tag.CompareSemver(m.Tag, cutoff.Tag) < 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// InRange returns entries whose semantic version lies within [start, end].
func (r *Registry) InRange(start, end version.Version) ([]ManagedVersion, error) {
	switch {
	case start.Kind != end.Kind:
		return nil, &RangeError{Start: start, End: end, Reason: "bounds have different kinds"}
	case !hasSemver(start):
		return nil, &RangeError{Start: start, End: end, Reason: "start has no semantic version"}
	case !hasSemver(end):
		return nil, &RangeError{Start: start, End: end, Reason: "end has no semantic version"}
	case tag.CompareSemver(start.Tag, end.Tag) > 0:
		return nil, &RangeError{Start: start, End: end, Reason: "start is after end"}
	}

	var out []ManagedVersion
	for _, m := range r.Versions {
		if m.Kind != start.Kind || !hasSemver(m.Version) {
			continue
		}
		if tag.CompareSemver(m.Tag, start.Tag) >= 0 && tag.CompareSemver(m.Tag, end.Tag) <= 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

func hasSemver(v version.Version) bool {
	_, ok := v.Tag.Semver()
	return ok
}
