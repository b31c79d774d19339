// Package tag models upstream GE release tags and the semantic versions
// derived from them.
package tag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is an upstream release tag together with its derived semantic version.
// The zero value is the empty tag.
type Tag struct {
	value  string
	semver string
}

// New builds a tag from a raw upstream string. Tags whose semantic version
// cannot be derived are still valid; Semver reports them as absent.
func New(raw string) Tag {
	t := Tag{value: raw}
	if sv, err := DeriveSemver(raw); err == nil {
		t.semver = sv
	}
	return t
}

// Parse is the strict form of New and fails when no semantic version can be
// derived.
func Parse(raw string) (Tag, error) {
	sv, err := DeriveSemver(raw)
	if err != nil {
		return Tag{}, fmt.Errorf("parse tag %q: %w", raw, err)
	}
	return Tag{value: raw, semver: sv}, nil
}

// Value returns the raw upstream string.
func (t Tag) Value() string { return t.value }

func (t Tag) String() string { return t.value }

// Semver returns the derived semantic version, if any.
func (t Tag) Semver() (string, bool) {
	return t.semver, t.semver != ""
}

// IsZero reports whether t is the empty tag.
func (t Tag) IsZero() bool { return t.value == "" }

// Equal compares raw values.
func (t Tag) Equal(other Tag) bool { return t.value == other.value }

// Compare orders tags by raw value.
func (t Tag) Compare(other Tag) int { return strings.Compare(t.value, other.value) }

// Contains reports whether the raw value contains substr.
func (t Tag) Contains(substr string) bool { return strings.Contains(t.value, substr) }

type tagJSON struct {
	Value  string `json:"value"`
	Semver string `json:"semver"`
}

// MarshalJSON writes the raw value alongside the derived version for readers
// of the registry file.
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagJSON{Value: t.value, Semver: t.semver})
}

// UnmarshalJSON accepts the object form written by MarshalJSON as well as a
// bare string. The semantic version is always re-derived.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*t = New(raw)
		return nil
	}
	var obj tagJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode tag: %w", err)
	}
	*t = New(obj.Value)
	return nil
}
