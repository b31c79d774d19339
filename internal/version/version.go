// Package version pairs a release tag with the tool kind it belongs to.
package version

import (
	"cmp"
	"fmt"

	"geman/internal/tag"
)

// Version identifies an upstream release of one compatibility tool.
type Version struct {
	Tag  tag.Tag  `json:"tag"`
	Kind tag.Kind `json:"kind"`
}

// Versioned is implemented by anything that carries a Version.
type Versioned interface {
	Identity() Version
}

// New builds a Version from a raw tag string.
func New(rawTag string, kind tag.Kind) Version {
	return Version{Tag: tag.New(rawTag), Kind: kind}
}

// Proton returns a Proton GE version.
func Proton(rawTag string) Version { return New(rawTag, tag.Proton) }

// Wine returns a Wine GE version.
func Wine(rawTag string) Version { return New(rawTag, tag.Wine) }

// LoL returns a Wine GE (LoL) version.
func LoL(rawTag string) Version { return New(rawTag, tag.LoL) }

// Identity implements Versioned.
func (v Version) Identity() Version { return v }

// Equal reports whether both tag and kind match.
func (v Version) Equal(other Version) bool {
	return v.Kind == other.Kind && v.Tag.Equal(other.Tag)
}

// Compare orders by raw tag, then kind.
func (v Version) Compare(other Version) int {
	if c := v.Tag.Compare(other.Tag); c != 0 {
		return c
	}
	return cmp.Compare(v.Kind, other.Kind)
}

func (v Version) String() string {
	return fmt.Sprintf("%s (%s)", v.Tag, v.Kind.ToolName())
}
