package registry

import (
	"fmt"

	"geman/internal/version"
)

// ManagedVersion is a release that has been extracted into, or adopted by, a
// host application's tool directory.
type ManagedVersion struct {
	version.Version
	// Label disambiguates installs built from the same tag. Empty means the
	// raw tag value.
	Label string `json:"label,omitempty"`
	// DirectoryName is the folder name under the tool directory.
	DirectoryName string `json:"directory_name"`
}

// NewManaged creates a ManagedVersion with the default label.
func NewManaged(v version.Version, directoryName string) ManagedVersion {
	return ManagedVersion{Version: v, DirectoryName: directoryName}
}

// EffectiveLabel returns the label, falling back to the raw tag.
func (m ManagedVersion) EffectiveLabel() string {
	if m.Label != "" {
		return m.Label
	}
	return m.Tag.Value()
}

// HasCustomLabel reports whether the label differs from the raw tag.
func (m ManagedVersion) HasCustomLabel() bool {
	return m.EffectiveLabel() != m.Tag.Value()
}

func (m ManagedVersion) String() string {
	if m.HasCustomLabel() {
		return fmt.Sprintf("%s [%s] (%s)", m.Tag, m.EffectiveLabel(), m.Kind.ToolName())
	}
	return m.Version.String()
}

func (m ManagedVersion) sameKey(v version.Version, label string) bool {
	return m.Version.Equal(v) && m.EffectiveLabel() == label
}
