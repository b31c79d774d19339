package release

import (
	"errors"
	"fmt"

	"geman/internal/tag"
)

// ErrNoTags is returned when a tag scan reaches an empty page without finding
// a candidate.
var ErrNoTags = errors.New("no tags found")

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request %s: status %s", e.URL, e.Status)
	}
	return fmt.Sprintf("request %s: status %s: %s", e.URL, e.Status, e.Body)
}

// NoAssetsError is returned for releases without any attached files.
type NoAssetsError struct {
	Tag  string
	Kind tag.Kind
}

func (e *NoAssetsError) Error() string {
	return fmt.Sprintf("release %s of %s has no assets", e.Tag, e.Kind.ToolName())
}

// MissingAssetError is returned when a release lacks a required asset type.
type MissingAssetError struct {
	Tag   string
	Kind  tag.Kind
	Asset string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("release %s of %s has no %s asset", e.Tag, e.Kind.ToolName(), e.Asset)
}
