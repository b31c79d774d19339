package release

import (
	"fmt"
	"strings"

	"geman/internal/tag"
	"geman/internal/version"
)

// Content types used to classify release assets.
const (
	contentTypeGzip     = "application/gzip"
	contentTypeXGzip    = "application/x-gzip"
	contentTypeXz       = "application/x-xz"
	contentTypeChecksum = "application/octet-stream"
)

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"browser_download_url"`
}

// IsArchive reports whether the asset is a compressed tarball.
func (a Asset) IsArchive() bool {
	switch mediaType(a.ContentType) {
	case contentTypeGzip, contentTypeXGzip, contentTypeXz:
		return true
	}
	return false
}

// IsChecksum reports whether the asset is the checksum file.
func (a Asset) IsChecksum() bool {
	return mediaType(a.ContentType) == contentTypeChecksum
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Release is a published GE release.
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`

	Kind tag.Kind `json:"-"`
}

// Tag returns the release tag.
func (r Release) Tag() tag.Tag { return tag.New(r.TagName) }

// Version returns the release identity.
func (r Release) Version() version.Version {
	return version.Version{Tag: r.Tag(), Kind: r.Kind}
}

// ArchiveAsset returns the first archive asset.
func (r Release) ArchiveAsset() (Asset, error) {
	for _, a := range r.Assets {
		if a.IsArchive() {
			return a, nil
		}
	}
	return Asset{}, &MissingAssetError{Tag: r.TagName, Kind: r.Kind, Asset: "archive"}
}

// ChecksumAsset returns the first checksum asset.
func (r Release) ChecksumAsset() (Asset, error) {
	for _, a := range r.Assets {
		if a.IsChecksum() {
			return a, nil
		}
	}
	return Asset{}, &MissingAssetError{Tag: r.TagName, Kind: r.Kind, Asset: "checksum"}
}

func (r Release) String() string {
	return fmt.Sprintf("%s (%s)", r.TagName, r.Kind.ToolName())
}

type tagEntry struct {
	Name string `json:"name"`
}
