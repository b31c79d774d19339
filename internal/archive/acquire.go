// Package archive downloads, verifies and unpacks GE release tarballs.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"geman/internal/release"
	"geman/internal/tag"
)

// Source resolves releases and downloads their assets.
type Source interface {
	FetchRelease(ctx context.Context, kind tag.Kind, rawTag string) (release.Release, error)
	Download(ctx context.Context, asset release.Asset, progress release.ProgressFunc) ([]byte, error)
}

// Request describes one acquisition.
type Request struct {
	Kind tag.Kind
	// Tag selects a release; empty means the latest.
	Tag string
	// Release skips resolution when already known.
	Release *release.Release
	// SkipChecksum disables verification against the published checksum.
	SkipChecksum bool
	// Progress receives archive download progress.
	Progress release.ProgressFunc
}

// Result is a successfully extracted release.
type Result struct {
	Release release.Release
	// Path is the extracted top-level directory.
	Path string
	// DirectoryName is the base name of Path.
	DirectoryName string
	// Size is the compressed archive size in bytes.
	Size int64
}

// Acquirer runs the download, verify and extract pipeline.
type Acquirer struct {
	src Source
	log zerolog.Logger
}

// NewAcquirer returns an Acquirer backed by src.
func NewAcquirer(src Source, log zerolog.Logger) *Acquirer {
	return &Acquirer{src: src, log: log}
}

// Acquire downloads the requested release, verifies it unless told not to,
// and unpacks it into dest. Nothing is extracted when verification fails.
func (a *Acquirer) Acquire(ctx context.Context, req Request, dest string) (Result, error) {
	var rel release.Release
	if req.Release != nil {
		rel = *req.Release
	} else {
		fetched, err := a.src.FetchRelease(ctx, req.Kind, req.Tag)
		if err != nil {
			return Result{}, err
		}
		rel = fetched
	}
	if len(rel.Assets) == 0 {
		return Result{}, &release.NoAssetsError{Tag: rel.TagName, Kind: req.Kind}
	}

	archiveAsset, err := rel.ArchiveAsset()
	if err != nil {
		return Result{}, err
	}
	var checksumAsset release.Asset
	if !req.SkipChecksum {
		if checksumAsset, err = rel.ChecksumAsset(); err != nil {
			return Result{}, err
		}
	}

	logger := a.log.With().Str("tag", rel.TagName).Str("kind", req.Kind.String()).Logger()

	logger.Info().Str("asset", archiveAsset.Name).Msg("downloading archive")
	data, err := a.src.Download(ctx, archiveAsset, req.Progress)
	if err != nil {
		return Result{}, fmt.Errorf("download archive %s: %w", archiveAsset.Name, err)
	}

	if !req.SkipChecksum {
		sum, err := a.src.Download(ctx, checksumAsset, nil)
		if err != nil {
			return Result{}, fmt.Errorf("download checksum %s: %w", checksumAsset.Name, err)
		}
		if err := VerifyChecksum(archiveAsset.Name, data, string(sum)); err != nil {
			logger.Error().Err(err).Msg("checksum verification failed")
			return Result{}, err
		}
		logger.Debug().Msg("checksum verified")
	} else {
		logger.Warn().Msg("checksum verification skipped")
	}

	path, err := Extract(req.Kind, archiveAsset.Name, bytes.NewReader(data), dest)
	if err != nil {
		return Result{}, err
	}
	logger.Info().Str("path", path).Msg("extracted")

	return Result{
		Release:       rel,
		Path:          path,
		DirectoryName: filepath.Base(path),
		Size:          int64(len(data)),
	}, nil
}
