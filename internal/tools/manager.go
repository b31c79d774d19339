// Package tools runs geman's commands against the registry, the release
// resolver, the archive pipeline and the host application configs.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"geman/internal/appconfig"
	"geman/internal/archive"
	"geman/internal/paths"
	"geman/internal/registry"
	"geman/internal/release"
	"geman/internal/tag"
	"geman/internal/version"
)

var (
	ErrNotManaged        = errors.New("version is not managed")
	ErrVersionInUse      = errors.New("version is the active tool")
	ErrDirectoryExists   = errors.New("directory already exists")
	ErrNoUserSettings    = errors.New("no user settings file")
	ErrNothingToRemove   = errors.New("no versions matched")
	ErrMissingRangeBound = errors.New("range needs both a start and an end")
)

// Releases is the upstream view the manager needs. *release.Client
// satisfies it.
type Releases interface {
	archive.Source
	LatestTag(ctx context.Context, kind tag.Kind) (tag.Tag, error)
}

// Manager owns the registry for the duration of one command.
type Manager struct {
	paths    paths.Paths
	reg      *registry.Registry
	releases Releases
	acquirer *archive.Acquirer
	cache    *release.LatestCache
	log      zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithLatestCache enables caching of upstream latest tags for Check.
func WithLatestCache(c *release.LatestCache) Option {
	return func(m *Manager) { m.cache = c }
}

// NewManager wires the command layer.
func NewManager(p paths.Paths, reg *registry.Registry, releases Releases, opts ...Option) *Manager {
	m := &Manager{
		paths:    p,
		reg:      reg,
		releases: releases,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.acquirer = archive.NewAcquirer(releases, m.log)
	return m
}

// Registry exposes the in-memory registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Paths returns the resolved locations.
func (m *Manager) Paths() paths.Paths { return m.paths }

// Save persists the registry.
func (m *Manager) Save() error {
	return m.reg.Save(m.paths.RegistryFile)
}

// lookup finds a managed version by tag and optional label.
func (m *Manager) lookup(kind tag.Kind, rawTag, label string) (registry.ManagedVersion, error) {
	v := version.New(rawTag, kind)
	var (
		mv registry.ManagedVersion
		ok bool
	)
	if label != "" {
		mv, ok = m.reg.FindLabel(v, label)
	} else {
		mv, ok = m.reg.Find(v)
	}
	if !ok {
		return registry.ManagedVersion{}, fmt.Errorf("%s: %w", v, ErrNotManaged)
	}
	return mv, nil
}

// activeDirectory returns the directory name the host application currently
// uses for kind. ok is false when it cannot be determined.
func (m *Manager) activeDirectory(kind tag.Kind) (string, bool) {
	cfg, err := appconfig.Read(m.paths.HostConfig(kind), kind)
	if err != nil {
		m.log.Debug().Err(err).Str("kind", kind.String()).Msg("active version unknown")
		return "", false
	}
	return cfg.ActiveVersion(), true
}

func (m *Manager) inUse(mv registry.ManagedVersion) bool {
	active, ok := m.activeDirectory(mv.Kind)
	return ok && active == mv.DirectoryName
}
