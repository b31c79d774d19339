package tools

import (
	"context"

	"geman/internal/tag"
	"geman/internal/version"
)

// CheckResult reports the newest upstream release of one kind.
type CheckResult struct {
	Kind    tag.Kind `json:"kind"`
	Latest  string   `json:"latest,omitempty"`
	Managed bool     `json:"managed"`
	Cached  bool     `json:"cached"`
	Error   string   `json:"error,omitempty"`
}

// Check looks up the latest upstream tag of each kind. Cached answers are
// used unless refresh is set.
func (m *Manager) Check(ctx context.Context, kinds []tag.Kind, refresh bool) []CheckResult {
	results := make([]CheckResult, 0, len(kinds))
	for _, kind := range kinds {
		res := CheckResult{Kind: kind}

		latest, cached := tag.Tag{}, false
		if !refresh {
			latest, cached = m.cache.Get(kind)
		}
		if !cached {
			fetched, err := m.releases.LatestTag(ctx, kind)
			if err != nil {
				res.Error = err.Error()
				results = append(results, res)
				continue
			}
			latest = fetched
			if err := m.cache.Put(kind, latest); err != nil {
				m.log.Warn().Err(err).Msg("update release cache")
			}
		}

		res.Latest = latest.Value()
		res.Cached = cached
		res.Managed = m.reg.Contains(version.Version{Tag: latest, Kind: kind})
		results = append(results, res)
	}
	return results
}
