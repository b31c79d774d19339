// Package release resolves GE releases against the GitHub REST API.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"geman/internal/tag"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"

	protonRepo = "GloriousEggroll/proton-ge-custom"
	wineRepo   = "GloriousEggroll/wine-ge-custom"

	userAgent     = "geman"
	acceptHeader  = "application/vnd.github.v3+json"
	maxErrorBody  = 64 << 10
	lolTagMarker  = "LoL"
	firstTagsPage = 1
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches release metadata and assets. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	doer    Doer
	baseURL string
	token   string
	log     zerolog.Logger
	onPage  PageObserver
}

// PageObserver is told which tag page a Wine scan is about to fetch.
type PageObserver func(kind tag.Kind, page int)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken sends a bearer token with API requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithPageObserver reports Wine tag scan progress to fn.
func WithPageObserver(fn PageObserver) Option {
	return func(c *Client) { c.onPage = fn }
}

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client. No timeout is set on the default transport;
// archives are several hundred megabytes.
func NewClient(opts ...Option) *Client {
	c := &Client{
		doer:    http.DefaultClient,
		baseURL: DefaultBaseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func repoFor(kind tag.Kind) string {
	if kind.IsWine() {
		return wineRepo
	}
	return protonRepo
}

// FetchRelease returns the release for rawTag, or the latest release of kind
// when rawTag is empty.
func (c *Client) FetchRelease(ctx context.Context, kind tag.Kind, rawTag string) (Release, error) {
	if rawTag == "" {
		if kind.IsWine() {
			latest, err := c.LatestWineTag(ctx, kind)
			if err != nil {
				return Release{}, err
			}
			rawTag = latest.Value()
		} else {
			return c.fetchRelease(ctx, kind, c.repoURL(kind, "releases", "latest"))
		}
	}
	return c.fetchRelease(ctx, kind, c.repoURL(kind, "releases", "tags", rawTag))
}

// LatestTag returns the newest upstream tag for kind.
func (c *Client) LatestTag(ctx context.Context, kind tag.Kind) (tag.Tag, error) {
	if kind.IsWine() {
		return c.LatestWineTag(ctx, kind)
	}
	rel, err := c.FetchRelease(ctx, kind, "")
	if err != nil {
		return tag.Tag{}, err
	}
	return rel.Tag(), nil
}

// LatestWineTag scans the Wine GE tag list page by page and returns the
// greatest tag of the requested variant found on the first page that has
// one. An empty page ends the scan with ErrNoTags.
func (c *Client) LatestWineTag(ctx context.Context, kind tag.Kind) (tag.Tag, error) {
	for page := firstTagsPage; ; page++ {
		endpoint := c.repoURL(kind, "tags") + fmt.Sprintf("?page=%d", page)
		if c.onPage != nil {
			c.onPage(kind, page)
		}

		var entries []tagEntry
		if err := c.getJSON(ctx, endpoint, &entries); err != nil {
			return tag.Tag{}, err
		}
		if len(entries) == 0 {
			return tag.Tag{}, fmt.Errorf("%s: %w", kind.ToolName(), ErrNoTags)
		}

		if best, ok := selectLatest(entries, kind); ok {
			c.log.Debug().Str("kind", kind.String()).Int("page", page).Str("tag", best.Value()).Msg("resolved latest tag")
			return best, nil
		}
		c.log.Debug().Str("kind", kind.String()).Int("page", page).Msg("no matching tag on page")
	}
}

func selectLatest(entries []tagEntry, kind tag.Kind) (tag.Tag, bool) {
	var (
		best  tag.Tag
		found bool
	)
	for _, e := range entries {
		if strings.Contains(e.Name, lolTagMarker) != kind.IsLoL() {
			continue
		}
		t := tag.New(e.Name)
		if _, ok := t.Semver(); !ok {
			continue
		}
		if !found || tag.CompareSemver(t, best) > 0 {
			best = t
			found = true
		}
	}
	return best, found
}

func (c *Client) fetchRelease(ctx context.Context, kind tag.Kind, endpoint string) (Release, error) {
	var rel Release
	if err := c.getJSON(ctx, endpoint, &rel); err != nil {
		return Release{}, err
	}
	rel.Kind = kind
	if len(rel.Assets) == 0 {
		return Release{}, &NoAssetsError{Tag: rel.TagName, Kind: kind}
	}
	c.log.Debug().Str("kind", kind.String()).Str("tag", rel.TagName).Int("assets", len(rel.Assets)).Msg("fetched release")
	return rel, nil
}

func (c *Client) repoURL(kind tag.Kind, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL + "/repos/" + repoFor(kind) + "/" + strings.Join(escaped, "/")
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.get(ctx, endpoint, acceptHeader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// get issues a GET and returns the response only for status 200.
func (c *Client) get(ctx context.Context, endpoint, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" && strings.HasPrefix(endpoint, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug().Str("url", endpoint).Msg("GET")
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}
