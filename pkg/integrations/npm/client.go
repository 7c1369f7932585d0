package npm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations"
)

const DefaultBaseURL = "https://registry.npmjs.org"

// Packument is the subset of an npm registry document the engine needs.
type Packument struct {
	Name       string            `json:"name"`
	DistTags   map[string]string `json:"dist_tags"`
	Releases   []deps.Release    `json:"releases"`
	Deprecated []string          `json:"deprecated,omitempty"`
}

type Client struct {
	*integrations.Client
	baseURL string
}

func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npm", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// FetchPackument retrieves every version of pkg with its publication time.
// Releases are ordered by publication time, oldest first; versions without
// a timestamp come first in version-string order.
func (c *Client) FetchPackument(ctx context.Context, pkg string, refresh bool) (*Packument, error) {
	pkg = integrations.NormalizePkgName(pkg)

	var p Packument
	err := c.Cached(ctx, pkg, refresh, &p, func() error {
		return c.fetch(ctx, pkg, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Releases implements [deps.Fetcher].
func (c *Client) Releases(ctx context.Context, pkg string, refresh bool) ([]deps.Release, error) {
	p, err := c.FetchPackument(ctx, pkg, refresh)
	if err != nil {
		return nil, err
	}
	return p.Releases, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, p *Packument) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+escapeName(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	releases := make([]deps.Release, 0, len(data.Versions))
	var deprecated []string
	for v, details := range data.Versions {
		releases = append(releases, deps.Release{Version: v, Published: integrations.ParseTime(data.Time[v])})
		if details.Deprecated != "" {
			deprecated = append(deprecated, v)
		}
	}
	slices.SortFunc(releases, func(a, b deps.Release) int {
		if c := a.Published.Compare(b.Published); c != 0 {
			return c
		}
		return strings.Compare(a.Version, b.Version)
	})
	slices.Sort(deprecated)

	*p = Packument{
		Name:       data.Name,
		DistTags:   data.DistTags,
		Releases:   releases,
		Deprecated: deprecated,
	}
	return nil
}

// escapeName keeps the leading @ of a scoped package and escapes the slash,
// which is how the registry expects "@scope/name" to be requested.
func escapeName(pkg string) string {
	if strings.HasPrefix(pkg, "@") {
		return "@" + integrations.URLEncode(pkg[1:])
	}
	return integrations.URLEncode(pkg)
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
	Time     map[string]string         `json:"time"`
}

type versionDetails struct {
	Deprecated string `json:"deprecated"`
}
