package crates

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

const DefaultBaseURL = "https://crates.io/api/v1"

// Client provides access to the crates.io package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
//
// The client includes a User-Agent header as required by crates.io API policy.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": integrations.UserAgent,
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates", cacheTTL, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at an alternative registry API.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// Releases lists the published versions of a crate, oldest first.
//
// Yanked versions are excluded since Cargo will not select them.
//
// Returns:
//   - [integrations.ErrNotFound] if the crate doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) Releases(ctx context.Context, crate string, refresh bool) ([]deps.Release, error) {
	crate = strings.TrimSpace(crate)

	var releases []deps.Release
	err := c.Cached(ctx, crate, refresh, &releases, func() error {
		return c.fetch(ctx, crate, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetch(ctx context.Context, crate string, out *[]deps.Release) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, integrations.URLEncode(crate)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	releases := make([]deps.Release, 0, len(data.Versions))
	for _, v := range data.Versions {
		if v.Yanked {
			continue
		}
		releases = append(releases, deps.Release{Version: v.Num, Published: integrations.ParseTime(v.CreatedAt)})
	}
	// The API lists newest first.
	slices.Reverse(releases)
	*out = releases
	return nil
}

type crateResponse struct {
	Crate struct {
		Name       string `json:"name"`
		MaxVersion string `json:"max_version"`
	} `json:"crate"`
	Versions []struct {
		Num       string `json:"num"`
		Yanked    bool   `json:"yanked"`
		CreatedAt string `json:"created_at"`
	} `json:"versions"`
}
