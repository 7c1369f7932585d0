package goproxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/module"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations"
)

const DefaultBaseURL = "https://proxy.golang.org"

// Client provides access to the Go module proxy API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another GOPROXY.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// Releases lists the tagged versions of a module from the @v/list endpoint.
//
// Module paths with uppercase letters are escaped per the module proxy
// protocol. A module with no tagged versions falls back to @latest, which
// reports its newest pseudo-version. The @latest timestamp is attached to
// the matching release.
//
// Returns:
//   - [integrations.ErrNotFound] if the module doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) Releases(ctx context.Context, mod string, refresh bool) ([]deps.Release, error) {
	mod = strings.TrimSpace(mod)
	escaped, err := module.EscapePath(mod)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", mod, err)
	}

	var releases []deps.Release
	err = c.Cached(ctx, mod, refresh, &releases, func() error {
		return c.fetch(ctx, mod, escaped, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetch(ctx context.Context, mod, escaped string, out *[]deps.Release) error {
	body, err := c.GetText(ctx, fmt.Sprintf("%s/%s/@v/list", c.baseURL, escaped))
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: go module %s", err, mod)
		}
		return err
	}
	releases := parseList(body)

	latest, err := c.fetchLatest(ctx, escaped)
	switch {
	case err == nil:
		found := false
		for i := range releases {
			if releases[i].Version == latest.Version {
				releases[i].Published = integrations.ParseTime(latest.Time)
				found = true
			}
		}
		if !found {
			releases = append(releases, deps.Release{Version: latest.Version, Published: integrations.ParseTime(latest.Time)})
		}
	case len(releases) == 0:
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: go module %s", err, mod)
		}
		return err
	}
	*out = releases
	return nil
}

func (c *Client) fetchLatest(ctx context.Context, escaped string) (latestResponse, error) {
	var data latestResponse
	err := c.Get(ctx, fmt.Sprintf("%s/%s/@latest", c.baseURL, escaped), &data)
	return data, err
}

// parseList reads the newline-separated version list, skipping blanks.
func parseList(body string) []deps.Release {
	var releases []deps.Release
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		v := strings.TrimSpace(scanner.Text())
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		releases = append(releases, deps.Release{Version: v})
	}
	return releases
}

type latestResponse struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
}
