package osv

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations"
	"github.com/matzehuels/stackbump/pkg/version"
)

const DefaultBaseURL = "https://api.osv.dev/v1"

// maxPages bounds pagination for packages with very long histories.
const maxPages = 20

// Client queries the OSV.dev vulnerability database.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an OSV client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "osv", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another OSV-compatible API.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// Ecosystem returns the OSV ecosystem name for a version family.
func Ecosystem(family version.Family) string {
	switch family {
	case version.Maven:
		return "Maven"
	case version.Npm:
		return "npm"
	case version.Gomod:
		return "Go"
	case version.Cargo:
		return "crates.io"
	}
	return ""
}

// Query returns every vulnerability recorded for a package, following
// next_page_token until the result is complete.
func (c *Client) Query(ctx context.Context, ecosystem, name string, refresh bool) ([]Vulnerability, error) {
	var vulns []Vulnerability
	err := c.Cached(ctx, ecosystem+":"+name, refresh, &vulns, func() error {
		vulns = nil
		req := queryRequest{Package: Package{Name: name, Ecosystem: ecosystem}}
		for range maxPages {
			var resp queryResponse
			if err := c.PostJSON(ctx, c.baseURL+"/query", req, &resp); err != nil {
				return err
			}
			vulns = append(vulns, resp.Vulns...)
			if resp.NextPageToken == "" {
				return nil
			}
			req.PageToken = resp.NextPageToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vulns, nil
}

// Advisories queries OSV for name and converts the results into advisories
// whose constraints are expressed in family.
func (c *Client) Advisories(ctx context.Context, name string, family version.Family, refresh bool) ([]deps.SecurityAdvisory, error) {
	eco := Ecosystem(family)
	if eco == "" {
		return nil, nil
	}
	vulns, err := c.Query(ctx, eco, name, refresh)
	if err != nil {
		return nil, err
	}
	return ToAdvisories(vulns, name, family), nil
}

type queryRequest struct {
	Package   Package `json:"package"`
	PageToken string  `json:"page_token,omitempty"`
}

type queryResponse struct {
	Vulns         []Vulnerability `json:"vulns"`
	NextPageToken string          `json:"next_page_token"`
}
