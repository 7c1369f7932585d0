package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stackbump/pkg/cache"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations"
)

// DefaultBaseURL is the Maven Central repository root.
const DefaultBaseURL = "https://repo.maven.apache.org/maven2"

// Client provides access to a Maven repository laid out like Maven Central.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Maven repository client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (nil disables caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "maven", cacheTTL, nil),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a mirror or repository manager.
func (c *Client) WithBaseURL(url string) *Client {
	if url != "" {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
	return c
}

// Releases lists every version of an artifact from its maven-metadata.xml.
//
// The coordinate parameter is "groupId:artifactId"; a trailing classifier
// ("groupId:artifactId:classifier") is ignored because classifiers share the
// artifact's versions. Versions are returned in the order the repository
// lists them, which is ascending by deployment.
//
// Returns:
//   - [integrations.ErrNotFound] if the artifact doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) Releases(ctx context.Context, coordinate string, refresh bool) ([]deps.Release, error) {
	groupID, artifactID, err := ParseCoordinate(coordinate)
	if err != nil {
		return nil, err
	}

	var releases []deps.Release
	err = c.Cached(ctx, "metadata:"+groupID+":"+artifactID, refresh, &releases, func() error {
		return c.fetchMetadata(ctx, groupID, artifactID, &releases)
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

func (c *Client) fetchMetadata(ctx context.Context, groupID, artifactID string, out *[]deps.Release) error {
	url := fmt.Sprintf("%s/%s/%s/maven-metadata.xml", c.baseURL, groupPath(groupID), artifactID)

	var meta metadata
	if err := c.GetXML(ctx, url, &meta); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, artifactID)
		}
		return err
	}

	updated := parseLastUpdated(meta.Versioning.LastUpdated)
	releases := make([]deps.Release, 0, len(meta.Versioning.Versions))
	for i, v := range meta.Versioning.Versions {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		r := deps.Release{Version: v}
		// Only the newest entry's deployment time is known.
		if i == len(meta.Versioning.Versions)-1 {
			r.Published = updated
		}
		releases = append(releases, r)
	}
	*out = releases
	return nil
}

// FetchPOM downloads the POM of a specific artifact version. It is used to
// supply parent POMs that are not part of the project's own files.
func (c *Client) FetchPOM(ctx context.Context, coordinate, version string, refresh bool) (string, error) {
	groupID, artifactID, err := ParseCoordinate(coordinate)
	if err != nil {
		return "", err
	}
	if version == "" {
		return "", fmt.Errorf("fetch pom for %s: empty version", coordinate)
	}

	var content string
	err = c.Cached(ctx, "pom:"+groupID+":"+artifactID+":"+version, refresh, &content, func() error {
		url := POMURL(c.baseURL, groupID, artifactID, version)
		body, err := c.GetText(ctx, url)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: pom %s:%s:%s", err, groupID, artifactID, version)
			}
			return err
		}
		content = body
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// POMURL returns the repository location of an artifact's POM.
func POMURL(baseURL, groupID, artifactID, version string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.pom", baseURL, groupPath(groupID), artifactID, version, artifactID, version)
}

// ParseCoordinate splits "groupId:artifactId[:classifier]".
func ParseCoordinate(coord string) (groupID, artifactID string, err error) {
	parts := strings.Split(coord, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid maven coordinate %q (expected groupId:artifactId)", coord)
	}
	return parts[0], parts[1], nil
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

// parseLastUpdated reads the yyyyMMddHHmmss stamp of maven-metadata.xml.
func parseLastUpdated(s string) time.Time {
	t, err := time.Parse("20060102150405", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

type metadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest      string   `xml:"latest"`
		Release     string   `xml:"release"`
		Versions    []string `xml:"versions>version"`
		LastUpdated string   `xml:"lastUpdated"`
	} `xml:"versioning"`
}
