package java

import (
	"context"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations/maven"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Language provides Java dependency handling via Maven repositories.
// Supports pom.xml and .mvn/extensions.xml files.
var Language = &deps.Language{
	Name:            "java",
	Family:          version.Maven,
	DefaultRegistry: "maven",
	RegistryAliases: map[string]string{"maven-central": "maven", "mvn": "maven"},
	FileTypes:       []string{"pom.xml", "extensions.xml"},
	NewResolver:     newResolver,
	NewParser:       func() deps.FileParser { return &POMParser{} },
	NormalizeName:   NormalizeCoordinate,
}

func newResolver(opts deps.RegistryOptions) deps.Resolver {
	c := maven.NewClient(opts.Cache, opts.TTL).WithBaseURL(opts.BaseURL)
	return deps.NewRegistry("maven", version.Maven, fetcher{c})
}

type fetcher struct{ *maven.Client }

func (f fetcher) Releases(ctx context.Context, name string, refresh bool) ([]deps.Release, error) {
	return f.Client.Releases(ctx, NormalizeCoordinate(name), refresh)
}

// NormalizeCoordinate converts filename-safe coordinates to Maven format.
// Since colons are not allowed in filenames (especially on Windows and in some
// build tools), underscores can be used as a substitute. This function converts
// "groupId_artifactId" to "groupId:artifactId" when no colon is present.
//
// Examples:
//   - "com.google.guava:guava" → "com.google.guava:guava" (unchanged)
//   - "com.google.guava_guava" → "com.google.guava:guava" (converted)
func NormalizeCoordinate(coord string) string {
	if strings.Contains(coord, ":") {
		return coord
	}
	// GroupIds follow reverse domain notation, so the last underscore is
	// the separator.
	if idx := strings.LastIndex(coord, "_"); idx != -1 {
		return coord[:idx] + ":" + coord[idx+1:]
	}
	return coord
}
