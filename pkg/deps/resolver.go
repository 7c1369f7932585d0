package deps

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/stackbump/pkg/version"
)

// Release is one published version as reported by a registry.
type Release struct {
	Version   string    `json:"version"`
	Published time.Time `json:"published,omitzero"`
}

// Fetcher retrieves the published versions of a package from a registry.
type Fetcher interface {
	// Releases lists every published version of name. If refresh is true,
	// cached data is bypassed.
	Releases(ctx context.Context, name string, refresh bool) ([]Release, error)
}

// Resolver returns the parsed, ordered versions available for a dependency.
type Resolver interface {
	// Versions returns the available versions of name in ascending order.
	// Strings the family cannot parse are skipped.
	Versions(ctx context.Context, name string, refresh bool) ([]version.Version, error)
	// Name returns the resolver's identifier (e.g., "maven", "npm").
	Name() string
}

// Registry implements Resolver by wrapping a Fetcher.
type Registry struct {
	name    string
	family  version.Family
	fetcher Fetcher
}

// NewRegistry creates a Resolver that parses the Fetcher's releases in family.
func NewRegistry(name string, family version.Family, fetcher Fetcher) *Registry {
	return &Registry{name: name, family: family, fetcher: fetcher}
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Family returns the version family releases are parsed in.
func (r *Registry) Family() version.Family { return r.family }

// Versions fetches and parses the releases of name.
func (r *Registry) Versions(ctx context.Context, name string, refresh bool) ([]version.Version, error) {
	releases, err := r.fetcher.Releases(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return ParseReleases(releases, r.family), nil
}

// ParseReleases converts releases into versions, keeping publication times
// and registry order. Unparsable strings are skipped.
func ParseReleases(releases []Release, family version.Family) []version.Version {
	out := make([]version.Version, 0, len(releases))
	for _, rel := range releases {
		v, err := version.Parse(rel.Version, family)
		if err != nil {
			continue
		}
		out = append(out, v.WithPublished(rel.Published))
	}
	return version.Sorted(out)
}

// VersionsOf fetches the versions of every name concurrently using up to
// workers goroutines. Failures are reported per name; a cancelled context
// stops outstanding fetches.
func VersionsOf(ctx context.Context, res Resolver, names []string, workers int, refresh bool) (map[string][]version.Version, map[string]error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	type result struct {
		name string
		vs   []version.Version
		err  error
	}

	jobs := make(chan string, workers*2)
	results := make(chan result, workers*2)
	var wg sync.WaitGroup

	for range min(workers, max(len(names), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{name: name, err: err}
					continue
				}
				vs, err := res.Versions(ctx, name, refresh)
				results <- result{name: name, vs: vs, err: err}
			}
		}()
	}

	go func() {
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				jobs <- name
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	versions := make(map[string][]version.Version, len(names))
	var failures map[string]error
	for r := range results {
		if r.err != nil {
			if failures == nil {
				failures = make(map[string]error)
			}
			failures[r.name] = r.err
			continue
		}
		versions[r.name] = r.vs
	}
	return versions, failures
}
