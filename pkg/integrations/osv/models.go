package osv

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Package identifies a package within an OSV ecosystem.
type Package struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

// Vulnerability is the subset of an OSV record used for advisories.
type Vulnerability struct {
	ID       string     `json:"id"`
	Summary  string     `json:"summary,omitempty"`
	Aliases  []string   `json:"aliases,omitempty"`
	Affected []Affected `json:"affected"`
}

// Affected lists the affected versions of one package.
type Affected struct {
	Package  Package  `json:"package"`
	Ranges   []Range  `json:"ranges,omitempty"`
	Versions []string `json:"versions,omitempty"`
}

// Range is an ordered list of events. Only SEMVER and ECOSYSTEM ranges are
// meaningful here; GIT ranges refer to commits.
type Range struct {
	Type   string  `json:"type"`
	Events []Event `json:"events"`
}

// Event is one boundary of a range; exactly one field is set.
type Event struct {
	Introduced   string `json:"introduced,omitempty"`
	Fixed        string `json:"fixed,omitempty"`
	LastAffected string `json:"last_affected,omitempty"`
	Limit        string `json:"limit,omitempty"`
}

// ToAdvisories converts OSV records into one advisory per record.
//
// Each introduced/fixed pair becomes a vulnerable range [introduced, fixed),
// and introduced/last_affected becomes [introduced, last_affected]. An
// introduced event of "0" has no lower bound. Explicit version lists are
// used only when a record has no usable ranges. Records whose boundaries
// cannot be parsed in family are dropped.
func ToAdvisories(vulns []Vulnerability, name string, family version.Family) []deps.SecurityAdvisory {
	var out []deps.SecurityAdvisory
	for _, v := range vulns {
		var vulnerable []constraint.Constraint
		var explicit []string
		for _, a := range v.Affected {
			if a.Package.Name != name {
				continue
			}
			for _, r := range a.Ranges {
				if r.Type != "SEMVER" && r.Type != "ECOSYSTEM" {
					continue
				}
				vulnerable = append(vulnerable, rangeConstraints(r.Events, family)...)
			}
			explicit = append(explicit, a.Versions...)
		}
		if len(vulnerable) == 0 {
			for _, raw := range explicit {
				if ver, ok := parse(raw, family); ok {
					vulnerable = append(vulnerable, constraint.Exact(ver))
				}
			}
		}
		if len(vulnerable) == 0 {
			continue
		}
		out = append(out, deps.SecurityAdvisory{
			ID:             v.ID,
			DependencyName: name,
			Vulnerable:     vulnerable,
		})
	}
	return out
}

func rangeConstraints(events []Event, family version.Family) []constraint.Constraint {
	var (
		out   []constraint.Constraint
		lower *constraint.Bound
		open  bool
	)
	for _, e := range events {
		switch {
		case e.Introduced != "":
			open = true
			lower = nil
			if e.Introduced == "0" {
				continue
			}
			ver, ok := parse(e.Introduced, family)
			if !ok {
				return nil
			}
			lower = &constraint.Bound{Op: constraint.OpGTE, Version: ver}
		case e.Fixed != "", e.LastAffected != "":
			if !open {
				continue
			}
			raw, op := e.Fixed, constraint.OpLT
			if raw == "" {
				raw, op = e.LastAffected, constraint.OpLTE
			}
			ver, ok := parse(raw, family)
			if !ok {
				return nil
			}
			out = append(out, constraint.Range(family, lower, &constraint.Bound{Op: op, Version: ver}))
			open, lower = false, nil
		}
	}
	if open {
		out = append(out, constraint.Range(family, lower, nil))
	}
	return out
}

// parse reads an OSV version string. Go versions are recorded without the
// leading "v" that module versions require.
func parse(raw string, family version.Family) (version.Version, bool) {
	if family == version.Gomod && !strings.HasPrefix(raw, "v") {
		raw = "v" + raw
	}
	v, err := version.Parse(raw, family)
	return v, err == nil
}
