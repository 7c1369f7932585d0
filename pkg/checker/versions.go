package checker

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/version"
)

const (
	dateBasedMajor    = 1900 // Majors above this are release dates, e.g. 20030203
	dateBasedExpected = 100  // Current majors from here on are date-based themselves
)

// typeSuffixes are Maven version tokens naming a build flavour.
var typeSuffixes = []string{"jre", "android", "java"}

// candidates returns the available versions an update may move to, before
// ignore rules, in ascending order.
func (c *Checker) candidates() []version.Version {
	var out []version.Version
	for _, v := range c.available {
		if v.IsPrerelease() && !c.wantsPrerelease(v) {
			continue
		}
		if c.isDateBased(v) && !c.wantsDateBased() {
			continue
		}
		if !c.matchesType(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// wantsPrerelease reports whether the pre-release v may be a candidate:
// always when pre-releases are allowed, otherwise only when the current
// version is a pre-release of the same release.
func (c *Checker) wantsPrerelease(v version.Version) bool {
	if c.in.Options.AllowPrerelease {
		return true
	}
	return c.hasCurrent && c.current.IsPrerelease() && c.current.Release() == v.Release()
}

func (c *Checker) isDateBased(v version.Version) bool {
	major, ok := v.Major()
	return ok && major > dateBasedMajor
}

func (c *Checker) wantsDateBased() bool {
	if !c.hasCurrent {
		return false
	}
	major, ok := c.current.Major()
	return ok && major >= dateBasedExpected
}

// matchesType keeps a Maven "-jre" version on "-jre" builds and an
// "-android" one on "-android" builds.
func (c *Checker) matchesType(v version.Version) bool {
	if c.in.Family != version.Maven || !c.hasCurrent {
		return true
	}
	return versionType(c.current.String()) == versionType(v.String())
}

func versionType(raw string) string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool { return r == '.' || r == '-' })
	for _, t := range typeSuffixes {
		for _, tok := range tokens {
			if tok == t {
				return t
			}
		}
	}
	return ""
}

func (c *Checker) notIgnored(vs []version.Version) []version.Version {
	return constraint.Reject(c.in.Ignored, vs)
}

// AllVersionsIgnored reports whether ignore rules removed every version
// that would otherwise be a candidate.
func (c *Checker) AllVersionsIgnored() bool {
	for _, ig := range c.in.Ignored {
		if ig.Kind() == constraint.KindWildcard {
			return true
		}
	}
	cands := c.candidates()
	return len(cands) > 0 && len(c.notIgnored(cands)) == 0
}

// LatestVersion returns the highest published version that is not
// ignored, not a pre-release (unless the current version is a pre-release
// of the same release), not a
// date-based release (unless the current version is one) and, for Maven,
// of the same build type as the current version.
func (c *Checker) LatestVersion() (version.Version, bool) {
	return version.Max(c.notIgnored(c.candidates()))
}

// IsVulnerable reports whether v is affected by any advisory for the
// dependency.
func (c *Checker) IsVulnerable(v version.Version) bool {
	for _, a := range c.advisories {
		if a.IsVulnerable(v) {
			return true
		}
	}
	return false
}

// Vulnerable reports whether the current version is affected. A dependency
// whose current version is unknown is never reported vulnerable.
func (c *Checker) Vulnerable() bool {
	return c.hasCurrent && c.IsVulnerable(c.current)
}

// LowestSecurityFixVersion returns the smallest candidate above the
// current version that no advisory affects.
func (c *Checker) LowestSecurityFixVersion() (version.Version, bool) {
	for _, v := range c.notIgnored(c.candidates()) {
		if c.IsVulnerable(v) {
			continue
		}
		if c.hasCurrent && version.Compare(v, c.current) <= 0 {
			continue
		}
		return v, true
	}
	return version.Version{}, false
}

// PreferredVersion returns the version an update aims for: the lowest
// security fix when the current version is vulnerable, the latest version
// otherwise.
func (c *Checker) PreferredVersion() (version.Version, bool) {
	if c.Vulnerable() {
		return c.LowestSecurityFixVersion()
	}
	return c.LatestVersion()
}

// PreferredResolvableVersion returns the preferred version when it can be
// reached by rewriting this dependency's requirements. A dependency sharing
// its property with others has no resolvable version of its own; with
// FullUnlock it resolves when every sibling can move along.
func (c *Checker) PreferredResolvableVersion() (version.Version, bool) {
	if c.SharedProperty() && !(c.in.Options.FullUnlock && c.LatestVersionResolvableWithFullUnlock()) {
		return version.Version{}, false
	}
	return c.PreferredVersion()
}

// LatestResolvableVersionWithNoUnlock returns the highest candidate every
// current requirement already admits.
func (c *Checker) LatestResolvableVersionWithNoUnlock() (version.Version, bool) {
	vs := c.notIgnored(c.candidates())
	for _, r := range c.in.Dependency.Requirements {
		if r.IsNil() {
			continue
		}
		con, err := r.Constraint(c.in.Family)
		if err != nil {
			return version.Version{}, false
		}
		vs = constraint.Filter(con, vs)
	}
	return version.Max(vs)
}
