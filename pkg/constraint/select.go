package constraint

import (
	"github.com/matzehuels/stackbump/pkg/version"
)

// HighestSatisfying returns the greatest version in vs that satisfies c.
// Between equal versions the tie-break of version.Max applies. It reports
// false when no version satisfies c.
func HighestSatisfying(c Constraint, vs []version.Version) (version.Version, bool) {
	var (
		best  version.Version
		found bool
	)
	for _, v := range vs {
		if !c.Satisfies(v) {
			continue
		}
		if !found || version.PreferOver(v, best) {
			best, found = v, true
		}
	}
	return best, found
}

// Filter returns the versions in vs that satisfy c, in their original order.
func Filter(c Constraint, vs []version.Version) []version.Version {
	var out []version.Version
	for _, v := range vs {
		if c.Satisfies(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject returns the versions in vs that satisfy none of cs.
func Reject(cs []Constraint, vs []version.Version) []version.Version {
	var out []version.Version
	for _, v := range vs {
		if !SatisfiesAny(cs, v) {
			out = append(out, v)
		}
	}
	return out
}
