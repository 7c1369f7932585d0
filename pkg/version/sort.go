package version

import (
	"slices"
)

// Sort sorts vs in ascending version order. Equal versions keep their
// relative order.
func Sort(vs []Version) {
	slices.SortStableFunc(vs, Compare)
}

// Sorted returns an ascending copy of vs.
func Sorted(vs []Version) []Version {
	out := slices.Clone(vs)
	Sort(out)
	return out
}

// Max returns the greatest version in vs.
//
// Between equal versions, the one with the later published timestamp wins
// when both carry one; otherwise the element listed later wins. This makes
// "1.0" and "1.0.0" from a registry resolve to whichever was released last.
func Max(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if PreferOver(v, best) {
			best = v
		}
	}
	return best, true
}

// PreferOver reports whether candidate should replace best when selecting a
// maximum from a list in which candidate appears after best.
func PreferOver(candidate, best Version) bool {
	c := Compare(candidate, best)
	if c != 0 {
		return c > 0
	}
	if !candidate.published.IsZero() && !best.published.IsZero() {
		return !candidate.published.Before(best.published)
	}
	return true
}

// Min returns the least version in vs. Between equal versions the first
// listed wins.
func Min(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if Compare(v, best) < 0 {
			best = v
		}
	}
	return best, true
}

// ParseAll parses every string in raws, skipping the ones that are not
// valid versions of family. Registries routinely list junk tags; one bad
// entry must not hide the rest.
func ParseAll(raws []string, family Family) []Version {
	out := make([]Version, 0, len(raws))
	for _, raw := range raws {
		v, err := Parse(raw, family)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Contains reports whether vs holds a version equal to v.
func Contains(vs []Version, v Version) bool {
	return slices.ContainsFunc(vs, v.Equal)
}
