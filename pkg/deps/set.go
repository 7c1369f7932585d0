package deps

import (
	"slices"
	"strings"
)

// DependencySet accumulates dependencies by name, merging the occurrences of
// a dependency declared in several files or several times in one file.
type DependencySet struct {
	byName map[string]int
	deps   []Dependency
}

// NewDependencySet returns an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{byName: make(map[string]int)}
}

// Add merges d into the set. Requirements are appended in call order; the
// first non-empty Version wins.
func (s *DependencySet) Add(d Dependency) {
	i, ok := s.byName[d.Name]
	if !ok {
		s.byName[d.Name] = len(s.deps)
		s.deps = append(s.deps, d.Clone())
		return
	}
	existing := &s.deps[i]
	if existing.Version == "" {
		existing.Version = d.Version
	}
	for _, r := range d.Requirements {
		existing.Requirements = append(existing.Requirements, r.Clone())
	}
}

// Len returns the number of distinct dependencies.
func (s *DependencySet) Len() int { return len(s.deps) }

// Dependencies returns the merged dependencies sorted by name.
func (s *DependencySet) Dependencies() []Dependency {
	out := make([]Dependency, len(s.deps))
	copy(out, s.deps)
	slices.SortStableFunc(out, func(a, b Dependency) int { return strings.Compare(a.Name, b.Name) })
	return out
}
