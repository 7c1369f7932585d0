package checker

import (
	"slices"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/propgraph"
	"github.com/matzehuels/stackbump/pkg/updater"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Options tune how candidates are chosen.
type Options struct {
	AllowPrerelease      bool             // Consider pre-releases even when the current version is stable
	RequirementsStrategy updater.Strategy // How requirement texts are rewritten
	FullUnlock           bool             // Allow moving dependencies that share a property
	SecurityOnly         bool             // Only update vulnerable dependencies
}

// Input is everything the checker needs about one dependency.
type Input struct {
	Dependency deps.Dependency
	Family     version.Family

	// Available lists the published versions, in registry order.
	Available  []version.Version
	Ignored    []constraint.Constraint
	Advisories []deps.SecurityAdvisory

	// Graph and AllDependencies describe the rest of the file set and are
	// used to find dependencies that share a property with this one.
	Graph           *propgraph.Graph
	AllDependencies []deps.Dependency

	// SiblingVersions holds the published versions of each sibling, keyed
	// by dependency name. A sibling with no entry blocks a full unlock.
	SiblingVersions map[string][]version.Version

	Options Options
}

// Unlock says how much of the manifest an update may change.
type Unlock int

const (
	UnlockNone Unlock = iota // Keep requirements; only pick within them
	UnlockOwn                // Rewrite the dependency's own requirements
	UnlockAll                // Also move dependencies sharing its property
)

var unlockNames = map[Unlock]string{
	UnlockNone: "none",
	UnlockOwn:  "own",
	UnlockAll:  "all",
}

func (u Unlock) String() string {
	if s, ok := unlockNames[u]; ok {
		return s
	}
	return "unknown"
}

// Checker evaluates one dependency. It is immutable after New and safe for
// concurrent use.
type Checker struct {
	in         Input
	available  []version.Version // ascending
	current    version.Version
	hasCurrent bool
	advisories []deps.SecurityAdvisory
	siblings   []string
}

// New prepares a Checker for in.
func New(in Input) *Checker {
	c := &Checker{
		in:         in,
		available:  version.Sorted(in.Available),
		advisories: deps.AdvisoriesFor(in.Advisories, in.Dependency.Name),
	}
	c.current, c.hasCurrent = currentVersion(in.Dependency, in.Family)
	c.siblings = c.findSiblings()
	return c
}

// Dependency returns the dependency being checked.
func (c *Checker) Dependency() deps.Dependency { return c.in.Dependency }

// CurrentVersion returns the version in use: the dependency's resolved
// version when known, otherwise the highest version its requirements pin
// or start from.
func (c *Checker) CurrentVersion() (version.Version, bool) {
	return c.current, c.hasCurrent
}

func currentVersion(dep deps.Dependency, family version.Family) (version.Version, bool) {
	if dep.Version != "" {
		if v, err := version.Parse(dep.Version, family); err == nil {
			return v, true
		}
	}
	var found []version.Version
	for _, r := range dep.Requirements {
		if r.IsNil() {
			continue
		}
		con, err := r.Constraint(family)
		if err != nil {
			continue
		}
		if v, ok := con.ExactVersion(); ok {
			found = append(found, v)
			continue
		}
		for _, group := range con.Groups() {
			for _, atom := range group {
				if lo, ok := atom.Lower(); ok {
					found = append(found, lo.Version)
				}
			}
		}
	}
	return version.Max(found)
}

// propertyRequirements returns the occurrences that read a property.
func (c *Checker) propertyRequirements() []deps.Requirement {
	var out []deps.Requirement
	for _, r := range c.in.Dependency.Requirements {
		if r.PropertyName() != "" {
			out = append(out, r)
		}
	}
	return out
}

// source returns the file defining the property r reads.
func (c *Checker) source(r deps.Requirement) string {
	if s := r.PropertySource(); s != "" {
		return s
	}
	if c.in.Graph != nil {
		if def, err := c.in.Graph.ResolveProperty(r.PropertyName(), r.File); err == nil {
			return def.File
		}
	}
	return r.File
}

// findSiblings lists the other dependencies reading a property this
// dependency reads, sorted by name.
func (c *Checker) findSiblings() []string {
	var out []string
	add := func(name string) {
		if name != c.in.Dependency.Name && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	for _, r := range c.propertyRequirements() {
		name, src := r.PropertyName(), c.source(r)
		if c.in.Graph != nil {
			for _, d := range c.in.Graph.DependentsOfProperty(name, src) {
				add(d)
			}
		}
		for _, other := range c.in.AllDependencies {
			if readsProperty(other, name, src) {
				add(other.Name)
			}
		}
	}
	slices.Sort(out)
	return out
}

func readsProperty(dep deps.Dependency, name, source string) bool {
	for _, r := range dep.Requirements {
		if r.PropertyName() == name && r.PropertySource() == source {
			return true
		}
	}
	return false
}

// SharedProperty reports whether the version comes from a property that
// another dependency also reads.
func (c *Checker) SharedProperty() bool { return len(c.siblings) > 0 }

// Siblings returns the names of the dependencies sharing a property with
// this one.
func (c *Checker) Siblings() []string { return slices.Clone(c.siblings) }

// RequirementsUnlockable reports whether the dependency's requirements can
// be rewritten at all. A requirement read from a built-in property or from
// a property defined in a file fetched from a registry cannot.
func (c *Checker) RequirementsUnlockable() bool {
	for _, r := range c.propertyRequirements() {
		if c.in.Graph == nil {
			continue
		}
		def, err := c.in.Graph.ResolveProperty(r.PropertyName(), r.File)
		if err != nil || def.Builtin {
			return false
		}
		if n, ok := c.in.Graph.Node(def.File); ok && n.External {
			return false
		}
	}
	return true
}

// UpdatedRequirements returns the dependency's requirements rewritten to
// admit target. Occurrences without requirement text stay empty, and
// texts that cannot be rewritten in their own style are kept.
func (c *Checker) UpdatedRequirements(target version.Version) []deps.Requirement {
	return updatedRequirements(c.in.Dependency.Requirements, c.in.Family, target, c.in.Options.RequirementsStrategy)
}

func updatedRequirements(reqs []deps.Requirement, family version.Family, target version.Version, strategy updater.Strategy) []deps.Requirement {
	out := make([]deps.Requirement, len(reqs))
	for i, r := range reqs {
		out[i] = r.Clone()
		if r.IsNil() {
			continue
		}
		if text, ok := updater.UpdateRequirement(r.Requirement, family, target, strategy); ok {
			out[i].Requirement = text
		}
	}
	return out
}

func requirementsChanged(before, after []deps.Requirement) bool {
	for i := range before {
		if before[i].Requirement != after[i].Requirement {
			return true
		}
	}
	return false
}
