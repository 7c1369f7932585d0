package checker

import (
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// LatestVersionResolvableWithFullUnlock reports whether the dependency and
// every sibling sharing its property can move to the preferred version
// together. It requires that:
//
//   - the property is shared and its definition can be rewritten;
//   - every sibling publishes the target (a sibling whose versions are
//     unknown blocks, since its move could not be verified);
//   - no sibling is already past the target;
//   - every sibling reads the property as its whole requirement, so a
//     single new value fits all of them.
func (c *Checker) LatestVersionResolvableWithFullUnlock() bool {
	_, ok := c.fullUnlockTarget()
	return ok
}

func (c *Checker) fullUnlockTarget() (version.Version, bool) {
	if !c.SharedProperty() || !c.RequirementsUnlockable() {
		return version.Version{}, false
	}
	target, ok := c.PreferredVersion()
	if !ok {
		return version.Version{}, false
	}
	if c.hasCurrent && version.Compare(target, c.current) <= 0 {
		return version.Version{}, false
	}
	for _, name := range c.siblings {
		sib, ok := deps.FindDependency(c.in.AllDependencies, name)
		if !ok {
			return version.Version{}, false
		}
		if published, listed := c.in.SiblingVersions[name]; !listed || !version.Contains(published, target) {
			return version.Version{}, false
		}
		if cur, ok := currentVersion(sib, c.in.Family); ok && version.Compare(cur, target) > 0 {
			return version.Version{}, false
		}
		if !c.readsWholeProperty(sib) {
			return version.Version{}, false
		}
	}
	return target, true
}

// readsWholeProperty reports whether every occurrence of sib that reads a
// shared property uses the property's value unchanged, rather than
// combining it with other text or properties.
func (c *Checker) readsWholeProperty(sib deps.Dependency) bool {
	if c.in.Graph == nil {
		return true
	}
	for _, r := range sib.Requirements {
		if r.PropertyName() == "" || r.IsNil() {
			continue
		}
		def, err := c.in.Graph.ResolveProperty(r.PropertyName(), r.File)
		if err != nil || def.Value != r.Requirement {
			return false
		}
	}
	return true
}

// UpdatedDependenciesAfterFullUnlock returns the dependency and every
// sibling moved to the preferred version, with requirements rewritten.
// Either all of them move or none do: NO_RESOLVABLE_VERSION is returned
// when any sibling cannot follow.
func (c *Checker) UpdatedDependenciesAfterFullUnlock() ([]deps.Dependency, error) {
	target, ok := c.fullUnlockTarget()
	if !ok {
		return nil, errors.New(errors.ErrCodeNoResolvableVersion,
			"%s and the dependencies sharing its version cannot move together", c.in.Dependency.Name)
	}
	out := []deps.Dependency{c.moved(c.in.Dependency, target)}
	for _, name := range c.siblings {
		sib, _ := deps.FindDependency(c.in.AllDependencies, name)
		out = append(out, c.moved(sib, target))
	}
	return out, nil
}

// UpdatedDependency returns the dependency after an update at the given
// unlock level, or false when none is possible.
func (c *Checker) UpdatedDependency(unlock Unlock) (deps.Dependency, bool) {
	if !c.CanUpdate(unlock) {
		return deps.Dependency{}, false
	}
	switch unlock {
	case UnlockNone:
		target, _ := c.LatestResolvableVersionWithNoUnlock()
		d := c.in.Dependency.Clone()
		d.PreviousVersion, d.Version = d.Version, target.String()
		d.PreviousRequirements = c.in.Dependency.Clone().Requirements
		return d, true
	case UnlockOwn:
		target, _ := c.PreferredResolvableVersion()
		return c.moved(c.in.Dependency, target), true
	}
	return deps.Dependency{}, false
}

// moved returns dep at target with the property-derived and literal
// requirements rewritten.
func (c *Checker) moved(dep deps.Dependency, target version.Version) deps.Dependency {
	out := dep.Clone()
	out.PreviousVersion = dep.Version
	out.Version = target.String()
	out.PreviousRequirements = dep.Clone().Requirements
	out.Requirements = updatedRequirements(dep.Requirements, c.in.Family, target, c.in.Options.RequirementsStrategy)
	return out
}
