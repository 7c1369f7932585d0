package checker

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Reason explains a Decision.
type Reason int

const (
	ReasonUpdate              Reason = iota + 1 // Move to Target
	ReasonSecurityFix                           // Move to Target, which fixes a vulnerability
	ReasonUpToDate                              // Already at the preferred version
	ReasonNoResolvableVersion                   // No candidate can be reached
	ReasonSharedProperty                        // Version is shared and the siblings cannot follow
	ReasonAllVersionsIgnored                    // Ignore rules removed every candidate
	ReasonNotVulnerable                         // Security-only run and nothing to fix
)

var reasonNames = map[Reason]string{
	ReasonUpdate:              "update",
	ReasonSecurityFix:         "security_fix",
	ReasonUpToDate:            "up_to_date",
	ReasonNoResolvableVersion: "no_resolvable_version",
	ReasonSharedProperty:      "shared_property",
	ReasonAllVersionsIgnored:  "all_versions_ignored",
	ReasonNotVulnerable:       "not_vulnerable",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	for reason, name := range reasonNames {
		if name == string(text) {
			*r = reason
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown decision reason %q", text)
}

// Updates reports whether the decision moves any dependency.
func (r Reason) Updates() bool { return r == ReasonUpdate || r == ReasonSecurityFix }

// Decision is the outcome of checking one dependency. Dependencies holds
// the updated dependency records (more than one after a full unlock) and
// is empty unless Reason.Updates().
type Decision struct {
	Target       *version.Version  `json:"target,omitempty"`
	Dependencies []deps.Dependency `json:"dependencies,omitempty"`
	Reason       Reason            `json:"reason"`
	Detail       string            `json:"detail,omitempty"`
}

// UpToDate reports whether the dependency is already at the latest
// acceptable version. Without a known current version it is up to date
// when rewriting its requirements to the latest version changes nothing.
func (c *Checker) UpToDate() bool {
	latest, ok := c.LatestVersion()
	if !ok {
		return false
	}
	if c.hasCurrent {
		return version.Compare(latest, c.current) <= 0
	}
	reqs := c.in.Dependency.Requirements
	return !requirementsChanged(reqs, c.UpdatedRequirements(latest))
}

// CanUpdate reports whether an update at the given unlock level is
// possible.
func (c *Checker) CanUpdate(unlock Unlock) bool {
	if c.AllVersionsIgnored() || c.UpToDate() {
		return false
	}
	if !c.hasCurrent {
		if unlock == UnlockNone {
			return false
		}
		target, ok := c.PreferredResolvableVersion()
		return ok && c.RequirementsUnlockable() &&
			requirementsChanged(c.in.Dependency.Requirements, c.UpdatedRequirements(target))
	}

	switch unlock {
	case UnlockNone:
		v, ok := c.LatestResolvableVersionWithNoUnlock()
		return ok && version.Compare(v, c.current) > 0
	case UnlockOwn:
		v, ok := c.PreferredResolvableVersion()
		return ok && version.Compare(v, c.current) > 0 && c.RequirementsUnlockable()
	case UnlockAll:
		return c.LatestVersionResolvableWithFullUnlock()
	}
	return false
}

// Decide runs the checks in order and returns what to do. Ambiguity is a
// reason, never an error: a dependency that cannot move yields no
// dependencies to write.
func (c *Checker) Decide() Decision {
	name := c.in.Dependency.Name
	if c.AllVersionsIgnored() {
		return Decision{Reason: ReasonAllVersionsIgnored, Detail: fmt.Sprintf("all versions of %s are ignored", name)}
	}
	vulnerable := c.Vulnerable()
	if c.in.Options.SecurityOnly && !vulnerable {
		return Decision{Reason: ReasonNotVulnerable}
	}
	reason := ReasonUpdate
	if vulnerable {
		reason = ReasonSecurityFix
	}

	preferred, ok := c.PreferredVersion()
	if !ok {
		detail := fmt.Sprintf("no acceptable version of %s is published", name)
		if vulnerable {
			detail = fmt.Sprintf("no published version of %s fixes its advisories", name)
		}
		return Decision{Reason: ReasonNoResolvableVersion, Detail: detail}
	}
	if c.UpToDate() {
		return Decision{Target: &preferred, Reason: ReasonUpToDate}
	}

	if c.SharedProperty() {
		if c.in.Options.FullUnlock && c.CanUpdate(UnlockAll) {
			updated, err := c.UpdatedDependenciesAfterFullUnlock()
			if err == nil {
				return Decision{Target: &preferred, Dependencies: updated, Reason: reason}
			}
		}
		return Decision{
			Target: &preferred,
			Reason: ReasonSharedProperty,
			Detail: fmt.Sprintf("version of %s is shared with %s", name, strings.Join(c.siblings, ", ")),
		}
	}

	if d, ok := c.UpdatedDependency(UnlockOwn); ok {
		return Decision{Target: &preferred, Dependencies: []deps.Dependency{d}, Reason: reason}
	}
	detail := fmt.Sprintf("requirements of %s cannot be rewritten to %s", name, preferred)
	if !c.RequirementsUnlockable() {
		detail = fmt.Sprintf("version of %s is defined outside the project", name)
	}
	return Decision{Target: &preferred, Reason: ReasonNoResolvableVersion, Detail: detail}
}
