package constraint

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/version"
)

// Kind identifies the variant held by a Constraint.
type Kind uint8

const (
	// KindWildcard matches every version ("*", "x", "", "latest").
	KindWildcard Kind = iota
	// KindExact matches versions equal to one version.
	KindExact
	// KindRange matches versions between optional lower and upper bounds.
	KindRange
	// KindUnion is an OR of AND-groups.
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindWildcard:
		return "wildcard"
	case KindExact:
		return "exact"
	case KindRange:
		return "range"
	case KindUnion:
		return "union"
	}
	return "unknown"
}

// Op is a comparison operator of a range bound.
type Op uint8

const (
	OpGT Op = iota + 1
	OpGTE
	OpLT
	OpLTE
)

func (o Op) String() string {
	switch o {
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	}
	return "?"
}

// Inclusive reports whether the bound admits its own version.
func (o Op) Inclusive() bool { return o == OpGTE || o == OpLTE }

// Bound is one side of a range.
type Bound struct {
	Op      Op
	Version version.Version
}

func (b Bound) admits(v version.Version) bool {
	c := version.Compare(v, b.Version)
	switch b.Op {
	case OpGT:
		return c > 0
	case OpGTE:
		return c >= 0
	case OpLT:
		return c < 0
	case OpLTE:
		return c <= 0
	}
	return false
}

func (b Bound) String() string { return b.Op.String() + b.Version.String() }

// Constraint is a parsed requirement expression. Shorthands (caret, tilde,
// x-ranges, hyphen ranges, Maven prefix ranges) are expanded into explicit
// ranges at parse time.
//
// Constraints are immutable values; Satisfies has no side effects.
type Constraint struct {
	kind   Kind
	raw    string
	family version.Family

	exact version.Version
	hard  bool

	lower, upper *Bound

	groups [][]Constraint
}

// Wildcard returns the constraint that admits every version of family.
func Wildcard(family version.Family) Constraint {
	return Constraint{kind: KindWildcard, raw: "*", family: family}
}

// Exact returns the constraint admitting only versions equal to v.
func Exact(v version.Version) Constraint {
	return Constraint{kind: KindExact, raw: v.String(), family: v.Family(), exact: v}
}

// Range returns a range constraint. Either bound may be nil.
func Range(family version.Family, lower, upper *Bound) Constraint {
	c := Constraint{kind: KindRange, family: family, lower: lower, upper: upper}
	c.raw = c.Canonical()
	return c
}

// Kind returns the constraint variant.
func (c Constraint) Kind() Kind { return c.kind }

// Family returns the version family the constraint was parsed for.
func (c Constraint) Family() version.Family { return c.family }

// String returns the expression the constraint was parsed from.
func (c Constraint) String() string { return c.raw }

// ExactVersion returns the pinned version of an Exact constraint.
func (c Constraint) ExactVersion() (version.Version, bool) {
	return c.exact, c.kind == KindExact
}

// IsHardPin reports whether the constraint is a Maven hard requirement
// such as "[1.0]". A bare Maven version is a soft requirement.
func (c Constraint) IsHardPin() bool { return c.kind == KindExact && c.hard }

// Lower returns the lower bound of a Range.
func (c Constraint) Lower() (Bound, bool) {
	if c.kind != KindRange || c.lower == nil {
		return Bound{}, false
	}
	return *c.lower, true
}

// Upper returns the upper bound of a Range.
func (c Constraint) Upper() (Bound, bool) {
	if c.kind != KindRange || c.upper == nil {
		return Bound{}, false
	}
	return *c.upper, true
}

// Groups returns the OR-of-AND structure of the constraint. A non-union
// constraint is a single group holding itself.
func (c Constraint) Groups() [][]Constraint {
	if c.kind == KindUnion {
		return c.groups
	}
	return [][]Constraint{{c}}
}

// Satisfies reports whether v meets the constraint. Versions of a different
// family never satisfy a non-wildcard constraint.
func (c Constraint) Satisfies(v version.Version) bool {
	switch c.kind {
	case KindWildcard:
		return true
	case KindExact:
		return v.Family() == c.family && version.Compare(v, c.exact) == 0
	case KindRange:
		if v.Family() != c.family {
			return false
		}
		if c.lower != nil && !c.lower.admits(v) {
			return false
		}
		if c.upper != nil && !c.upper.admits(v) {
			return false
		}
		return true
	case KindUnion:
		for _, group := range c.groups {
			if allSatisfy(group, v) {
				return true
			}
		}
	}
	return false
}

func allSatisfy(group []Constraint, v version.Version) bool {
	for _, atom := range group {
		if !atom.Satisfies(v) {
			return false
		}
	}
	return true
}

// Satisfies reports whether v meets c.
func Satisfies(c Constraint, v version.Version) bool { return c.Satisfies(v) }

// SatisfiesAny reports whether v meets at least one of cs.
func SatisfiesAny(cs []Constraint, v version.Version) bool {
	for _, c := range cs {
		if c.Satisfies(v) {
			return true
		}
	}
	return false
}

// Canonical renders the desugared form, e.g. ">=1.2.3 <2.0.0" for "^1.2.3".
func (c Constraint) Canonical() string {
	switch c.kind {
	case KindWildcard:
		return "*"
	case KindExact:
		if c.hard {
			return "[" + c.exact.String() + "]"
		}
		return "=" + c.exact.String()
	case KindRange:
		var parts []string
		if c.lower != nil {
			parts = append(parts, c.lower.String())
		}
		if c.upper != nil {
			parts = append(parts, c.upper.String())
		}
		if len(parts) == 0 {
			return "*"
		}
		return strings.Join(parts, " ")
	case KindUnion:
		groups := make([]string, len(c.groups))
		for i, group := range c.groups {
			atoms := make([]string, len(group))
			for j, atom := range group {
				atoms[j] = atom.Canonical()
			}
			groups[i] = strings.Join(atoms, " ")
		}
		return strings.Join(groups, " || ")
	}
	return ""
}
