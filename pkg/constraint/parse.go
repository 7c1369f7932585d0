package constraint

import (
	"strconv"
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Parse parses a requirement expression in the grammar of family.
//
// npm, Cargo and Go expressions split on "||" into OR groups and on
// whitespace, "," or "&&" into AND terms. Maven expressions use bracket
// ranges. Malformed input fails with MALFORMED_REQUIREMENT; an expression
// that parses but excludes every version is not an error.
func Parse(expr string, family version.Family) (Constraint, error) {
	var (
		c   Constraint
		err error
	)
	if family == version.Maven {
		c, err = parseMaven(expr)
	} else {
		c, err = parseSemverExpr(expr, family)
	}
	if err != nil {
		return Constraint{}, err
	}
	c.raw = expr
	return c, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string, family version.Family) Constraint {
	c, err := Parse(expr, family)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseAll parses every expression, failing on the first malformed one.
func ParseAll(exprs []string, family version.Family) ([]Constraint, error) {
	out := make([]Constraint, 0, len(exprs))
	for _, expr := range exprs {
		c, err := Parse(expr, family)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func malformed(expr, format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedRequirement, "malformed requirement %q: "+format, append([]any{expr}, args...)...)
}

// union builds a constraint from OR groups, collapsing the single-atom case.
func union(family version.Family, groups [][]Constraint) Constraint {
	if len(groups) == 1 && len(groups[0]) == 1 {
		return groups[0][0]
	}
	for _, group := range groups {
		for _, atom := range group {
			if atom.kind == KindWildcard && len(group) == 1 {
				return Wildcard(family)
			}
		}
	}
	return Constraint{kind: KindUnion, family: family, groups: groups}
}

// =============================================================================
// npm / Cargo / Go grammar
// =============================================================================

var operators = []string{"==", ">=", "<=", "~>", ">", "<", "=", "^", "~"}

func parseSemverExpr(expr string, family version.Family) (Constraint, error) {
	s := strings.NewReplacer("(", " ", ")", " ").Replace(expr)
	var groups [][]Constraint
	for _, part := range strings.Split(s, "||") {
		group, err := parseAndGroup(expr, part, family)
		if err != nil {
			return Constraint{}, err
		}
		groups = append(groups, group)
	}
	return union(family, groups), nil
}

func parseAndGroup(expr, part string, family version.Family) ([]Constraint, error) {
	fields := strings.FieldsFunc(strings.ReplaceAll(part, "&&", " "), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ','
	})
	if len(fields) == 0 {
		return []Constraint{Wildcard(family)}, nil
	}

	var atoms []Constraint
	for i := 0; i < len(fields); i++ {
		term := fields[i]
		// Hyphen range: "1.2 - 1.5", possibly beside other terms.
		if i+2 < len(fields) && fields[i+1] == "-" && !isOperator(term) {
			c, err := hyphenRange(expr, term, fields[i+2], family)
			if err != nil {
				return nil, err
			}
			c.raw = strings.Join(fields[i:i+3], " ")
			atoms = append(atoms, c)
			i += 2
			continue
		}
		if term == "-" {
			return nil, malformed(expr, "hyphen range without a lower bound")
		}
		if isOperator(term) {
			if i+1 >= len(fields) {
				return nil, malformed(expr, "operator %q without a version", term)
			}
			i++
			term += fields[i]
		}
		atom, err := parseAtom(expr, term, family)
		if err != nil {
			return nil, err
		}
		atom.raw = term
		atoms = append(atoms, atom)
	}
	return atoms, nil
}

func isOperator(s string) bool {
	for _, op := range operators {
		if s == op {
			return true
		}
	}
	return false
}

func parseAtom(expr, term string, family version.Family) (Constraint, error) {
	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(term, candidate) {
			op = candidate
			break
		}
	}
	rest := strings.TrimSpace(term[len(op):])

	if op == "" && (rest == "latest" || rest == "*") {
		return Wildcard(family), nil
	}
	p, err := parsePartial(expr, rest)
	if err != nil {
		return Constraint{}, err
	}

	switch op {
	case "":
		if family == version.Cargo {
			return caret(expr, p, family)
		}
		return xrange(expr, p, family)
	case "=", "==":
		return xrange(expr, p, family)
	case "^":
		return caret(expr, p, family)
	case "~", "~>":
		return tilde(expr, p, family)
	case ">=":
		return bounded(expr, family, &bound{OpGTE, p.floor()}, nil)
	case "<":
		return bounded(expr, family, nil, &bound{OpLT, p.floor()})
	case ">":
		if p.full() {
			return bounded(expr, family, &bound{OpGT, p.floor()}, nil)
		}
		if len(p.nums) == 0 {
			// ">*" admits nothing.
			return bounded(expr, family, nil, &bound{OpLT, "0.0.0"})
		}
		return bounded(expr, family, &bound{OpGTE, p.next(len(p.nums) - 1)}, nil)
	case "<=":
		if p.full() {
			return bounded(expr, family, nil, &bound{OpLTE, p.floor()})
		}
		if len(p.nums) == 0 {
			return Wildcard(family), nil
		}
		return bounded(expr, family, nil, &bound{OpLT, p.next(len(p.nums) - 1)})
	}
	return Constraint{}, malformed(expr, "unknown operator %q", op)
}

// partial is a possibly incomplete version: "1", "1.2", "1.2.x", "1.2.3-rc.1".
type partial struct {
	nums   []uint64
	suffix string
}

func parsePartial(expr, s string) (partial, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "=")
	if s == "" {
		return partial{}, malformed(expr, "missing version")
	}
	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return partial{}, malformed(expr, "too many version components in %q", s)
	}

	var p partial
	wild := false
	for _, part := range parts {
		switch {
		case part == "x" || part == "X" || part == "*":
			wild = true
		case part != "" && strings.Trim(part, "0123456789") == "":
			if wild {
				return partial{}, malformed(expr, "number after wildcard in %q", s)
			}
			n, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return partial{}, malformed(expr, "component %q out of range", part)
			}
			p.nums = append(p.nums, n)
		default:
			return partial{}, malformed(expr, "invalid version %q", s)
		}
	}
	if suffix != "" {
		if !p.full() {
			return partial{}, malformed(expr, "pre-release on partial version %q", s)
		}
		p.suffix = suffix
	}
	return p, nil
}

func (p partial) full() bool { return len(p.nums) == 3 }

func (p partial) component(i int) uint64 {
	if i < len(p.nums) {
		return p.nums[i]
	}
	return 0
}

// floor is the smallest version the partial names: "1.2" -> "1.2.0".
func (p partial) floor() string {
	return join3(p.component(0), p.component(1), p.component(2)) + p.suffix
}

// next increments component i and zeroes the ones after it:
// next(0) of "1.2.3" is "2.0.0", next(1) is "1.3.0".
func (p partial) next(i int) string {
	n := [3]uint64{p.component(0), p.component(1), p.component(2)}
	n[i]++
	for j := i + 1; j < 3; j++ {
		n[j] = 0
	}
	return join3(n[0], n[1], n[2])
}

func join3(a, b, c uint64) string {
	return strconv.FormatUint(a, 10) + "." + strconv.FormatUint(b, 10) + "." + strconv.FormatUint(c, 10)
}

type bound struct {
	op  Op
	ver string
}

func bounded(expr string, family version.Family, lo, hi *bound) (Constraint, error) {
	c := Constraint{kind: KindRange, family: family}
	for _, side := range []struct {
		b   *bound
		dst **Bound
	}{{lo, &c.lower}, {hi, &c.upper}} {
		if side.b == nil {
			continue
		}
		v, err := version.Parse(side.b.ver, family)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		*side.dst = &Bound{Op: side.b.op, Version: v}
	}
	return c, nil
}

// xrange handles bare and "=" versions: a full version is exact, a partial
// one covers every version sharing its prefix.
func xrange(expr string, p partial, family version.Family) (Constraint, error) {
	switch len(p.nums) {
	case 0:
		return Wildcard(family), nil
	case 3:
		v, err := version.Parse(p.floor(), family)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		return Exact(v), nil
	}
	return bounded(expr, family, &bound{OpGTE, p.floor()}, &bound{OpLT, p.next(len(p.nums) - 1)})
}

// caret allows changes that do not modify the left-most non-zero component.
func caret(expr string, p partial, family version.Family) (Constraint, error) {
	if len(p.nums) == 0 {
		return Wildcard(family), nil
	}
	upper := ""
	switch {
	case p.nums[0] > 0 || len(p.nums) == 1:
		upper = p.next(0)
	case len(p.nums) == 2 || p.nums[1] > 0:
		upper = p.next(1)
	default:
		upper = p.next(2)
	}
	return bounded(expr, family, &bound{OpGTE, p.floor()}, &bound{OpLT, upper})
}

// tilde allows patch-level changes when a full version is given:
// "~1.2.3" is ">=1.2.3 <1.3.0". A two-component tilde differs by ecosystem:
// npm-style "~1.2" is ">=1.2.0 <2.0.0", Cargo's "~1.2" is ">=1.2.0 <1.3.0".
func tilde(expr string, p partial, family version.Family) (Constraint, error) {
	if len(p.nums) == 0 {
		return Wildcard(family), nil
	}
	upper := p.next(0)
	if len(p.nums) == 3 || (len(p.nums) == 2 && family == version.Cargo) {
		upper = p.next(1)
	}
	return bounded(expr, family, &bound{OpGTE, p.floor()}, &bound{OpLT, upper})
}

// hyphenRange handles "a - b". A partial upper bound excludes the next
// value of its last given component: "1.2 - 2.3" is ">=1.2.0 <2.4.0".
func hyphenRange(expr, lo, hi string, family version.Family) (Constraint, error) {
	pl, err := parsePartial(expr, lo)
	if err != nil {
		return Constraint{}, err
	}
	ph, err := parsePartial(expr, hi)
	if err != nil {
		return Constraint{}, err
	}
	var upper *bound
	switch {
	case ph.full():
		upper = &bound{OpLTE, ph.floor()}
	case len(ph.nums) > 0:
		upper = &bound{OpLT, ph.next(len(ph.nums) - 1)}
	}
	return bounded(expr, family, &bound{OpGTE, pl.floor()}, upper)
}
