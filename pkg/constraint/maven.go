package constraint

import (
	"strconv"
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

// parseMaven parses a Maven/Gradle version requirement:
//
//	1.0              soft requirement (Exact, may be overridden by mediation)
//	[1.0]            hard pin
//	[1.0,2.0)        range; "[" and "]" are inclusive
//	(,1.0],[1.2,)    union of ranges
//	1.+ / 1.2.+      Gradle prefix range
//	latest.release   Gradle dynamic version (Wildcard)
//	>= 1.0, < 2.0    comparison operators, as used by advisory databases
func parseMaven(expr string) (Constraint, error) {
	s := strings.TrimSpace(expr)
	switch {
	case s == "", s == "+", s == "latest.release", s == "latest.integration":
		return Wildcard(version.Maven), nil
	case s[0] == '[' || s[0] == '(':
		return parseMavenRanges(expr, s)
	case strings.ContainsAny(s[:1], "<>=") || strings.Contains(s, "||"):
		return parseMavenComparisons(expr, s)
	case strings.HasSuffix(s, ".+"):
		return parseMavenPrefix(expr, strings.TrimSuffix(s, ".+"))
	}
	v, err := version.Parse(s, version.Maven)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
	}
	return Exact(v), nil
}

func parseMavenRanges(expr, s string) (Constraint, error) {
	var groups [][]Constraint
	for s != "" {
		open := s[0]
		if open != '[' && open != '(' {
			return Constraint{}, malformed(expr, "expected '[' or '(' at %q", s)
		}
		end := strings.IndexAny(s, "])")
		if end < 0 {
			return Constraint{}, malformed(expr, "unterminated range")
		}
		c, err := parseMavenRange(expr, open, s[1:end], s[end])
		if err != nil {
			return Constraint{}, err
		}
		c.raw = s[:end+1]
		groups = append(groups, []Constraint{c})

		s = strings.TrimSpace(s[end+1:])
		if strings.HasPrefix(s, ",") {
			s = strings.TrimSpace(s[1:])
			if s == "" {
				return Constraint{}, malformed(expr, "trailing comma")
			}
		} else if s != "" {
			return Constraint{}, malformed(expr, "unexpected %q after range", s)
		}
	}
	return union(version.Maven, groups), nil
}

func parseMavenRange(expr string, open byte, body string, closing byte) (Constraint, error) {
	lo, hi, isRange := strings.Cut(body, ",")
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)

	if !isRange {
		if open != '[' || closing != ']' || lo == "" {
			return Constraint{}, malformed(expr, "a single version must be written [v]")
		}
		v, err := version.Parse(lo, version.Maven)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		c := Exact(v)
		c.hard = true
		return c, nil
	}
	if strings.Contains(hi, ",") {
		return Constraint{}, malformed(expr, "too many commas in range")
	}

	c := Constraint{kind: KindRange, family: version.Maven}
	if lo != "" {
		v, err := version.Parse(lo, version.Maven)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		op := OpGT
		if open == '[' {
			op = OpGTE
		}
		c.lower = &Bound{Op: op, Version: v}
	}
	if hi != "" {
		v, err := version.Parse(hi, version.Maven)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		op := OpLT
		if closing == ']' {
			op = OpLTE
		}
		c.upper = &Bound{Op: op, Version: v}
	}
	return c, nil
}

// parseMavenPrefix turns "1.2" (from "1.2.+") into [1.2, 1.3).
func parseMavenPrefix(expr, prefix string) (Constraint, error) {
	if prefix == "" {
		return Wildcard(version.Maven), nil
	}
	parts := strings.Split(prefix, ".")
	last, err := strconv.ParseUint(parts[len(parts)-1], 10, 64)
	if err != nil {
		return Constraint{}, malformed(expr, "prefix range must end in a number")
	}
	lower, err := version.Parse(prefix, version.Maven)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
	}
	parts[len(parts)-1] = strconv.FormatUint(last+1, 10)
	upper, err := version.Parse(strings.Join(parts, "."), version.Maven)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
	}
	return Constraint{
		kind:   KindRange,
		family: version.Maven,
		lower:  &Bound{Op: OpGTE, Version: lower},
		upper:  &Bound{Op: OpLT, Version: upper},
	}, nil
}

// parseMavenComparisons handles operator syntax over Maven versions. There
// is no shorthand expansion: versions are compared as written.
func parseMavenComparisons(expr, s string) (Constraint, error) {
	var groups [][]Constraint
	for _, part := range strings.Split(s, "||") {
		fields := strings.FieldsFunc(part, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
		if len(fields) == 0 {
			return Constraint{}, malformed(expr, "empty alternative")
		}
		var group []Constraint
		for i := 0; i < len(fields); i++ {
			term := fields[i]
			if isOperator(term) {
				if i+1 >= len(fields) {
					return Constraint{}, malformed(expr, "operator %q without a version", term)
				}
				i++
				term += fields[i]
			}
			atom, err := mavenComparison(expr, term)
			if err != nil {
				return Constraint{}, err
			}
			atom.raw = term
			group = append(group, atom)
		}
		groups = append(groups, group)
	}
	return union(version.Maven, groups), nil
}

var mavenOps = []struct {
	text string
	op   Op
}{{">=", OpGTE}, {"<=", OpLTE}, {">", OpGT}, {"<", OpLT}, {"==", 0}, {"=", 0}}

func mavenComparison(expr, term string) (Constraint, error) {
	for _, m := range mavenOps {
		if !strings.HasPrefix(term, m.text) {
			continue
		}
		v, err := version.Parse(strings.TrimSpace(term[len(m.text):]), version.Maven)
		if err != nil {
			return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
		}
		c := Constraint{kind: KindRange, family: version.Maven}
		switch m.op {
		case 0:
			return Exact(v), nil
		case OpGT, OpGTE:
			c.lower = &Bound{Op: m.op, Version: v}
		default:
			c.upper = &Bound{Op: m.op, Version: v}
		}
		return c, nil
	}
	v, err := version.Parse(term, version.Maven)
	if err != nil {
		return Constraint{}, errors.Wrap(errors.ErrCodeMalformedRequirement, err, "malformed requirement %q", expr)
	}
	return Exact(v), nil
}
