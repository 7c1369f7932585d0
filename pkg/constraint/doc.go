// Package constraint parses requirement expressions and tests versions
// against them.
//
// A Constraint is one of four variants: Wildcard, Exact, Range (optional
// lower and upper Bound) or Union (an OR of AND-groups). Shorthands are
// expanded when parsing, so "^1.2.3" becomes ">=1.2.3 <2.0.0" and "1.2.+"
// becomes ">=1.2 <1.3". String always returns the text that was parsed;
// Canonical returns the expanded form.
//
// The grammar depends on the version family:
//
//   - npm: "||" unions, space/","/"&&" intersections, ^, ~, x-ranges,
//     hyphen ranges and comparison operators.
//   - Cargo: as npm, except a bare version means "^" and "~1.2" stays
//     within 1.2.x.
//   - Gomod: as npm; go.mod itself only ever holds exact versions.
//   - Maven: soft versions, "[1.0]" hard pins, "[1.0,2.0)" ranges and
//     Gradle prefix ranges.
//
// Malformed expressions fail with MALFORMED_REQUIREMENT. An expression that
// excludes every available version is not an error; HighestSatisfying then
// reports false.
package constraint
