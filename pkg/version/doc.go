// Package version parses and orders dependency versions.
//
// Each ecosystem belongs to a Family that fixes the version grammar and the
// ordering rules:
//
//   - Maven: Maven's ComparableVersion rules. Versions are split at ".", "-"
//     and digit/letter transitions into a TokenTree; qualifiers are ranked
//     alpha < beta < milestone < rc < snapshot < release < sp < other, and
//     missing segments compare as zero, so "1" == "1.0" == "1-ga".
//   - Npm and Cargo: semver via github.com/Masterminds/semver/v3.
//   - Gomod: Go module semver via golang.org/x/mod/semver.
//
// A Version always keeps its raw string; String never re-serializes, because
// requirement rewriting must preserve the user's formatting.
//
//	a := version.MustParse("1.0-rc1", version.Maven)
//	b := version.MustParse("1.0", version.Maven)
//	a.Less(b) // true
package version
