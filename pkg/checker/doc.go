// Package checker decides whether, and to what version, a dependency should
// move.
//
// A [Checker] is built from an [Input]: the dependency as parsed, the
// versions its registry publishes, ignore rules, security advisories and the
// property graph of the file set. It answers the questions an update needs:
//
//   - [Checker.LatestVersion]: the newest acceptable version
//   - [Checker.LowestSecurityFixVersion]: the smallest step out of a vulnerability
//   - [Checker.PreferredResolvableVersion]: the version an update would pick
//   - [Checker.CanUpdate] and [Checker.UpToDate]
//   - [Checker.UpdatedRequirements]: the requirement texts after the move
//
// Candidate versions are filtered the way a maintainer would expect: a
// stable release is never replaced by a pre-release, date-stamped releases
// such as 20030203 are skipped unless the dependency already uses them, and
// a Maven "-jre" build only moves to another "-jre" build.
//
// # Shared properties
//
// When the version comes from a property that several dependencies read
// (a Maven property, a pnpm catalog entry, a Cargo workspace dependency),
// moving one of them moves all of them. Such a dependency only updates with
// a full unlock, and only when every sibling publishes the target version;
// otherwise [Checker.Decide] reports [ReasonSharedProperty] and nothing is
// rewritten.
//
// The checker is pure: it performs no I/O and never logs.
package checker
