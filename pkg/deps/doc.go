// Package deps defines the data model shared by every ecosystem: dependency
// files, requirement occurrences, dependencies and security advisories.
//
// # Overview
//
// A project is handed to the engine as a slice of [DependencyFile] values.
// An ecosystem [FileParser] turns the whole set into a [ParseResult]:
//
//   - Dependencies: one [Dependency] per logical name, each owning the
//     [Requirement] occurrences that declare it, with byte [Span]s into the
//     file content
//   - Nodes: one [FileNode] per file, the input of the property graph
//   - Consumers: which dependency reads which property
//
// # Languages
//
// Each ecosystem has a subpackage exporting a [Language]:
//
//   - [java]: Maven Central, pom.xml and extensions.xml
//   - [javascript]: npm, package.json and pnpm-workspace.yaml
//   - [golang]: Go Module Proxy, go.mod
//   - [rust]: crates.io, Cargo.toml
//
// A Language names its [version.Family], its parser and its registry. The
// registry is a [Resolver] listing published versions:
//
//	res := java.Language.Resolver(deps.RegistryOptions{})
//	vs, _ := res.Versions(ctx, "com.google.guava:guava", false)
//
// [VersionsOf] fetches many names concurrently, which the full-unlock check
// uses to learn whether every sibling of a shared property publishes the
// target.
//
// [java]: github.com/matzehuels/stackbump/pkg/deps/java
// [javascript]: github.com/matzehuels/stackbump/pkg/deps/javascript
// [golang]: github.com/matzehuels/stackbump/pkg/deps/golang
// [rust]: github.com/matzehuels/stackbump/pkg/deps/rust
// [version.Family]: github.com/matzehuels/stackbump/pkg/version.Family
package deps
