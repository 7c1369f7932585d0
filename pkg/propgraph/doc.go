// Package propgraph resolves properties across files that inherit from one
// another.
//
// # Overview
//
// Ecosystems let a file read values declared elsewhere: a Maven child POM
// reads ${guava.version} from its parent, a pnpm package.json reads a
// catalog entry from pnpm-workspace.yaml, a Cargo member reads
// [workspace.dependencies] from the root manifest. The [Graph] models these
// files as a forest, built on [dag.DAG], and answers:
//
//   - where a property is defined ([Graph.ResolveProperty])
//   - what a value expands to ([Graph.Interpolate])
//   - which dependencies read a property ([Graph.DependentsOfProperty])
//
// The last question decides whether a property is shared. Bumping a shared
// property moves every dependency that reads it, so the update checker
// treats it as a multi-dependency change.
//
// # Locating Parents
//
// Each [Node] declares its parent through a [deps.ParentRef]. [New] tries,
// in order: the explicitly declared path, a local file with the declared
// coordinates, the default parent path, and an external (pre-fetched) file
// with the declared coordinates. A parent that cannot be found is recorded
// and reported as PARENT_UNAVAILABLE only when a lookup reaches it.
//
// Cycles never hang a lookup: the walk fails with CYCLIC_INHERITANCE.
//
// [dag.DAG]: github.com/matzehuels/stackbump/pkg/dag.DAG
// [deps.ParentRef]: github.com/matzehuels/stackbump/pkg/deps.ParentRef
package propgraph
