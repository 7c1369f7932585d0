// Package dag provides a small directed graph with deterministic iteration,
// used to model inheritance between dependency files.
//
// # Overview
//
// A Maven child POM inherits properties and dependency management from its
// parent; a workspace member inherits from its workspace root. Both form a
// forest in which every file has at most one parent. This package holds the
// structure: nodes are files, and an edge points from a parent to each of
// its children.
//
// Declared parents come from user-editable files, so the input may contain
// cycles. Adding an edge never fails because of a cycle; call
// [DAG.FindCycle] or [DAG.Validate] before walking ancestor chains.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "pom.xml"})
//	g.AddNode(dag.Node{ID: "core/pom.xml"})
//	g.AddEdge(dag.Edge{From: "pom.xml", To: "core/pom.xml"})
//
//	g.Children("pom.xml")    // [core/pom.xml]
//	g.Descendants("pom.xml") // [core/pom.xml]
//
// # Determinism
//
// [DAG.Nodes], [DAG.Edges], [DAG.Sources] and [DAG.Sinks] all follow
// insertion order, so any traversal built on them produces the same result
// for the same input.
package dag
