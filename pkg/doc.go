// Package pkg provides the libraries behind stackbump, a dependency version
// resolution engine.
//
// # Overview
//
// Given a project's dependency files, the versions each dependency's
// registry publishes, and optional ignore rules and security advisories,
// stackbump decides which version every dependency should move to and
// rewrites the requirement texts in place. The pkg directory is organized
// as follows:
//
//  1. [version] and [constraint] - Version grammars and requirement ranges
//     for the Maven, npm, Go module and Cargo families
//  2. [deps] - File parsers per ecosystem and the shared dependency model
//  3. [propgraph] - Maven parent inheritance and property resolution
//  4. [checker] - The update decision for one dependency
//  5. [updater] - Requirement rewriting and span-based file edits
//  6. [pipeline] - Orchestration (parse → check → update) with caching
//  7. [integrations] - Registry and advisory HTTP clients
//
// # Architecture
//
// The typical data flow:
//
//	Dependency files (pom.xml, package.json, go.mod, Cargo.toml)
//	         ↓
//	    [deps] parsers (dependencies, requirement spans, properties)
//	         ↓
//	    [propgraph] (parents, property definitions)
//	         ↓
//	    [checker] (available versions, ignores, advisories → decision)
//	         ↓
//	    [updater] (new requirement texts → edited files)
//
// # Quick Start
//
// Check and update every dependency of a project:
//
//	import (
//	    "github.com/matzehuels/stackbump/pkg/pipeline"
//	    "github.com/matzehuels/stackbump/pkg/source/local"
//	)
//
//	files, err := local.Load(".", "")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Batch(ctx, pipeline.Request{Files: files})
//	if err != nil {
//	    return err
//	}
//	for _, o := range res.Updated() {
//	    fmt.Println(o.Dependency.Name, o.Current, "→", o.Decision.Target)
//	}
//	if err := local.Write(".", res.Files); err != nil {
//	    return err
//	}
//
// # Supporting Packages
//
// [cache] - Response and parse caching with file, Redis and MongoDB backends.
//
// [config] - Project configuration (stackbump.yaml) and environment overrides.
//
// [advisory] - Security advisories from a YAML file.
//
// [observability] - Hooks for parse, check and cache events, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by every package.
package pkg
