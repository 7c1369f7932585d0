// Package golang reads Go module requirements from go.mod files.
//
// go.mod only ever pins exact versions, so every requirement is an exact
// constraint and bumping it rewrites the version token in place. Indirect
// requirements are reported with the [GroupIndirect] group. Modules that a
// replace directive redirects are skipped, since editing their require
// line would not change what the build uses.
package golang
