// Package rust reads crate requirements from Cargo.toml files.
//
// [CargoToml] reports the [dependencies], [dev-dependencies] and
// [build-dependencies] tables, including their target-specific variants.
// Entries that only name a path or git source are skipped, as are crates
// of the same workspace. A renamed entry (package = "...") is reported under
// the crate's real name.
//
// # Workspaces
//
// A member entry written
//
//	serde = { workspace = true }
//
// takes its version from [workspace.dependencies] in the workspace root.
// The root entry is recorded as the property "workspace.dependencies.serde",
// so updating the requirement rewrites the root manifest only.
//
// [Language] resolves versions through the crates.io client in
// [github.com/matzehuels/stackbump/pkg/integrations/crates].
package rust
