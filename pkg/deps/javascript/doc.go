// Package javascript reads npm dependencies from package.json files.
//
// # Files
//
// [PackageJSON] parses every package.json of a project in one pass, along
// with pnpm-workspace.yaml when present. Requirements are read from the
// dependencies, devDependencies, peerDependencies and optionalDependencies
// sections; the section name becomes the requirement's group.
//
// Specifiers that do not name a registry version (file:, link:, workspace:,
// git URLs, "user/repo" shorthands and npm: aliases) are skipped, as are
// dependencies on other packages of the same workspace.
//
// # Catalogs
//
// A "catalog:" specifier reads its version from the pnpm workspace catalog.
// The occurrence records the catalog entry as a property, so bumping it
// rewrites pnpm-workspace.yaml rather than package.json:
//
//	# pnpm-workspace.yaml
//	catalog:
//	  react: ^18.2.0
//
//	// packages/web/package.json
//	"dependencies": { "react": "catalog:" }
//
// # Registry
//
// [Language] resolves versions through the npm registry client in
// [github.com/matzehuels/stackbump/pkg/integrations/npm].
package javascript
