package javascript

import (
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations/npm"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Language provides JavaScript/TypeScript dependency handling via npm.
// Supports package.json and pnpm-workspace.yaml files.
var Language = &deps.Language{
	Name:            "javascript",
	Family:          version.Npm,
	DefaultRegistry: "npm",
	RegistryAliases: map[string]string{"npmjs": "npm", "pnpm": "npm", "yarn": "npm"},
	FileTypes:       []string{"package.json", pnpmWorkspaceFile},
	NewResolver:     newResolver,
	NewParser:       func() deps.FileParser { return &PackageJSON{} },
}

func newResolver(opts deps.RegistryOptions) deps.Resolver {
	c := npm.NewClient(opts.Cache, opts.TTL).WithBaseURL(opts.BaseURL)
	return deps.NewRegistry("npm", version.Npm, c)
}
