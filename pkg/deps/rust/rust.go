package rust

import (
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations/crates"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Language provides Rust dependency handling via crates.io.
// Supports Cargo.toml files.
var Language = &deps.Language{
	Name:            "rust",
	Family:          version.Cargo,
	DefaultRegistry: "crates",
	RegistryAliases: map[string]string{"crates.io": "crates", "cargo": "crates"},
	FileTypes:       []string{cargoFileName},
	NewResolver:     newResolver,
	NewParser:       func() deps.FileParser { return &CargoToml{} },
}

func newResolver(opts deps.RegistryOptions) deps.Resolver {
	c := crates.NewClient(opts.Cache, opts.TTL).WithBaseURL(opts.BaseURL)
	return deps.NewRegistry("crates.io", version.Cargo, c)
}
