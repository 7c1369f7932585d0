package golang

import (
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/integrations/goproxy"
	"github.com/matzehuels/stackbump/pkg/version"
)

// Language provides Go module handling via the Go module proxy.
// Supports go.mod files.
var Language = &deps.Language{
	Name:            "go",
	Family:          version.Gomod,
	DefaultRegistry: "goproxy",
	RegistryAliases: map[string]string{"proxy": "goproxy", "go": "goproxy"},
	FileTypes:       []string{"go.mod"},
	NewResolver:     newResolver,
	NewParser:       func() deps.FileParser { return &GoModParser{} },
}

func newResolver(opts deps.RegistryOptions) deps.Resolver {
	c := goproxy.NewClient(opts.Cache, opts.TTL).WithBaseURL(opts.BaseURL)
	return deps.NewRegistry("goproxy", version.Gomod, c)
}
