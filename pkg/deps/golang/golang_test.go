package golang

import (
	"testing"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/version"
)

func TestLanguageDefinition(t *testing.T) {
	if Language.Name != "go" {
		t.Errorf("Name = %q, want %q", Language.Name, "go")
	}
	if Language.DefaultRegistry != "goproxy" {
		t.Errorf("DefaultRegistry = %q, want %q", Language.DefaultRegistry, "goproxy")
	}
	if Language.Family != version.Gomod {
		t.Errorf("Family = %v, want gomod", Language.Family)
	}
	if !Language.Supports("tools/go.mod") {
		t.Error("Supports(tools/go.mod) = false")
	}
}

func TestLanguageRegistry(t *testing.T) {
	for _, name := range []string{"goproxy", "proxy", "go"} {
		t.Run(name, func(t *testing.T) {
			res, err := Language.Registry(name, deps.RegistryOptions{})
			if err != nil {
				t.Fatalf("Registry(%q): %v", name, err)
			}
			if res.Name() != "goproxy" {
				t.Errorf("Name() = %q, want goproxy", res.Name())
			}
		})
	}

	if _, err := Language.Registry("unknown", deps.RegistryOptions{}); err == nil {
		t.Error("Registry(unknown) should return error")
	}
}

const goMod = `module example.com/app

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	golang.org/x/mod v0.17.0 // indirect
	example.com/lib v0.1.0
	github.com/old/thing v1.0.0
)

require github.com/stretchr/testify v1.9.0

replace github.com/old/thing => ../thing
`

func TestGoModParser_Parse(t *testing.T) {
	f := &deps.DependencyFile{Name: "go.mod", Content: goMod}
	lib := &deps.DependencyFile{Name: "lib/go.mod", Content: "module example.com/lib\n\ngo 1.22\n"}

	res, err := (&GoModParser{}).Parse([]*deps.DependencyFile{f, lib})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := map[string]string{
		"github.com/spf13/cobra":      "v1.8.0",
		"github.com/stretchr/testify": "v1.9.0",
		"golang.org/x/mod":            "v0.17.0",
	}
	if len(res.Dependencies) != len(want) {
		t.Fatalf("dependencies = %+v", res.Dependencies)
	}
	for _, d := range res.Dependencies {
		v, ok := want[d.Name]
		if !ok {
			t.Errorf("unexpected dependency %s", d.Name)
			continue
		}
		r := d.Requirements[0]
		if d.Version != v || r.Requirement != v {
			t.Errorf("%s: version %q requirement %q, want %q", d.Name, d.Version, r.Requirement, v)
		}
		if got := f.Content[r.Span.Start:r.Span.End]; got != v {
			t.Errorf("%s: span covers %q", d.Name, got)
		}
	}

	mod, _ := res.Dependency("golang.org/x/mod")
	if g := mod.Requirements[0].Groups; len(g) != 1 || g[0] != GroupIndirect {
		t.Errorf("indirect groups = %v", g)
	}
	cobra, _ := res.Dependency("github.com/spf13/cobra")
	if len(cobra.Requirements[0].Groups) != 0 {
		t.Errorf("direct groups = %v", cobra.Requirements[0].Groups)
	}

	if len(res.Nodes) != 2 || res.Nodes[0].Coordinates != "example.com/app" {
		t.Errorf("nodes = %+v", res.Nodes)
	}
}

func TestGoModParser_Malformed(t *testing.T) {
	f := &deps.DependencyFile{Name: "go.mod", Content: "module\nrequire (\n"}
	_, err := (&GoModParser{}).Parse([]*deps.DependencyFile{f})
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("err = %v, want INVALID_MANIFEST", err)
	}
}

func TestGoModParser_Supports(t *testing.T) {
	p := &GoModParser{}
	if !p.Supports("go.mod") || !p.Supports("sub/go.mod") {
		t.Error("go.mod should be supported")
	}
	if p.Supports("go.sum") {
		t.Error("go.sum should not be supported")
	}
}
