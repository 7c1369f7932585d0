package javascript

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

const (
	pnpmWorkspaceFile = "pnpm-workspace.yaml"
	defaultCatalog    = "default"
	catalogPrefix     = "catalog:"
)

// workspace is a parsed pnpm-workspace.yaml.
type workspace struct {
	file     string
	packages []string
	catalogs map[string][]deps.Definition // catalog name -> entries
}

// catalogProperty names the definition of pkg in catalog.
func catalogProperty(catalog, pkg string) string {
	return fmt.Sprintf("catalog:%s:%s", catalog, pkg)
}

// parseWorkspace reads the packages globs and the catalogs. The top-level
// "catalog" map is the catalog named "default".
func parseWorkspace(f *deps.DependencyFile) (*workspace, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(f.Content), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", f.Name)
	}
	ws := &workspace{file: f.Name, catalogs: make(map[string][]deps.Definition)}
	if len(doc.Content) == 0 {
		return ws, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "parse %s: expected a mapping", f.Name)
	}

	lines := lineOffsets(f.Content)
	entries := func(catalog string, m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			k, v := m.Content[i], m.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				continue
			}
			ws.catalogs[catalog] = append(ws.catalogs[catalog], deps.Definition{
				Name:  catalogProperty(catalog, k.Value),
				Value: v.Value,
				File:  f.Name,
				Span:  scalarSpan(f.Content, lines, v),
			})
		}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "packages":
			for _, p := range val.Content {
				if p.Kind == yaml.ScalarNode {
					ws.packages = append(ws.packages, p.Value)
				}
			}
		case "catalog":
			if val.Kind == yaml.MappingNode {
				entries(defaultCatalog, val)
			}
		case "catalogs":
			if val.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(val.Content); j += 2 {
				if val.Content[j+1].Kind == yaml.MappingNode {
					entries(val.Content[j].Value, val.Content[j+1])
				}
			}
		}
	}
	return ws, nil
}

// definitions returns every catalog entry.
func (w *workspace) definitions() []deps.Definition {
	var out []deps.Definition
	for _, name := range slices.Sorted(maps.Keys(w.catalogs)) {
		out = append(out, w.catalogs[name]...)
	}
	return out
}

// catalogName interprets a "catalog:" specifier. "catalog:" and
// "catalog:default" both name the default catalog.
func catalogName(spec string) (string, bool) {
	rest, ok := strings.CutPrefix(spec, catalogPrefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return defaultCatalog, true
	}
	return rest, true
}

func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// scalarSpan converts a scalar's line and column into a byte span of its
// value, excluding quotes. Values whose source text differs from the
// decoded value (escapes, folded or multi-byte text) get no span.
func scalarSpan(content string, lines []int, n *yaml.Node) deps.Span {
	if n.Line < 1 || n.Line > len(lines) || n.Column < 1 {
		return deps.Span{}
	}
	start := lines[n.Line-1] + n.Column - 1
	if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		start++
	}
	end := start + len(n.Value)
	if end > len(content) || content[start:end] != n.Value {
		return deps.Span{}
	}
	return deps.Span{Start: start, End: end}
}
