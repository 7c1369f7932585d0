package propgraph

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// ResolveProperty finds the definition of name visible from startingFile.
//
// The file's own definitions and built-ins are consulted first, then each
// ancestor in turn. A value consisting of a single reference ("${other}") is
// followed to the definition that holds the literal, so the returned Span
// always covers text that can be rewritten. Other references inside the
// value are expanded in place.
//
// Errors: PROPERTY_NOT_FOUND when no file defines name, PARENT_UNAVAILABLE
// when the chain ends at a parent that was not supplied, and
// CYCLIC_INHERITANCE when the chain or the references loop.
func (g *Graph) ResolveProperty(name, startingFile string) (Definition, error) {
	return g.resolve(name, startingFile, nil)
}

// Interpolate expands every ${...} reference in value as seen from file.
func (g *Graph) Interpolate(value, file string) (string, error) {
	return g.interpolate(value, file, nil)
}

// HasReference reports whether value contains a ${...} reference.
func HasReference(value string) bool {
	i := strings.Index(value, "${")
	return i >= 0 && strings.Contains(value[i:], "}")
}

// SoleReference returns the property name when value is exactly "${name}".
func SoleReference(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if !strings.HasPrefix(v, "${") || !strings.HasSuffix(v, "}") {
		return "", false
	}
	name := v[2 : len(v)-1]
	if name == "" || strings.ContainsAny(name, "${}") {
		return "", false
	}
	return name, true
}

func (g *Graph) resolve(name, startingFile string, visiting []string) (Definition, error) {
	if containsName(visiting, name) {
		return Definition{}, errors.New(errors.ErrCodeCyclicInheritance,
			"cyclic property reference: %s -> %s", strings.Join(visiting, " -> "), name)
	}
	visiting = append(visiting, name)

	def, err := g.lookup(name, startingFile)
	if err != nil {
		return Definition{}, err
	}
	if ref, ok := SoleReference(def.Value); ok {
		return g.resolve(ref, startingFile, visiting)
	}
	if HasReference(def.Value) {
		value, err := g.interpolate(def.Value, startingFile, visiting)
		if err != nil {
			return Definition{}, err
		}
		def.Value = value
	}
	return def, nil
}

// lookup walks the inheritance chain without expanding references.
func (g *Graph) lookup(name, startingFile string) (Definition, error) {
	if _, ok := g.nodes[startingFile]; !ok {
		return Definition{}, errors.New(errors.ErrCodeFileNotFound, "file %q is not part of the property graph", startingFile)
	}

	seen := make(map[string]bool)
	chain := []string{}
	file := startingFile
	for {
		if seen[file] {
			return Definition{}, cyclic(append(chain, file))
		}
		seen[file] = true
		chain = append(chain, file)

		n := g.nodes[file]
		if def, ok := n.Definition(name); ok {
			return def, nil
		}
		if value, ok := n.Builtins[name]; ok {
			return Definition{Name: name, Value: value, File: file, Builtin: true}, nil
		}

		if ref, ok := g.unavailable[file]; ok {
			return Definition{}, errors.Wrap(errors.ErrCodeParentUnavailable, parentUnavailable(file, ref),
				"cannot resolve property %q", name)
		}
		e, ok := g.parent[file]
		if !ok {
			return Definition{}, errors.New(errors.ErrCodePropertyNotFound,
				"property %q is not defined in %s or its parents", name, startingFile)
		}
		file = e.Parent
	}
}

func (g *Graph) interpolate(value, file string, visiting []string) (string, error) {
	var b strings.Builder
	rest := value
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			break
		}
		end += start
		b.WriteString(rest[:start])

		def, err := g.resolve(rest[start+2:end], file, visiting)
		if err != nil {
			return "", err
		}
		b.WriteString(def.Value)
		rest = rest[end+1:]
	}
	b.WriteString(rest)
	return b.String(), nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
