package rust

import (
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/propgraph"
)

const (
	packageManager    = "cargo"
	cargoFileName     = "Cargo.toml"
	workspacePropBase = "workspace.dependencies."
)

// Dependency sections and the groups they report.
const (
	GroupNormal = "dependencies"
	GroupDev    = "dev-dependencies"
	GroupBuild  = "build-dependencies"
)

var dependencyGroups = []string{GroupNormal, GroupDev, GroupBuild}

type cargoFile struct {
	Package struct {
		Name      string `toml:"name"`
		Workspace string `toml:"workspace"`
	} `toml:"package"`
	Dependencies      map[string]any         `toml:"dependencies"`
	DevDependencies   map[string]any         `toml:"dev-dependencies"`
	BuildDependencies map[string]any         `toml:"build-dependencies"`
	Target            map[string]cargoTarget `toml:"target"`
	Workspace         *struct {
		Members      []string       `toml:"members"`
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

type cargoTarget struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

func (t cargoTarget) section(group string) map[string]any {
	switch group {
	case GroupDev:
		return t.DevDependencies
	case GroupBuild:
		return t.BuildDependencies
	}
	return t.Dependencies
}

func (c *cargoFile) section(group string) map[string]any {
	return cargoTarget{c.Dependencies, c.DevDependencies, c.BuildDependencies}.section(group)
}

// cargoDep is one dependency entry, in either string or table form.
type cargoDep struct {
	name        string // crate name, after any "package" rename
	requirement string
	workspace   bool // "workspace = true": version comes from the workspace root
	local       bool // path or git source without a registry version
}

func readDep(key string, v any) cargoDep {
	d := cargoDep{name: key}
	switch val := v.(type) {
	case string:
		d.requirement = val
	case map[string]any:
		if pkg, ok := val["package"].(string); ok && pkg != "" {
			d.name = pkg
		}
		d.requirement, _ = val["version"].(string)
		d.workspace, _ = val["workspace"].(bool)
		_, hasPath := val["path"]
		_, hasGit := val["git"]
		d.local = d.requirement == "" && (hasPath || hasGit)
	}
	return d
}

// CargoToml parses Cargo.toml files. Members of a workspace inherit from the
// nearest ancestor Cargo.toml with a [workspace] table, and entries written
// "name = { workspace = true }" read [workspace.dependencies] as a property.
type CargoToml struct{}

func (c *CargoToml) Type() string { return cargoFileName }

func (c *CargoToml) Supports(name string) bool {
	return strings.EqualFold(path.Base(name), cargoFileName)
}

type manifest struct {
	file  *deps.DependencyFile
	cargo cargoFile
	spans map[spanKey]deps.Span
}

func (c *CargoToml) Parse(files []*deps.DependencyFile) (*deps.ParseResult, error) {
	var docs []*manifest
	internal := make(map[string]bool)
	for _, f := range files {
		if !c.Supports(f.Name) {
			continue
		}
		m := &manifest{file: f, spans: scanSpans(f.Content)}
		if _, err := toml.Decode(f.Content, &m.cargo); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", f.Name)
		}
		if m.cargo.Package.Name != "" {
			internal[m.cargo.Package.Name] = true
		}
		docs = append(docs, m)
	}

	nodes := make([]deps.FileNode, 0, len(docs))
	for _, m := range docs {
		nodes = append(nodes, m.node(docs))
	}
	graph, err := propgraph.New(nodes)
	if err != nil {
		return nil, err
	}

	set := deps.NewDependencySet()
	var consumers []deps.Consumer
	for _, m := range docs {
		if m.file.SupportFile {
			continue
		}
		found, cs, err := m.dependencies(graph, internal)
		if err != nil {
			return nil, err
		}
		for _, d := range found {
			set.Add(d)
		}
		consumers = append(consumers, cs...)
	}

	return &deps.ParseResult{
		Type:         c.Type(),
		Dependencies: set.Dependencies(),
		Nodes:        nodes,
		Consumers:    consumers,
	}, nil
}

func (m *manifest) node(all []*manifest) deps.FileNode {
	n := deps.FileNode{File: m.file.Name, Coordinates: m.cargo.Package.Name}
	if ws := m.cargo.Workspace; ws != nil {
		for _, key := range slices.Sorted(maps.Keys(ws.Dependencies)) {
			d := readDep(key, ws.Dependencies[key])
			if d.requirement == "" {
				continue
			}
			n.Definitions = append(n.Definitions, deps.Definition{
				Name:  workspacePropBase + key,
				Value: d.requirement,
				File:  m.file.Name,
				Span:  m.spans[spanKey{"workspace.dependencies", key}],
			})
		}
		return n
	}

	if explicit := m.cargo.Package.Workspace; explicit != "" {
		n.Parent = deps.ParentRef{Path: explicit, Explicit: true}
		return n
	}
	if root := workspaceRoot(m, all); root != nil {
		n.Parent = deps.ParentRef{Path: relativeTo(m.file.Name, root.file.Name)}
	}
	return n
}

// workspaceRoot finds the nearest ancestor manifest with a [workspace] table.
func workspaceRoot(m *manifest, all []*manifest) *manifest {
	var best *manifest
	dir := m.file.Dir()
	for _, o := range all {
		if o == m || o.cargo.Workspace == nil {
			continue
		}
		root := o.file.Dir()
		if root != "." && dir != root && !strings.HasPrefix(dir, root+"/") {
			continue
		}
		if best == nil || len(o.file.Name) > len(best.file.Name) {
			best = o
		}
	}
	return best
}

func relativeTo(from, target string) string {
	fromDir, targetDir := path.Dir(from), path.Dir(target)
	if fromDir == targetDir {
		return path.Base(target)
	}
	rel := fromDir
	if targetDir != "." {
		rel = strings.TrimPrefix(fromDir, targetDir+"/")
	}
	return strings.Repeat("../", strings.Count(rel, "/")+1) + path.Base(target)
}

func (m *manifest) dependencies(graph *propgraph.Graph, internal map[string]bool) ([]deps.Dependency, []deps.Consumer, error) {
	var (
		found     []deps.Dependency
		consumers []deps.Consumer
		errs      []error
	)
	add := func(section, group string, entries map[string]any) {
		for _, key := range slices.Sorted(maps.Keys(entries)) {
			d := readDep(key, entries[key])
			if d.local || internal[d.name] {
				continue
			}
			req := deps.Requirement{File: m.file.Name, Groups: []string{group}}
			switch {
			case d.workspace:
				prop := workspacePropBase + key
				def, err := graph.ResolveProperty(prop, m.file.Name)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				req.Requirement = def.Value
				req.PropertyRef = prop
				req.Metadata = map[string]string{
					deps.MetaPropertyName:   prop,
					deps.MetaPropertySource: def.File,
				}
				consumers = append(consumers, deps.Consumer{Property: def.Name, DefiningFile: def.File, Dependency: d.name})
			case d.requirement != "":
				req.Requirement = d.requirement
				req.Span = m.spans[spanKey{section, key}]
			default:
				continue
			}
			found = append(found, deps.Dependency{
				Name:           d.name,
				Version:        exactVersion(req.Requirement),
				Requirements:   []deps.Requirement{req},
				PackageManager: packageManager,
			})
		}
	}

	for _, group := range dependencyGroups {
		add(group, group, m.cargo.section(group))
	}
	for _, target := range slices.Sorted(maps.Keys(m.cargo.Target)) {
		for _, group := range dependencyGroups {
			add("target."+target+"."+group, group, m.cargo.Target[target].section(group))
		}
	}

	if len(errs) > 0 && len(found) == 0 {
		return nil, nil, errs[0]
	}
	return found, consumers, nil
}

// exactVersion returns the pinned version of an "=x.y.z" requirement.
// A bare Cargo version is a caret range, so it pins nothing.
func exactVersion(requirement string) string {
	v, ok := strings.CutPrefix(strings.TrimSpace(requirement), "=")
	if !ok || strings.ContainsAny(v, ",<>*") {
		return ""
	}
	return strings.TrimSpace(v)
}
