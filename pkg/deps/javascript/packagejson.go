package javascript

import (
	"path"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/propgraph"
	"github.com/matzehuels/stackbump/pkg/version"
)

const packageManager = "npm"

// dependencyGroups are the package.json sections that hold requirements,
// in the order they are reported.
var dependencyGroups = []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"}

// nonRegistryPrefixes mark specifiers that do not name a registry version.
var nonRegistryPrefixes = []string{
	"file:", "link:", "portal:", "patch:", "workspace:", "npm:",
	"git:", "git+", "github:", "gitlab:", "bitbucket:", "http://", "https://",
}

// PackageJSON parses package.json files, together with pnpm-workspace.yaml
// when the project uses pnpm catalogs.
type PackageJSON struct{}

func (p *PackageJSON) Type() string { return "package.json" }

func (p *PackageJSON) Supports(name string) bool {
	base := path.Base(name)
	return strings.EqualFold(base, "package.json") || base == pnpmWorkspaceFile
}

type packageDoc struct {
	file *deps.DependencyFile
	root *jsonValue
	name string
}

// Parse extracts dependencies from every package.json in the set. Members
// of a workspace (npm "workspaces" or pnpm-workspace.yaml) inherit from the
// workspace root, and "catalog:" specifiers read the matching catalog entry
// as a property. Dependencies on other packages of the same workspace and
// non-registry specifiers are skipped.
func (p *PackageJSON) Parse(files []*deps.DependencyFile) (*deps.ParseResult, error) {
	var (
		ws   *workspace
		docs []*packageDoc
	)
	for _, f := range files {
		switch base := path.Base(f.Name); {
		case base == pnpmWorkspaceFile:
			if ws != nil && len(f.Name) >= len(ws.file) {
				continue
			}
			parsed, err := parseWorkspace(f)
			if err != nil {
				return nil, err
			}
			ws = parsed
		case strings.EqualFold(base, "package.json"):
			root, err := parseJSON(f.Name, f.Content)
			if err != nil {
				return nil, err
			}
			name, _ := root.get("name").stringValue()
			docs = append(docs, &packageDoc{file: f, root: root, name: name})
		}
	}

	nodes := buildNodes(ws, docs)
	graph, err := propgraph.New(nodes)
	if err != nil {
		return nil, err
	}

	internal := make(map[string]bool)
	for _, d := range docs {
		if d.name != "" {
			internal[d.name] = true
		}
	}

	set := deps.NewDependencySet()
	var consumers []deps.Consumer
	for _, d := range docs {
		if d.file.SupportFile {
			continue
		}
		found, cs, err := packageDependencies(d, graph, internal)
		if err != nil {
			return nil, err
		}
		for _, dep := range found {
			set.Add(dep)
		}
		consumers = append(consumers, cs...)
	}

	return &deps.ParseResult{
		Type:         p.Type(),
		Dependencies: set.Dependencies(),
		Nodes:        nodes,
		Consumers:    consumers,
	}, nil
}

// buildNodes links each package.json to the workspace that contains it:
// the pnpm workspace file when present, otherwise the nearest package.json
// whose "workspaces" globs match it.
func buildNodes(ws *workspace, docs []*packageDoc) []deps.FileNode {
	var nodes []deps.FileNode
	if ws != nil {
		nodes = append(nodes, deps.FileNode{File: ws.file, Definitions: ws.definitions()})
	}
	for _, d := range docs {
		n := deps.FileNode{File: d.file.Name, Coordinates: d.name}
		switch {
		case ws != nil && within(path.Dir(ws.file), d.file.Dir()):
			n.Parent = deps.ParentRef{Path: relativeTo(d.file.Name, ws.file)}
		default:
			if root := workspaceRoot(d, docs); root != nil {
				n.Parent = deps.ParentRef{Path: relativeTo(d.file.Name, root.file.Name)}
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func workspaceRoot(member *packageDoc, docs []*packageDoc) *packageDoc {
	var best *packageDoc
	for _, d := range docs {
		if d == member {
			continue
		}
		patterns := workspacePatterns(d.root)
		if len(patterns) == 0 || !matchesWorkspace(patterns, path.Dir(d.file.Name), member.file.Dir()) {
			continue
		}
		if best == nil || len(d.file.Name) > len(best.file.Name) {
			best = d
		}
	}
	return best
}

// workspacePatterns reads "workspaces" as an array or as {"packages": [...]}.
func workspacePatterns(root *jsonValue) []string {
	w := root.get("workspaces")
	if w == nil {
		return nil
	}
	if w.kind == jsonObject {
		return w.get("packages").stringItems()
	}
	return w.stringItems()
}

func matchesWorkspace(patterns []string, rootDir, dir string) bool {
	rel, ok := relativeDir(rootDir, dir)
	if !ok || rel == "." {
		return false
	}
	matched := false
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(strings.TrimPrefix(p, "!"), "./")
		if globMatch(strings.TrimSuffix(p, "/"), rel) {
			matched = !negate
		}
	}
	return matched
}

// globMatch matches slash-separated paths, treating a trailing "/**" as
// "this directory and everything below".
func globMatch(pattern, name string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return name == prefix || strings.HasPrefix(name, prefix+"/") || globMatch(prefix+"/*", name)
	}
	ok, _ := path.Match(pattern, name)
	return ok
}

func within(rootDir, dir string) bool {
	_, ok := relativeDir(rootDir, dir)
	return ok
}

func relativeDir(rootDir, dir string) (string, bool) {
	if rootDir == "." {
		return dir, true
	}
	if dir == rootDir {
		return ".", true
	}
	rest, ok := strings.CutPrefix(dir, rootDir+"/")
	return rest, ok
}

// relativeTo returns the path of target as seen from the directory of from.
// target must live in an ancestor directory of from.
func relativeTo(from, target string) string {
	rel, _ := relativeDir(path.Dir(target), path.Dir(from))
	if rel == "." {
		return path.Base(target)
	}
	return strings.Repeat("../", strings.Count(rel, "/")+1) + path.Base(target)
}

func packageDependencies(d *packageDoc, graph *propgraph.Graph, internal map[string]bool) ([]deps.Dependency, []deps.Consumer, error) {
	var (
		found     []deps.Dependency
		consumers []deps.Consumer
		errs      []error
	)
	for _, group := range dependencyGroups {
		section := d.root.get(group)
		if section == nil || section.kind != jsonObject {
			continue
		}
		for _, m := range section.members {
			spec, ok := m.value.stringValue()
			if !ok || internal[m.key] {
				continue
			}
			spec = strings.TrimSpace(spec)
			req := deps.Requirement{File: d.file.Name, Span: m.value.span, Groups: []string{group}}

			if catalog, ok := catalogName(spec); ok {
				prop := catalogProperty(catalog, m.key)
				def, err := graph.ResolveProperty(prop, d.file.Name)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				req.Requirement = def.Value
				req.PropertyRef = prop
				req.Metadata = map[string]string{
					deps.MetaPropertyName:   prop,
					deps.MetaPropertySource: def.File,
					deps.MetaCatalog:        catalog,
				}
				consumers = append(consumers, deps.Consumer{Property: def.Name, DefiningFile: def.File, Dependency: m.key})
			} else {
				if !isRegistrySpec(spec) {
					continue
				}
				req.Requirement = spec
			}

			found = append(found, deps.Dependency{
				Name:           m.key,
				Version:        exactVersion(req.Requirement),
				Requirements:   []deps.Requirement{req},
				PackageManager: packageManager,
			})
		}
	}
	if len(errs) > 0 && len(found) == 0 {
		return nil, nil, errs[0]
	}
	return found, consumers, nil
}

func isRegistrySpec(spec string) bool {
	for _, p := range nonRegistryPrefixes {
		if strings.HasPrefix(spec, p) {
			return false
		}
	}
	// GitHub shorthand: "user/repo" or "user/repo#ref".
	return !strings.Contains(spec, "/")
}

// exactVersion returns the version a requirement pins, if any.
func exactVersion(requirement string) string {
	v, err := version.Parse(strings.TrimPrefix(requirement, "="), version.Npm)
	if err != nil {
		return ""
	}
	return v.String()
}
