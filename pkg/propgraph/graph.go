package propgraph

import (
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/stackbump/pkg/dag"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

// Node is one file of the inheritance forest, as produced by a parser.
type Node = deps.FileNode

// Definition is a property declared in a file.
type Definition = deps.Definition

// EdgeKind records how a child's parent was located.
type EdgeKind int

const (
	EdgeExplicit EdgeKind = iota + 1 // Declared relative path
	EdgeSibling                      // Another local file with matching coordinates
	EdgeImplicit                     // Default parent location, e.g. ../pom.xml
	EdgeExternal                     // Parent fetched from a remote source
)

var edgeKindNames = map[EdgeKind]string{
	EdgeExplicit: "explicit",
	EdgeSibling:  "sibling",
	EdgeImplicit: "implicit",
	EdgeExternal: "external",
}

func (k EdgeKind) String() string {
	if s, ok := edgeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Edge links a child file to the file it inherits from.
type Edge struct {
	Child  string
	Parent string
	Kind   EdgeKind
}

// Meta keys set on forest nodes and edges.
const (
	MetaCoordinates = "coordinates"
	MetaExternal    = "external"
	MetaUnavailable = "parent_unavailable"
	MetaKind        = "kind"
)

// Graph is the inheritance forest of a file set plus the property consumers
// registered against it. A Graph is built once per invocation and is not
// safe for concurrent mutation; lookups are read-only.
type Graph struct {
	nodes       map[string]*Node
	order       []string
	parent      map[string]Edge
	unavailable map[string]deps.ParentRef
	forest      *dag.DAG
	consumers   map[propertyKey][]string
	strict      bool
}

type propertyKey struct {
	name string
	file string
}

// Option configures a Graph.
type Option func(*Graph)

// WithStrict makes New fail when a declared parent cannot be located or the
// inheritance chain contains a cycle, instead of deferring the error to the
// first lookup that needs it.
func WithStrict() Option {
	return func(g *Graph) { g.strict = true }
}

// WithConsumers registers property consumers, typically from a parse result.
func WithConsumers(cs ...deps.Consumer) Option {
	return func(g *Graph) {
		for _, c := range cs {
			g.RegisterConsumer(c.Property, c.DefiningFile, c.Dependency)
		}
	}
}

// New builds the inheritance forest from nodes.
//
// A parent is located, in order of precedence, by an explicitly declared
// path, by matching coordinates against another local file, by the default
// parent path, and finally by matching coordinates against an external file.
// A declared parent that cannot be located is recorded and only reported
// when a lookup needs it.
func New(nodes []Node, opts ...Option) (*Graph, error) {
	g := &Graph{
		nodes:       make(map[string]*Node, len(nodes)),
		parent:      make(map[string]Edge),
		unavailable: make(map[string]deps.ParentRef),
		forest:      dag.New(),
		consumers:   make(map[propertyKey][]string),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i := range nodes {
		n := nodes[i]
		if _, dup := g.nodes[n.File]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate file %q in property graph", n.File)
		}
		g.nodes[n.File] = &n
		g.order = append(g.order, n.File)
		meta := dag.Metadata{}
		if n.Coordinates != "" {
			meta[MetaCoordinates] = n.Coordinates
		}
		if n.External {
			meta[MetaExternal] = true
		}
		if err := g.forest.AddNode(dag.Node{ID: n.File, Meta: meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "add file %q", n.File)
		}
	}

	for _, file := range g.order {
		n := g.nodes[file]
		if n.Parent.IsZero() {
			continue
		}
		e, ok := g.locateParent(n)
		if !ok {
			g.unavailable[file] = n.Parent
			if fn, found := g.forest.Node(file); found {
				fn.Meta[MetaUnavailable] = n.Parent.Coordinates
			}
			if g.strict {
				return nil, parentUnavailable(file, n.Parent)
			}
			continue
		}
		if err := g.forest.AddEdge(dag.Edge{From: e.Parent, To: e.Child, Meta: dag.Metadata{MetaKind: e.Kind.String()}}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "link %q to parent %q", e.Child, e.Parent)
		}
		g.parent[file] = e
	}

	if cycle := g.forest.FindCycle(); cycle != nil && g.strict {
		return nil, cyclic(cycle)
	}
	return g, nil
}

func (g *Graph) locateParent(n *Node) (Edge, bool) {
	ref := n.Parent
	var declared string
	if ref.Path != "" {
		declared = deps.ResolvePath(n.File, ref.Path, path.Base(n.File))
	}
	edge := func(parent string, kind EdgeKind) (Edge, bool) {
		return Edge{Child: n.File, Parent: parent, Kind: kind}, true
	}

	if ref.Explicit && g.pathMatches(declared, n) {
		return edge(declared, EdgeExplicit)
	}
	if ref.Coordinates != "" {
		if match := g.byCoordinates(ref.Coordinates, n.File, false); match != "" {
			if match == declared {
				return edge(match, EdgeImplicit)
			}
			return edge(match, EdgeSibling)
		}
	}
	if !ref.Explicit && g.pathMatches(declared, n) {
		return edge(declared, EdgeImplicit)
	}
	if ref.Coordinates != "" {
		if match := g.byCoordinates(ref.Coordinates, n.File, true); match != "" {
			return edge(match, EdgeExternal)
		}
	}
	return Edge{}, false
}

// pathMatches reports whether file exists and is consistent with the
// coordinates the child declared.
func (g *Graph) pathMatches(file string, child *Node) bool {
	if file == "" || file == child.File {
		return false
	}
	p, ok := g.nodes[file]
	if !ok {
		return false
	}
	want := child.Parent.Coordinates
	return want == "" || p.Coordinates == "" || p.Coordinates == want
}

func (g *Graph) byCoordinates(coords, self string, external bool) string {
	for _, file := range g.order {
		n := g.nodes[file]
		if file != self && n.External == external && n.Coordinates == coords {
			return file
		}
	}
	return ""
}

// Node returns the node for file.
func (g *Graph) Node(file string) (*Node, bool) {
	n, ok := g.nodes[file]
	return n, ok
}

// Files returns every file in insertion order.
func (g *Graph) Files() []string { return slices.Clone(g.order) }

// Parent returns the edge from file to its parent.
func (g *Graph) Parent(file string) (Edge, bool) {
	e, ok := g.parent[file]
	return e, ok
}

// Edges returns every inheritance edge, ordered by child insertion.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, file := range g.order {
		if e, ok := g.parent[file]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Unavailable returns the parent reference of file if it could not be located.
func (g *Graph) Unavailable(file string) (deps.ParentRef, bool) {
	ref, ok := g.unavailable[file]
	return ref, ok
}

// Ancestors returns the inheritance chain of file, nearest parent first,
// excluding file itself. The walk stops before repeating a file.
func (g *Graph) Ancestors(file string) []string {
	seen := map[string]bool{file: true}
	var out []string
	for {
		e, ok := g.parent[file]
		if !ok || seen[e.Parent] {
			return out
		}
		seen[e.Parent] = true
		out = append(out, e.Parent)
		file = e.Parent
	}
}

// Roots returns the files with no located parent, in insertion order.
func (g *Graph) Roots() []string {
	return dag.NodeIDs(g.forest.Sources())
}

// Leaves returns the files nothing inherits from, in insertion order.
func (g *Graph) Leaves() []string {
	return dag.NodeIDs(g.forest.Sinks())
}

// Children returns the files that inherit directly from file.
func (g *Graph) Children(file string) []string {
	return slices.Clone(g.forest.Children(file))
}

// Descendants returns every file that inherits from file, directly or not.
func (g *Graph) Descendants(file string) []string {
	return g.forest.Descendants(file)
}

// Forest returns the underlying graph, with edges pointing parent to child.
func (g *Graph) Forest() *dag.DAG { return g.forest }

// Cycle returns the files of an inheritance cycle, or nil.
func (g *Graph) Cycle() []string { return g.forest.FindCycle() }

// RegisterConsumer records that dependency reads property from definingFile.
func (g *Graph) RegisterConsumer(property, definingFile, dependency string) {
	k := propertyKey{property, definingFile}
	if !slices.Contains(g.consumers[k], dependency) {
		g.consumers[k] = append(g.consumers[k], dependency)
	}
}

// DependentsOfProperty returns the distinct dependency names that read the
// property defined in definingFile, sorted.
func (g *Graph) DependentsOfProperty(name, definingFile string) []string {
	out := slices.Clone(g.consumers[propertyKey{name, definingFile}])
	slices.Sort(out)
	return out
}

// IsShared reports whether more than one dependency reads the property.
func (g *Graph) IsShared(name, definingFile string) bool {
	return len(g.consumers[propertyKey{name, definingFile}]) > 1
}

func parentUnavailable(file string, ref deps.ParentRef) error {
	what := ref.Coordinates
	if what == "" {
		what = ref.Path
	}
	return errors.New(errors.ErrCodeParentUnavailable, "parent %s of %s was not supplied", what, file)
}

func cyclic(chain []string) error {
	return errors.New(errors.ErrCodeCyclicInheritance, "cyclic inheritance: %s", strings.Join(chain, " -> "))
}
