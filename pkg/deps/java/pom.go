package java

import (
	"maps"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/propgraph"
)

const (
	defaultPluginGroup  = "org.apache.maven.plugins"
	defaultRelativePath = "../pom.xml"
	packageManager      = "maven"
)

// POMParser reads pom.xml and .mvn/extensions.xml files.
//
// The whole file set is parsed together: properties are evaluated through
// the inheritance chain, so a child module reading ${guava.version} from its
// parent reports the parent as the property source.
type POMParser struct{}

func (p *POMParser) Type() string { return "pom.xml" }

func (p *POMParser) Supports(name string) bool { return isPOM(name) || isExtensions(name) }

func isPOM(name string) bool        { return strings.HasSuffix(name, "pom.xml") }
func isExtensions(name string) bool { return strings.HasSuffix(name, "extensions.xml") }

// Parse extracts the project's parent, dependencies (including
// dependencyManagement and plugin dependencies), plugins and build
// extensions. Dependencies that name a module of the project itself are
// skipped. Support files contribute properties but no dependencies.
//
// A file whose every dependency failed to evaluate returns the first
// failure; otherwise failures are dropped with the dependency that caused
// them.
func (p *POMParser) Parse(files []*deps.DependencyFile) (*deps.ParseResult, error) {
	var docs []*pomDoc
	for _, f := range files {
		if !p.Supports(f.Name) {
			continue
		}
		root, err := parseXML(f.Name, f.Content)
		if err != nil {
			return nil, err
		}
		docs = append(docs, &pomDoc{file: f, root: root})
	}

	nodes := make([]deps.FileNode, 0, len(docs))
	for _, d := range docs {
		nodes = append(nodes, d.node())
	}
	graph, err := propgraph.New(nodes)
	if err != nil {
		return nil, err
	}

	internal := internalNames(docs)
	set := deps.NewDependencySet()
	var consumers []deps.Consumer
	for _, d := range docs {
		if d.file.SupportFile {
			continue
		}
		ev := &evaluator{doc: d, graph: graph, internal: internal}
		found, cs, err := ev.dependencies()
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

type pomDoc struct {
	file *deps.DependencyFile
	root *element
}

func (d *pomDoc) isProject() bool { return d.root.name == "project" }

// coordinates returns "groupId:artifactId", inheriting the groupId from the
// parent when the project omits it.
func (d *pomDoc) coordinates() string {
	if !d.isProject() {
		return ""
	}
	group, ok := d.root.childText("groupId")
	if !ok {
		group, ok = textAt(d.root, "parent", "groupId")
	}
	artifact, ok2 := d.root.childText("artifactId")
	if !ok || !ok2 {
		return ""
	}
	return group + ":" + artifact
}

func (d *pomDoc) node() deps.FileNode {
	n := deps.FileNode{File: d.file.Name, External: d.file.Remote}
	if !d.isProject() {
		return n
	}
	n.Coordinates = d.coordinates()

	if props := d.root.child("properties"); props != nil {
		for _, c := range props.children {
			n.Definitions = append(n.Definitions, deps.Definition{
				Name:  c.name,
				Value: c.text,
				File:  d.file.Name,
				Span:  c.span,
			})
		}
	}

	n.Builtins = make(map[string]string)
	version, _ := d.root.childText("version")
	if parent := d.root.child("parent"); parent != nil {
		g, _ := parent.childText("groupId")
		a, _ := parent.childText("artifactId")
		v, _ := parent.childText("version")
		n.Parent = deps.ParentRef{Coordinates: g + ":" + a, Path: defaultRelativePath}
		if rp := parent.child("relativePath"); rp != nil {
			n.Parent.Path = rp.text
			n.Parent.Explicit = true
		}
		if version == "" {
			version = v
		}
		n.Builtins["project.parent.groupId"] = g
		n.Builtins["project.parent.artifactId"] = a
		n.Builtins["project.parent.version"] = v
	}
	if group, artifact, ok := strings.Cut(n.Coordinates, ":"); ok {
		n.Builtins["project.groupId"] = group
		n.Builtins["project.artifactId"] = artifact
	}
	n.Builtins["project.version"] = version
	for k, v := range maps.Clone(n.Builtins) {
		if rest, ok := strings.CutPrefix(k, "project."); ok {
			n.Builtins["pom."+rest] = v
		}
	}
	return n
}

// internalNames returns the coordinates of the project's own modules.
// Downloaded parents are not part of the project.
func internalNames(docs []*pomDoc) map[string]bool {
	return coordinateSet(docs, false)
}

func coordinateSet(docs []*pomDoc, includeRemote bool) map[string]bool {
	names := make(map[string]bool)
	for _, d := range docs {
		if d.file.Remote && !includeRemote {
			continue
		}
		if c := d.coordinates(); c != "" {
			names[c] = true
		}
	}
	return names
}

type nodeKind int

const (
	kindDependency nodeKind = iota
	kindParent
	kindPlugin
)

type evaluator struct {
	doc      *pomDoc
	graph    *propgraph.Graph
	internal map[string]bool
}

func (e *evaluator) file() string { return e.doc.file.Name }

func (e *evaluator) dependencies() ([]deps.Dependency, []deps.Consumer, error) {
	var (
		found     []deps.Dependency
		consumers []deps.Consumer
		errs      []error
	)
	extensionsFile := isExtensions(e.file())
	e.doc.root.walk(func(el *element) {
		kind, ok := classify(el, e.doc.root, extensionsFile)
		if !ok {
			return
		}
		dep, consumer, err := e.build(el, kind)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if dep == nil {
			return
		}
		found = append(found, *dep)
		if consumer != nil {
			consumers = append(consumers, *consumer)
		}
	})
	if len(errs) > 0 && len(found) == 0 {
		return nil, nil, errs[0]
	}
	return found, consumers, nil
}

func classify(el, root *element, extensionsFile bool) (nodeKind, bool) {
	switch {
	case el.name == "extension" && el.parentName() == "extensions":
		return kindDependency, true
	case extensionsFile:
		return 0, false
	case el.name == "parent" && el.parent == root:
		return kindParent, true
	case el.name == "dependency" && el.parentName() == "dependencies":
		return kindDependency, true
	case el.name == "plugin" && el.parentName() == "plugins":
		return kindPlugin, true
	}
	return 0, false
}

func (e *evaluator) build(el *element, kind nodeKind) (*deps.Dependency, *deps.Consumer, error) {
	name, ok, err := e.name(el, kind)
	if err != nil || !ok || e.internal[name] {
		return nil, nil, err
	}
	if kind != kindPlugin {
		if raw, ok := el.childText("classifier"); ok {
			classifier, err := e.eval(raw)
			if err != nil {
				return nil, nil, err
			}
			if classifier != "" {
				name += ":" + classifier
			}
		}
	}

	req := deps.Requirement{File: e.file(), Metadata: map[string]string{}}
	var consumer *deps.Consumer
	if v := el.child("version"); v != nil {
		req.Span = v.span
		if prop := firstProperty(v.text); prop != "" {
			def, err := e.graph.ResolveProperty(prop, e.file())
			if err != nil {
				return nil, nil, err
			}
			req.PropertyRef = prop
			req.Metadata[deps.MetaPropertyName] = prop
			req.Metadata[deps.MetaPropertySource] = def.File
			consumer = &deps.Consumer{Property: def.Name, DefiningFile: def.File, Dependency: name}
		}
		value, err := e.eval(v.text)
		if err != nil {
			return nil, nil, err
		}
		req.Requirement = strings.TrimSpace(value)
	}

	scope, err := e.optional(el, "scope", "compile")
	if err != nil {
		return nil, nil, err
	}
	if scope == "test" {
		req.Groups = []string{"test"}
	}

	packaging := "pom"
	if kind != kindParent {
		if packaging, err = e.optional(el, "type", "jar"); err != nil {
			return nil, nil, err
		}
	}
	req.Metadata[deps.MetaPackagingType] = packaging

	return &deps.Dependency{
		Name:           name,
		Version:        exactVersion(req.Requirement),
		Requirements:   []deps.Requirement{req},
		PackageManager: packageManager,
	}, consumer, nil
}

func (e *evaluator) name(el *element, kind nodeKind) (string, bool, error) {
	rawArtifact, ok := el.childText("artifactId")
	if !ok {
		return "", false, nil
	}
	rawGroup, ok := el.childText("groupId")
	if !ok {
		if kind != kindPlugin {
			return "", false, nil
		}
		rawGroup = defaultPluginGroup
	}
	group, err := e.eval(rawGroup)
	if err != nil {
		return "", false, err
	}
	artifact, err := e.eval(rawArtifact)
	if err != nil {
		return "", false, err
	}
	return group + ":" + artifact, true, nil
}

// optional evaluates a child element, returning def when it is absent or
// evaluates to the empty string.
func (e *evaluator) optional(el *element, child, def string) (string, error) {
	raw, ok := el.childText(child)
	if !ok {
		return def, nil
	}
	v, err := e.eval(raw)
	if err != nil || v == "" {
		return def, err
	}
	return v, nil
}

func (e *evaluator) eval(raw string) (string, error) {
	if !propgraph.HasReference(raw) {
		return raw, nil
	}
	return e.graph.Interpolate(raw, e.file())
}

// firstProperty returns the name inside the first ${...} of s.
func firstProperty(s string) string {
	start := strings.Index(s, "${")
	if start < 0 {
		return ""
	}
	end := strings.Index(s[start:], "}")
	if end < 0 {
		return ""
	}
	return s[start+2 : start+end]
}

// exactVersion derives the Version of a requirement: empty for ranges, and
// with pin brackets removed otherwise.
func exactVersion(requirement string) string {
	if requirement == "" || strings.Contains(requirement, ",") {
		return ""
	}
	return strings.TrimSpace(strings.Trim(requirement, "()[]"))
}

func textAt(el *element, names ...string) (string, bool) {
	c := el.path(names...)
	if c == nil {
		return "", false
	}
	return c.text, true
}
