package deps

import (
	"fmt"
	"path"
	"strings"
)

// FileParser reads dependency declarations from a set of related files.
//
// Parsers see the whole file set at once because a single dependency can be
// declared across files: a property defined in a parent pom.xml, a pnpm
// catalog entry, a Cargo workspace dependency.
type FileParser interface {
	// Type returns the parser identifier (e.g., "pom.xml", "package.json").
	Type() string
	// Supports reports whether this parser handles the given file name.
	Supports(filename string) bool
	// Parse extracts dependencies, inheritance nodes and property consumers.
	Parse(files []*DependencyFile) (*ParseResult, error)
}

// ParseResult holds everything a parser extracted from a file set.
type ParseResult struct {
	Type         string       // Parser type that produced this result
	Dependencies []Dependency // One entry per logical dependency, sorted by name
	Nodes        []FileNode   // Inheritance graph input, one per parsed file
	Consumers    []Consumer   // Property reads, for shared-property detection
}

// Dependency returns the named dependency.
func (r *ParseResult) Dependency(name string) (Dependency, bool) {
	return FindDependency(r.Dependencies, name)
}

// Definition is a named value declared in a file: a Maven property, a pnpm
// catalog entry or a Cargo workspace dependency.
type Definition struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	File  string `json:"file"`
	Span  Span   `json:"span"` // Location of Value in the file

	// Builtin marks implicit values such as project.version, which have no
	// text of their own to rewrite.
	Builtin bool `json:"builtin,omitempty"`
}

// ParentRef describes how a file names the file it inherits from.
type ParentRef struct {
	Path        string // Relative path to the parent file, from this file's directory
	Explicit    bool   // Path was written in the file rather than defaulted
	Coordinates string // Identity of the parent (e.g., "groupId:artifactId")
}

// IsZero reports whether the file declares no parent.
func (p ParentRef) IsZero() bool { return p.Path == "" && p.Coordinates == "" }

// FileNode is one file of the inheritance forest.
type FileNode struct {
	File        string            // File name within the set
	Coordinates string            // Identity other files may reference
	Definitions []Definition      // Properties declared in this file
	Parent      ParentRef         // Declared parent, if any
	Builtins    map[string]string // Implicit properties such as project.version
	External    bool              // File was fetched from a remote source
}

// Definition returns the file's own definition of name.
func (n FileNode) Definition(name string) (Definition, bool) {
	for _, d := range n.Definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Consumer records that a dependency reads a property.
type Consumer struct {
	Property     string
	DefiningFile string
	Dependency   string
}

// DetectParser finds a parser that supports the given file name.
// Returns an error if no parser matches.
func DetectParser(name string, parsers ...FileParser) (FileParser, error) {
	base := path.Base(name)
	for _, p := range parsers {
		if p.Supports(base) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unsupported dependency file: %s", base)
}

// ResolvePath joins a relative reference onto the directory of from, in
// slash-separated form. A reference without a file extension names a
// directory and resolves to fileName inside it.
func ResolvePath(from, ref, fileName string) string {
	p := path.Join(path.Dir(from), ref)
	if base := path.Base(p); fileName != "" && (path.Ext(base) == "" || strings.Trim(base, ".") == "") {
		p = path.Join(p, fileName)
	}
	return p
}
