package golang

import (
	"path"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

const packageManager = "go_modules"

// GroupIndirect marks requirements carrying the "// indirect" comment.
const GroupIndirect = "indirect"

// GoModParser parses go.mod files. Every require line becomes an exact
// requirement whose span covers the version token. Modules that are
// replaced, or that another go.mod of the set declares, are skipped.
type GoModParser struct{}

func (p *GoModParser) Type() string              { return "go.mod" }
func (p *GoModParser) Supports(name string) bool { return path.Base(name) == "go.mod" }

func (p *GoModParser) Parse(files []*deps.DependencyFile) (*deps.ParseResult, error) {
	type parsed struct {
		file *deps.DependencyFile
		mod  *modfile.File
	}
	var mods []parsed
	internal := make(map[string]bool)
	for _, f := range files {
		if !p.Supports(f.Name) {
			continue
		}
		mf, err := modfile.Parse(f.Name, []byte(f.Content), nil)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", f.Name)
		}
		if mf.Module != nil {
			internal[mf.Module.Mod.Path] = true
		}
		mods = append(mods, parsed{f, mf})
	}

	set := deps.NewDependencySet()
	var nodes []deps.FileNode
	for _, m := range mods {
		node := deps.FileNode{File: m.file.Name}
		if m.mod.Module != nil {
			node.Coordinates = m.mod.Module.Mod.Path
		}
		nodes = append(nodes, node)
		if m.file.SupportFile {
			continue
		}

		replaced := make(map[string]bool)
		for _, r := range m.mod.Replace {
			replaced[r.Old.Path] = true
		}
		for _, r := range m.mod.Require {
			if internal[r.Mod.Path] || replaced[r.Mod.Path] {
				continue
			}
			req := deps.Requirement{
				File:        m.file.Name,
				Requirement: r.Mod.Version,
				Span:        versionSpan(m.file.Content, r.Syntax),
			}
			if r.Indirect {
				req.Groups = []string{GroupIndirect}
			}
			set.Add(deps.Dependency{
				Name:           r.Mod.Path,
				Version:        r.Mod.Version,
				Requirements:   []deps.Requirement{req},
				PackageManager: packageManager,
			})
		}
	}

	return &deps.ParseResult{
		Type:         p.Type(),
		Dependencies: set.Dependencies(),
		Nodes:        nodes,
	}, nil
}

// versionSpan locates the version token of a require line. The last token
// of the line is the version, whether it sits in a block or after "require".
func versionSpan(content string, line *modfile.Line) deps.Span {
	if line == nil || len(line.Token) < 2 {
		return deps.Span{}
	}
	start, end := line.Start.Byte, line.End.Byte
	if start < 0 || end > len(content) || start >= end {
		return deps.Span{}
	}
	text := content[start:end]
	modTok, verTok := line.Token[len(line.Token)-2], line.Token[len(line.Token)-1]

	i := strings.Index(text, modTok)
	if i < 0 {
		return deps.Span{}
	}
	i += len(modTok)
	j := strings.Index(text[i:], verTok)
	if j < 0 {
		return deps.Span{}
	}
	s := start + i + j
	if strings.HasPrefix(verTok, `"`) {
		return deps.Span{Start: s + 1, End: s + len(verTok) - 1}
	}
	return deps.Span{Start: s, End: s + len(verTok)}
}
