package updater

import (
	"slices"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
	"github.com/matzehuels/stackbump/pkg/propgraph"
)

// Edits computes the file edits that take dep from its PreviousRequirements
// to its Requirements.
//
// An occurrence that reads a property is written at the property's
// definition, once, however many occurrences read it. Occurrences without
// requirement text (managed by a parent, or reading a property defined in
// another file) produce no edit. Text that already holds the new value is
// skipped, so applying the same update twice is a no-op.
//
// Errors: UNSUPPORTED when the property is built-in, is defined outside the
// project, or is only part of the requirement text in a way that cannot be
// rewritten; INVALID_INPUT when a file no longer holds the text it was
// parsed with.
func Edits(files []*deps.DependencyFile, graph *propgraph.Graph, dep deps.Dependency) ([]FileEdit, error) {
	var out []FileEdit
	for i, req := range dep.Requirements {
		prev, ok := previous(dep, i)
		if !ok || prev.IsNil() || req.IsNil() || prev.Requirement == req.Requirement {
			continue
		}

		var (
			fe      FileEdit
			pending bool
			err     error
		)
		if prop := prev.PropertyName(); prop != "" {
			fe, pending, err = propertyEdit(files, graph, prop, prev, req)
		} else {
			fe, pending, err = literalEdit(files, prev, req)
		}
		if err != nil {
			return nil, err
		}
		if pending && !slices.Contains(out, fe) {
			out = append(out, fe)
		}
	}
	return out, nil
}

// previous finds the occurrence that requirement i replaced: the one at the
// same index when it names the same location, otherwise any with the same
// file and span.
func previous(dep deps.Dependency, i int) (deps.Requirement, bool) {
	req := dep.Requirements[i]
	if i < len(dep.PreviousRequirements) {
		if p := dep.PreviousRequirements[i]; p.File == req.File && p.Span == req.Span {
			return p, true
		}
	}
	for _, p := range dep.PreviousRequirements {
		if p.File == req.File && p.Span == req.Span {
			return p, true
		}
	}
	return deps.Requirement{}, false
}

func literalEdit(files []*deps.DependencyFile, prev, req deps.Requirement) (FileEdit, bool, error) {
	f, err := editable(files, prev.File)
	if err != nil {
		return FileEdit{}, false, err
	}
	return spanEdit(f, prev.Span, prev.Requirement, req.Requirement)
}

func propertyEdit(files []*deps.DependencyFile, graph *propgraph.Graph, prop string, prev, req deps.Requirement) (FileEdit, bool, error) {
	if graph == nil {
		return FileEdit{}, false, errors.New(errors.ErrCodeInvalidInput, "%s reads property %q but no property graph was given", prev.File, prop)
	}
	def, err := graph.ResolveProperty(prop, prev.File)
	if err != nil {
		return FileEdit{}, false, err
	}
	if def.Builtin {
		return FileEdit{}, false, errors.New(errors.ErrCodeUnsupported, "property %q is built in and cannot be rewritten", def.Name)
	}
	f, err := editable(files, def.File)
	if err != nil {
		return FileEdit{}, false, errors.Wrap(errors.ErrCodeUnsupported, err, "property %q", def.Name)
	}
	value, ok := substitute(prev.Requirement, req.Requirement, def.Value)
	if !ok {
		// The definition may already hold the value the new requirement
		// reads, from an earlier run of the same update.
		if current, applied := substitute(req.Requirement, req.Requirement, def.Value); applied && current == def.Value {
			return FileEdit{}, false, nil
		}
		return FileEdit{}, false, errors.New(errors.ErrCodeUnsupported,
			"requirement %q is not expressible through property %q", req.Requirement, def.Name)
	}
	return spanEdit(f, def.Span, def.Value, value)
}

// editable returns the named project file, refusing remote support files.
func editable(files []*deps.DependencyFile, name string) (*deps.DependencyFile, error) {
	f, ok := deps.FindFile(files, name)
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file %q is not part of the update", name)
	}
	if f.Remote {
		return nil, errors.New(errors.ErrCodeUnsupported, "file %q was fetched from a registry and cannot be updated", name)
	}
	return f, nil
}

func spanEdit(f *deps.DependencyFile, span deps.Span, old, updated string) (FileEdit, bool, error) {
	if span.End > len(f.Content) || span.Start > span.End {
		return FileEdit{}, false, errors.New(errors.ErrCodeInvalidInput, "span [%d,%d) outside %s", span.Start, span.End, f.Name)
	}
	switch f.Content[span.Start:span.End] {
	case old:
		return FileEdit{File: f.Name, Edit: Edit{Span: span, Text: updated}}, true, nil
	case updated:
		return FileEdit{}, false, nil
	}
	return FileEdit{}, false, errors.New(errors.ErrCodeInvalidInput,
		"%s changed since it was parsed: expected %q at [%d,%d)", f.Name, old, span.Start, span.End)
}

// substitute derives a property's new value from the requirement texts
// around it: with prev "[1.0]", value "1.0" and updated "[2.0]" the
// property becomes "2.0".
func substitute(prev, updated, value string) (string, bool) {
	i := strings.Index(prev, value)
	if i < 0 {
		return "", false
	}
	pre, suf := prev[:i], prev[i+len(value):]
	if len(updated) < len(pre)+len(suf) || !strings.HasPrefix(updated, pre) || !strings.HasSuffix(updated, suf) {
		return "", false
	}
	return updated[len(pre) : len(updated)-len(suf)], true
}

// UpdateFiles rewrites files for every dependency in updated and returns
// only the files whose content changed. Dependencies are applied in name
// order; a file already holding the new requirements is left out, so the
// update is idempotent.
func UpdateFiles(files []*deps.DependencyFile, graph *propgraph.Graph, updated []deps.Dependency) ([]*deps.DependencyFile, error) {
	sorted := slices.Clone(updated)
	slices.SortStableFunc(sorted, func(a, b deps.Dependency) int { return strings.Compare(a.Name, b.Name) })

	c := NewComposer(files)
	for _, d := range sorted {
		edits, err := Edits(files, graph, d)
		if err != nil {
			return nil, err
		}
		if err := c.Add(edits); err != nil {
			return nil, err
		}
	}
	return c.Files()
}
