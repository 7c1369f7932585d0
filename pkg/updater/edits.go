package updater

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

// Edit replaces the bytes of Span with Text.
type Edit struct {
	Span deps.Span
	Text string
}

// FileEdit is an Edit to a named file.
type FileEdit struct {
	File string
	Edit
}

// ApplyEdits applies edits to content. Edits are applied back to front so
// that earlier spans stay valid; identical duplicates are applied once.
//
// Errors: OVERLAPPING_EDITS when two different edits touch the same bytes
// (or insert at the same offset), INVALID_INPUT when a span falls outside
// content.
func ApplyEdits(content string, edits []Edit) (string, error) {
	sorted, err := normalize(edits, len(content))
	if err != nil {
		return "", err
	}
	out := content
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		out = out[:e.Span.Start] + e.Text + out[e.Span.End:]
	}
	return out, nil
}

// normalize validates edits against a content of length n and returns them
// sorted by position with duplicates removed.
func normalize(edits []Edit, n int) ([]Edit, error) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Span.End, b.Span.End)
	})

	out := sorted[:0]
	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End < e.Span.Start || e.Span.End > n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "edit span [%d,%d) outside content of length %d",
				e.Span.Start, e.Span.End, n)
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev == e {
				continue
			}
			if conflicts(prev.Span, e.Span) {
				return nil, errors.New(errors.ErrCodeOverlappingEdits, "edits [%d,%d) and [%d,%d) overlap",
					prev.Span.Start, prev.Span.End, e.Span.Start, e.Span.End)
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// conflicts reports whether two spans, a sorted before b, cannot both be
// applied. Two insertions at the same offset conflict because their order
// would be arbitrary.
func conflicts(a, b deps.Span) bool {
	if a.Overlaps(b) {
		return true
	}
	return a.Start == b.Start && (a.Len() == 0 || b.Len() == 0)
}

// Rewrite replaces the text of a single occurrence. Only the bytes inside
// the occurrence's span change; surrounding whitespace, comments and
// brackets are kept.
func Rewrite(content string, occ deps.Requirement, newRequirement string) (string, error) {
	return ApplyEdits(content, []Edit{{Span: occ.Span, Text: newRequirement}})
}

// Composer accumulates the edits of several dependencies and applies them
// per file. Dependencies are added one at a time so that a dependency whose
// edits collide with ones already accepted can be rejected on its own.
type Composer struct {
	files  []*deps.DependencyFile
	byFile map[string][]Edit
}

// NewComposer returns a Composer over the original file snapshot.
func NewComposer(files []*deps.DependencyFile) *Composer {
	return &Composer{files: files, byFile: make(map[string][]Edit)}
}

// Add accepts edits atomically: either all of them are recorded or, on
// OVERLAPPING_EDITS or an unknown file, none are.
func (c *Composer) Add(edits []FileEdit) error {
	staged := make(map[string][]Edit)
	for _, fe := range edits {
		f, ok := deps.FindFile(c.files, fe.File)
		if !ok {
			return errors.New(errors.ErrCodeFileNotFound, "edit targets unknown file %q", fe.File)
		}
		if _, seen := staged[fe.File]; !seen {
			staged[fe.File] = slices.Clone(c.byFile[fe.File])
		}
		staged[fe.File] = append(staged[fe.File], fe.Edit)
		if _, err := normalize(staged[fe.File], len(f.Content)); err != nil {
			return err
		}
	}
	for file, es := range staged {
		c.byFile[file] = es
	}
	return nil
}

// Files returns the files whose content changed, in the order the snapshot
// lists them. Files left byte-identical by their edits are omitted.
func (c *Composer) Files() ([]*deps.DependencyFile, error) {
	var out []*deps.DependencyFile
	for _, f := range c.files {
		edits, ok := c.byFile[f.Name]
		if !ok {
			continue
		}
		content, err := ApplyEdits(f.Content, edits)
		if err != nil {
			return nil, err
		}
		if content != f.Content {
			out = append(out, f.WithContent(content))
		}
	}
	return out, nil
}
