package java

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

const xmlSpace = " \t\r\n"

// element is a POM element with the byte span of its text content.
// Namespaces are dropped; only local names are kept.
type element struct {
	name     string
	parent   *element
	children []*element
	text     string
	span     deps.Span
	open     int // offset just past the start tag
	hasText  bool
}

// parseXML decodes content into an element tree. Text spans index into the
// raw content, so entity escapes and comments beside a value are preserved
// when the span is rewritten.
func parseXML(name, content string) (*element, error) {
	d := xml.NewDecoder(strings.NewReader(content))
	// Offsets must index the original bytes, so declared charsets are not
	// transcoded.
	d.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	var root, cur *element
	for {
		start := int(d.InputOffset())
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", name)
		}
		end := int(d.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, parent: cur, open: end}
			if cur == nil {
				if root != nil {
					return nil, errors.New(errors.ErrCodeInvalidManifest, "parse %s: multiple root elements", name)
				}
				root = el
			} else {
				cur.children = append(cur.children, el)
			}
			cur = el
		case xml.CharData:
			if cur != nil {
				cur.addText(content, start, end, string(t))
			}
		case xml.EndElement:
			if cur == nil {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "parse %s: unexpected end element", name)
			}
			cur.text = strings.TrimSpace(cur.text)
			if !cur.hasText {
				cur.span = deps.Span{Start: cur.open, End: cur.open}
			}
			cur = cur.parent
		}
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "parse %s: empty document", name)
	}
	return root, nil
}

// addText records a run of character data. The span covers the first
// non-blank run only, trimmed of surrounding whitespace.
func (e *element) addText(content string, start, end int, decoded string) {
	e.text += decoded
	if e.hasText || end > len(content) {
		return
	}
	raw := content[start:end]
	trimmed := strings.Trim(raw, xmlSpace)
	if trimmed == "" {
		return
	}
	lead := len(raw) - len(strings.TrimLeft(raw, xmlSpace))
	e.span = deps.Span{Start: start + lead, End: start + lead + len(trimmed)}
	e.hasText = true
}

func (e *element) child(name string) *element {
	for _, c := range e.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (e *element) childText(name string) (string, bool) {
	c := e.child(name)
	if c == nil {
		return "", false
	}
	return c.text, true
}

func (e *element) path(names ...string) *element {
	cur := e
	for _, n := range names {
		if cur = cur.child(n); cur == nil {
			return nil
		}
	}
	return cur
}

// walk visits e and its descendants in document order.
func (e *element) walk(fn func(*element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

func (e *element) parentName() string {
	if e.parent == nil {
		return ""
	}
	return e.parent.name
}
