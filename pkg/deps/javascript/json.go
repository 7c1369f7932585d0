package javascript

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/errors"
)

type jsonKind int

const (
	jsonOther jsonKind = iota
	jsonObject
	jsonArray
	jsonString
)

// jsonValue is a decoded JSON value that remembers where string values sit
// in the source. Object members keep their source order.
type jsonValue struct {
	kind    jsonKind
	str     string
	span    deps.Span // string contents, without the quotes
	members []jsonMember
	items   []*jsonValue
}

type jsonMember struct {
	key   string
	value *jsonValue
}

func (v *jsonValue) get(key string) *jsonValue {
	if v == nil || v.kind != jsonObject {
		return nil
	}
	for _, m := range v.members {
		if m.key == key {
			return m.value
		}
	}
	return nil
}

func (v *jsonValue) stringValue() (string, bool) {
	if v == nil || v.kind != jsonString {
		return "", false
	}
	return v.str, true
}

// stringItems returns the string items of an array.
func (v *jsonValue) stringItems() []string {
	if v == nil || v.kind != jsonArray {
		return nil
	}
	var out []string
	for _, item := range v.items {
		if s, ok := item.stringValue(); ok {
			out = append(out, s)
		}
	}
	return out
}

type jsonParser struct {
	d       *json.Decoder
	content string
}

func parseJSON(name, content string) (*jsonValue, error) {
	d := json.NewDecoder(strings.NewReader(content))
	d.UseNumber()
	p := &jsonParser{d: d, content: content}
	v, err := p.value()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	if v.kind != jsonObject {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "parse %s: top-level value is not an object", name)
	}
	return v, nil
}

// next returns the next token and the byte offset where it starts. The
// decoder consumes separators silently, so they are skipped here too.
func (p *jsonParser) next() (json.Token, int, int, error) {
	start := int(p.d.InputOffset())
	tok, err := p.d.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, 0, 0, err
	}
	end := int(p.d.InputOffset())
	for start < end && strings.IndexByte(" \t\r\n:,", p.content[start]) >= 0 {
		start++
	}
	return tok, start, end, nil
}

func (p *jsonParser) value() (*jsonValue, error) {
	tok, start, end, err := p.next()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := &jsonValue{kind: jsonObject}
			for p.d.More() {
				keyTok, _, _, err := p.next()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := p.value()
				if err != nil {
					return nil, err
				}
				v.members = append(v.members, jsonMember{key: key, value: val})
			}
			_, _, _, err := p.next()
			return v, err
		case '[':
			v := &jsonValue{kind: jsonArray}
			for p.d.More() {
				item, err := p.value()
				if err != nil {
					return nil, err
				}
				v.items = append(v.items, item)
			}
			_, _, _, err := p.next()
			return v, err
		}
	case string:
		v := &jsonValue{kind: jsonString, str: t}
		if end-start >= 2 && p.content[start] == '"' && p.content[end-1] == '"' {
			v.span = deps.Span{Start: start + 1, End: end - 1}
		}
		return v, nil
	}
	return &jsonValue{kind: jsonOther}, nil
}
