package version

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// parseMaven tokenizes a Maven version string into a TokenTree.
//
// The string is lowercased, a leading "v" before a digit is dropped and "_"
// is read as "-". Anything after the first "+" is build metadata and is
// returned separately.
//
// Segments are split on "." and "-" and on every transition between digits
// and letters. A "-" or a digit/letter transition opens a nested list, so
// "1-z-1-2" becomes [1, [z, [1, [2]]]]. Trailing null segments (0, "ga",
// "final", ...) are dropped from every list.
func parseMaven(raw string) (TokenTree, string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return TokenTree{}, "", errors.New(errors.ErrCodeMalformedVersion, "empty version")
	}
	if len(s) > 1 && s[0] == 'v' && isDigit(s[1]) {
		s = s[1:]
	}
	s = strings.ReplaceAll(s, "_", "-")

	var build string
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s, build = s[:i], s[i+1:]
		if build == "" {
			return TokenTree{}, "", errors.New(errors.ErrCodeMalformedVersion, "malformed version %q: empty build metadata", raw)
		}
	}

	alnum := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c), c >= 'a' && c <= 'z':
			alnum = true
		case c == '.', c == '-':
		default:
			return TokenTree{}, "", errors.New(errors.ErrCodeMalformedVersion, "malformed version %q: unexpected character %q", raw, c)
		}
	}
	if !alnum {
		return TokenTree{}, "", errors.New(errors.ErrCodeMalformedVersion, "malformed version %q: no version segments", raw)
	}
	for i := 0; i < len(build); i++ {
		if c := build[i]; !isDigit(c) && !(c >= 'a' && c <= 'z') && c != '.' && c != '-' {
			return TokenTree{}, "", errors.New(errors.ErrCodeMalformedVersion, "malformed version %q: unexpected character %q in build metadata", raw, c)
		}
	}

	return tokenizeMaven(s), build, nil
}

// mavenList is a list under construction. Children are pointers so that a
// nested list can still grow after it has been appended to its parent.
type mavenList struct {
	items []*mavenNode
}

type mavenNode struct {
	tok  TokenTree
	list *mavenList
}

func (n *mavenNode) isNull() bool {
	if n.list != nil {
		return len(n.list.items) == 0
	}
	return n.tok.IsNull()
}

func tokenizeMaven(s string) TokenTree {
	root := &mavenList{}
	cur := root
	stack := []*mavenList{root}

	push := func() {
		next := &mavenList{}
		cur.items = append(cur.items, &mavenNode{list: next})
		cur = next
		stack = append(stack, next)
	}
	item := func(digits bool, seg string, followedByDigit bool) *mavenNode {
		if digits {
			return &mavenNode{tok: Num(seg)}
		}
		return &mavenNode{tok: TokenTree{Kind: KindStr, Str: canonicalQualifier(seg, followedByDigit)}}
	}

	digits := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '.' || c == '-':
			if i == start {
				cur.items = append(cur.items, &mavenNode{tok: Num("0")})
			} else {
				cur.items = append(cur.items, item(digits, s[start:i], false))
			}
			start = i + 1
			if c == '-' {
				push()
			}
		case isDigit(c):
			if !digits && i > start {
				cur.items = append(cur.items, item(false, s[start:i], true))
				start = i
				push()
			}
			digits = true
		default:
			if digits && i > start {
				cur.items = append(cur.items, item(true, s[start:i], false))
				start = i
				push()
			}
			digits = false
		}
	}
	if len(s) > start {
		cur.items = append(cur.items, item(digits, s[start:], false))
	}

	for i := len(stack) - 1; i >= 0; i-- {
		normalizeMaven(stack[i])
	}
	return freezeMaven(root)
}

// normalizeMaven drops trailing null items, looking through trailing
// sublists, and flattens a list whose only element is a sublist.
func normalizeMaven(l *mavenList) {
	for i := len(l.items) - 1; i >= 0; i-- {
		n := l.items[i]
		if n.isNull() {
			l.items = append(l.items[:i], l.items[i+1:]...)
			continue
		}
		if n.list == nil {
			break
		}
	}
	if len(l.items) == 1 && l.items[0].list != nil {
		l.items = l.items[0].list.items
	}
}

func freezeMaven(l *mavenList) TokenTree {
	seq := make([]TokenTree, 0, len(l.items))
	for _, n := range l.items {
		if n.list != nil {
			seq = append(seq, freezeMaven(n.list))
		} else {
			seq = append(seq, n.tok)
		}
	}
	return TokenTree{Kind: KindSeq, Seq: seq}
}

// mavenPrerelease reports whether any qualifier in the tree ranks below
// a release ("alpha", "rc", "snapshot", ...).
func mavenPrerelease(t TokenTree) bool {
	switch t.Kind {
	case KindStr:
		return t.Str != "" && isPrereleaseQualifier(t.Str)
	case KindSeq:
		for _, item := range t.Seq {
			if mavenPrerelease(item) {
				return true
			}
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
