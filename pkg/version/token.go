package version

import (
	"strings"
)

// Kind identifies the variant held by a TokenTree.
type Kind uint8

const (
	// KindNum is a numeric segment.
	KindNum Kind = iota
	// KindStr is an alphabetic segment (a qualifier).
	KindStr
	// KindSeq is a nested list of segments.
	KindSeq
)

// TokenTree is the recursive token structure of a parsed version:
// Num(digits) | Str(qualifier) | Seq([]TokenTree).
//
// Numbers are held as decimal digit strings without leading zeros so that
// arbitrarily long segments compare exactly. Qualifiers are held after alias
// substitution ("ga" becomes "", "cr" becomes "rc", ...).
type TokenTree struct {
	Kind Kind
	Num  string
	Str  string
	Seq  []TokenTree
}

// Num returns a numeric token. Leading zeros are dropped.
func Num(digits string) TokenTree {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return TokenTree{Kind: KindNum, Num: digits}
}

// Str returns a qualifier token, applying qualifier aliases.
func Str(word string) TokenTree {
	return TokenTree{Kind: KindStr, Str: canonicalQualifier(strings.ToLower(word), false)}
}

// Seq returns a list token.
func Seq(items ...TokenTree) TokenTree {
	return TokenTree{Kind: KindSeq, Seq: items}
}

// IsNull reports whether the token is equivalent to an absent segment:
// numeric zero, the release qualifier, or an empty list.
func (t TokenTree) IsNull() bool {
	switch t.Kind {
	case KindNum:
		return t.Num == "0"
	case KindStr:
		return t.Str == ""
	default:
		return len(t.Seq) == 0
	}
}

// String renders the tree in bracket notation, e.g. [1, [z, [1, [2]]]].
func (t TokenTree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TokenTree) write(b *strings.Builder) {
	switch t.Kind {
	case KindNum:
		b.WriteString(t.Num)
	case KindStr:
		if t.Str == "" {
			b.WriteString(`""`)
		} else {
			b.WriteString(t.Str)
		}
	default:
		b.WriteByte('[')
		for i, item := range t.Seq {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	}
}

// =============================================================================
// Qualifiers
// =============================================================================

// qualifierOrder lists known qualifiers from lowest to highest; "" is release.
var qualifierOrder = []string{"alpha", "beta", "milestone", "rc", "snapshot", "", "sp"}

var qualifierAliases = map[string]string{
	"ga":      "",
	"final":   "",
	"release": "",
	"cr":      "rc",
	"pre":     "rc",
	"preview": "rc",
	"pr":      "rc",
	"dev":     "snapshot",
}

// releaseRank is the rank key of the release qualifier ("").
var releaseRank = qualifierRank("")

func canonicalQualifier(word string, followedByDigit bool) string {
	if followedByDigit && len(word) == 1 {
		switch word {
		case "a":
			return "alpha"
		case "b":
			return "beta"
		case "m":
			return "milestone"
		}
	}
	if alias, ok := qualifierAliases[word]; ok {
		return alias
	}
	return word
}

// qualifierRank returns a key that orders qualifiers by comparing the keys
// lexically: known qualifiers by position, unknown words after all of them
// and alphabetically among themselves.
func qualifierRank(q string) string {
	for i, known := range qualifierOrder {
		if q == known {
			return string(rune('0' + i))
		}
	}
	return string(rune('0'+len(qualifierOrder))) + "-" + q
}

// isPrereleaseQualifier reports whether q ranks below a release.
func isPrereleaseQualifier(q string) bool {
	return qualifierRank(q) < releaseRank
}

// =============================================================================
// Comparison
// =============================================================================

// sign places a token relative to an absent segment: -1 below, 0 equal,
// +1 above.
func sign(t *TokenTree) int {
	if t == nil || t.IsNull() {
		return 0
	}
	switch t.Kind {
	case KindNum:
		return 1
	case KindStr:
		if qualifierRank(t.Str) > releaseRank {
			return 1
		}
		return -1
	default:
		for i := range t.Seq {
			if s := sign(&t.Seq[i]); s != 0 {
				return s
			}
		}
		return 0
	}
}

// kindOrder orders non-null tokens of the same sign by variant:
// qualifiers < lists < numbers, so 1.foo < 1-foo < 1-1 < 1.1.
var kindOrder = [...]int{KindStr: 0, KindSeq: 1, KindNum: 2}

// compareTokens compares two tokens; nil stands for an absent segment.
//
// Tokens are first ordered by their sign relative to an absent segment and
// only then structurally. Comparing structure first would make the order
// intransitive (1 < 1.foo < 1-snapshot < 1).
func compareTokens(a, b *TokenTree) int {
	if a != nil && a.IsNull() {
		a = nil
	}
	if b != nil && b.IsNull() {
		b = nil
	}
	sa, sb := sign(a), sign(b)
	if sa != sb {
		return cmpInt(sa, sb)
	}
	if a == nil || b == nil {
		return 0
	}
	if a.Kind != b.Kind {
		return cmpInt(kindOrder[a.Kind], kindOrder[b.Kind])
	}
	switch a.Kind {
	case KindNum:
		return compareDigits(a.Num, b.Num)
	case KindStr:
		return strings.Compare(qualifierRank(a.Str), qualifierRank(b.Str))
	default:
		return compareSeq(a.Seq, b.Seq)
	}
}

func compareSeq(a, b []TokenTree) int {
	for i := 0; i < max(len(a), len(b)); i++ {
		var l, r *TokenTree
		if i < len(a) {
			l = &a[i]
		}
		if i < len(b) {
			r = &b[i]
		}
		if c := compareTokens(l, r); c != 0 {
			return c
		}
	}
	return 0
}

// compareDigits compares two decimal strings without leading zeros.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		return cmpInt(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
