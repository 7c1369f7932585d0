package rust

import (
	"regexp"
	"strings"

	"github.com/matzehuels/stackbump/pkg/deps"
)

// spanKey identifies a dependency entry: the dotted table it lives in
// (e.g. "dependencies", "target.cfg(unix).dependencies") and its key.
type spanKey struct {
	section string
	key     string
}

var inlineVersion = regexp.MustCompile(`(?:^|[{,\s])version\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// scanSpans walks the manifest line by line and records where each
// dependency's version string sits. The TOML decoder does not report
// positions, so this covers the three forms Cargo.toml uses:
//
//	serde = "1.0"
//	serde = { version = "1.0", features = ["derive"] }
//	[dependencies.serde]
//	version = "1.0"
func scanSpans(content string) map[spanKey]deps.Span {
	spans := make(map[spanKey]deps.Span)
	var table []string
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		start := offset
		offset += len(line)

		trimmed := strings.TrimSpace(stripComment(line))
		if strings.HasPrefix(trimmed, "[") {
			table = splitKey(strings.Trim(trimmed, "[]"))
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 || len(table) == 0 {
			continue
		}
		key := splitKey(strings.TrimSpace(line[:eq]))
		valueAt := start + eq + 1
		value := line[eq+1:]

		section := strings.Join(table, ".")
		switch {
		case len(key) == 1 && isDependencyTable(table):
			if s, ok := stringSpan(value, valueAt); ok {
				spans[spanKey{section, key[0]}] = s
			} else if m := inlineVersion.FindStringSubmatchIndex(value); m != nil {
				spans[spanKey{section, key[0]}] = submatchSpan(m, valueAt)
			}
		case len(key) == 2 && key[1] == "version" && isDependencyTable(table):
			if s, ok := stringSpan(value, valueAt); ok {
				spans[spanKey{section, key[0]}] = s
			}
		case len(key) == 1 && key[0] == "version" && len(table) > 1 && isDependencyTable(table[:len(table)-1]):
			if s, ok := stringSpan(value, valueAt); ok {
				parent := strings.Join(table[:len(table)-1], ".")
				spans[spanKey{parent, table[len(table)-1]}] = s
			}
		}
	}
	return spans
}

func isDependencyTable(table []string) bool {
	if len(table) == 0 {
		return false
	}
	switch table[len(table)-1] {
	case GroupNormal, GroupDev, GroupBuild:
		return len(table) == 1 ||
			(len(table) == 2 && table[0] == "workspace") ||
			(len(table) == 3 && table[0] == "target")
	}
	return false
}

// stringSpan returns the span of a quoted string that makes up the whole
// value, excluding the quotes.
func stringSpan(value string, at int) (deps.Span, bool) {
	lead := len(value) - len(strings.TrimLeft(value, " \t"))
	v := value[lead:]
	if v == "" || (v[0] != '"' && v[0] != '\'') {
		return deps.Span{}, false
	}
	end := strings.IndexByte(v[1:], v[0])
	if end < 0 {
		return deps.Span{}, false
	}
	s := at + lead + 1
	return deps.Span{Start: s, End: s + end}, true
}

func submatchSpan(m []int, at int) deps.Span {
	if m[2] >= 0 {
		return deps.Span{Start: at + m[2], End: at + m[3]}
	}
	return deps.Span{Start: at + m[4], End: at + m[5]}
}

// splitKey splits a dotted TOML key, honouring quoted parts.
func splitKey(key string) []string {
	var (
		parts []string
		cur   strings.Builder
		quote byte
	)
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '.':
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, strings.TrimSpace(cur.String()))
}

// stripComment drops a trailing # comment that is not inside a string.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}
