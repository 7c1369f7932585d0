package updater

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/version"
)

// UpdateRequirement computes the requirement text that admits target,
// written in the style of old. It reports false when old should stay as it
// is: it already admits target (and the strategy does not force a bump), it
// is a wildcard or empty, or no rewrite in its style can admit target.
//
// Operators (^, ~, ~>, >=, =, v) and the number of version components of
// the old text are kept: "^1.2" bumped to 2.0.5 becomes "^2.0".
func UpdateRequirement(old string, family version.Family, target version.Version, strategy Strategy) (string, bool) {
	trimmed := strings.TrimSpace(old)
	if trimmed == "" {
		return old, false
	}
	c, err := constraint.Parse(trimmed, family)
	if err != nil || c.Kind() == constraint.KindWildcard {
		return old, false
	}
	satisfied := c.Satisfies(target)

	var updated string
	if family == version.Maven {
		updated = updateMaven(trimmed, c, target, satisfied)
	} else {
		if satisfied && strategy != StrategyBump {
			return old, false
		}
		updated = updateSemver(trimmed, family, target, strategy, satisfied)
	}
	if updated == "" || updated == trimmed {
		return old, false
	}
	if nc, err := constraint.Parse(updated, family); err != nil || !nc.Satisfies(target) {
		return old, false
	}
	lead := old[:strings.Index(old, trimmed)]
	return lead + updated + old[len(lead)+len(trimmed):], true
}

func updateMaven(req string, c constraint.Constraint, target version.Version, satisfied bool) string {
	switch {
	case c.IsHardPin():
		return "[" + target.String() + "]"
	case c.Kind() == constraint.KindExact:
		return target.String()
	case satisfied:
		return req
	case strings.HasSuffix(req, ".+"):
		return prefixRange(strings.TrimSuffix(req, ".+"), target)
	case req[0] == '[' || req[0] == '(':
		return widenMavenRange(req, target)
	}
	return updateAlternative(req, target)
}

// prefixRange rewrites a Gradle prefix such as "1.2" (from "1.2.+").
func prefixRange(prefix string, target version.Version) string {
	n := len(strings.Split(prefix, "."))
	nums := target.Numeric()
	if len(nums) < n {
		return ""
	}
	return strings.Join(nums[:n], ".") + ".+"
}

// widenMavenRange closes the last bracket group at target:
// "[1.0,2.0)" becomes "[1.0,2.1]".
func widenMavenRange(req string, target version.Version) string {
	i := strings.LastIndexAny(req, "[(")
	group := req[i:]
	comma := strings.IndexByte(group, ',')
	if comma < 0 {
		return ""
	}
	if lower := strings.TrimSpace(group[1:comma]); lower != "" {
		lv, err := version.Parse(lower, version.Maven)
		if err != nil || version.Compare(lv, target) > 0 {
			return ""
		}
	}
	rest := group[comma+1:]
	space := rest[:len(rest)-len(strings.TrimLeft(rest, " \t"))]
	return req[:i] + group[:comma+1] + space + target.String() + "]"
}

func updateSemver(req string, family version.Family, target version.Version, strategy Strategy, satisfied bool) string {
	alts := strings.Split(req, "||")
	if len(alts) > 1 {
		if satisfied {
			return req
		}
		last := alts[len(alts)-1]
		bumped := updateAlternative(strings.TrimSpace(last), target)
		if bumped == "" {
			return ""
		}
		if strategy == StrategyWiden {
			return strings.TrimRight(req, " \t") + " || " + bumped
		}
		lead := last[:len(last)-len(strings.TrimLeft(last, " \t"))]
		return strings.Join(alts[:len(alts)-1], "||") + "||" + lead + bumped
	}

	bumped := updateAlternative(req, target)
	if bumped == "" {
		return ""
	}
	if strategy == StrategyWiden && !satisfied && family == version.Npm && isShorthand(req) {
		return req + " || " + bumped
	}
	return bumped
}

var termPattern = regexp.MustCompile(`(\^|~>|~|>=|<=|>|<|==|=)?\s*(v?(?:\d+|[xX*])(?:\.(?:\d+|[xX*]))*(?:[-+][0-9A-Za-z.+-]*)?)`)

type term struct {
	op         string
	start, end int // bounds of the version text
	text       string
}

func terms(alt string) []term {
	var out []term
	for _, m := range termPattern.FindAllStringSubmatchIndex(alt, -1) {
		t := term{start: m[4], end: m[5], text: alt[m[4]:m[5]]}
		if m[2] >= 0 {
			t.op = alt[m[2]:m[3]]
		}
		out = append(out, t)
	}
	return out
}

// isShorthand reports whether alt is a single caret or tilde term.
func isShorthand(alt string) bool {
	ts := terms(alt)
	return len(ts) == 1 && (ts[0].op == "^" || ts[0].op == "~" || ts[0].op == "~>")
}

// updateAlternative rewrites one AND-group in place. Single terms and the
// upper end of a hyphen range move to target; "<" bounds move to the next
// major version; lower bounds stay.
func updateAlternative(alt string, target version.Version) string {
	ts := terms(alt)
	if len(ts) == 0 {
		return ""
	}
	replace := make(map[int]string)
	switch {
	case len(ts) == 1 && ts[0].op != "<" && ts[0].op != "<=" && ts[0].op != ">" && ts[0].op != ">=":
		replace[0] = versionText(ts[0].text, target.String(), target.IsPrerelease())
	case len(ts) == 2 && strings.TrimSpace(alt[ts[0].end:ts[1].start]) == "-" && ts[1].op == "":
		replace[1] = versionText(ts[1].text, target.String(), target.IsPrerelease())
	default:
		for i, t := range ts {
			switch t.op {
			case "<":
				replace[i] = versionText(t.text, nextMajor(target), false)
			case "<=":
				replace[i] = versionText(t.text, target.String(), target.IsPrerelease())
			}
		}
	}

	var b strings.Builder
	pos := 0
	for i, t := range ts {
		text, ok := replace[i]
		if !ok {
			continue
		}
		b.WriteString(alt[pos:t.start])
		b.WriteString(text)
		pos = t.end
	}
	b.WriteString(alt[pos:])
	return b.String()
}

func nextMajor(target version.Version) string {
	major, _ := target.Major()
	return fmt.Sprintf("%d.0.0", major+1)
}

// versionText writes newRaw with the precision of old. A fully specified
// old version (three components, or a pre-release) takes newRaw as is;
// a partial one keeps its component count and any x/* wildcards.
func versionText(old, newRaw string, prerelease bool) string {
	prefix, body := "", old
	if strings.HasPrefix(body, "v") || strings.HasPrefix(body, "V") {
		prefix, body = body[:1], body[1:]
	}
	full := strings.TrimPrefix(strings.TrimPrefix(newRaw, "v"), "V")

	core := body
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	wildcard := false
	for _, p := range parts {
		wildcard = wildcard || isWildcard(p)
	}
	if !wildcard && (len(parts) >= 3 || core != body || prerelease) {
		return prefix + full
	}

	nums := version.Numeric(full)
	out := make([]string, len(parts))
	for i, p := range parts {
		switch {
		case isWildcard(p):
			out[i] = p
		case i < len(nums):
			out[i] = nums[i]
		default:
			out[i] = "0"
		}
	}
	return prefix + strings.Join(out, ".")
}

func isWildcard(p string) bool { return p == "x" || p == "X" || p == "*" }
