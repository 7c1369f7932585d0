package version

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// Version is an immutable parsed version of one ecosystem family.
//
// The zero Version is not valid; use Parse. Versions of the same family are
// totally ordered by Compare. Equal versions may have different raw strings
// ("1.0" == "1" == "1-ga" in the Maven family).
type Version struct {
	raw       string
	family    Family
	tokens    TokenTree
	build     string
	sv        *semver.Version
	canon     string
	published time.Time
}

// Parse parses raw in the grammar of family. It fails with
// MALFORMED_VERSION when raw is empty or has no version segments.
func Parse(raw string, family Family) (Version, error) {
	v := Version{raw: raw, family: family}
	switch family {
	case Maven:
		tokens, build, err := parseMaven(raw)
		if err != nil {
			return Version{}, err
		}
		v.tokens, v.build = tokens, build
	case Npm, Cargo:
		sv, err := parseSemver(raw)
		if err != nil {
			return Version{}, err
		}
		v.sv = sv
		v.build = sv.Metadata()
		v.tokens = semverTokens(sv.Major(), sv.Minor(), sv.Patch(), sv.Prerelease())
	case Gomod:
		canon, err := parseGomod(raw)
		if err != nil {
			return Version{}, err
		}
		major, minor, patch, pre, build := gomodParts(canon)
		v.canon = canon
		v.build = build
		v.tokens = semverTokens(major, minor, patch, pre)
	default:
		return Version{}, errors.New(errors.ErrCodeInvalidLanguage, "unknown version family %d", family)
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(raw string, family Family) Version {
	v, err := Parse(raw, family)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the raw input verbatim.
func (v Version) String() string { return v.raw }

// Family returns the grammar v was parsed with.
func (v Version) Family() Family { return v.family }

// Tokens returns the token tree used for ordering.
func (v Version) Tokens() TokenTree { return v.tokens }

// Build returns the build metadata after "+", or "".
func (v Version) Build() string { return v.build }

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool { return v.family == 0 }

// Published returns the release timestamp attached with WithPublished.
func (v Version) Published() time.Time { return v.published }

// WithPublished returns a copy of v carrying the registry release time.
// The timestamp never affects Compare; it breaks ties in Max.
func (v Version) WithPublished(t time.Time) Version {
	v.published = t
	return v
}

// IsPrerelease reports whether v is a pre-release: a Maven version with a
// qualifier ranked below release (alpha, beta, milestone, rc, snapshot) or a
// semver version with a pre-release component.
func (v Version) IsPrerelease() bool {
	switch v.family {
	case Maven:
		return mavenPrerelease(v.tokens)
	case Npm, Cargo:
		return v.sv != nil && v.sv.Prerelease() != ""
	case Gomod:
		return modsemver.Prerelease(v.canon) != ""
	}
	return false
}

// Numeric returns the leading dot-separated numeric segments of the raw
// string, e.g. ["23", "5"] for "23.5-jre". A leading "v" is skipped. The
// result reflects how precisely the version was written, which the
// updater preserves when rewriting requirements.
func Numeric(raw string) []string {
	s := strings.TrimSpace(raw)
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && isDigit(s[1]) {
		s = s[1:]
	}
	var out []string
	for s != "" {
		i := 0
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == 0 {
			break
		}
		out = append(out, s[:i])
		if i == len(s) || s[i] != '.' {
			break
		}
		s = s[i+1:]
	}
	return out
}

// Numeric returns the leading numeric segments of v's raw string.
func (v Version) Numeric() []string { return Numeric(v.raw) }

// Release returns the release line of v: its leading numeric segments with
// leading zeros and trailing zero segments dropped, so "1.0.0-beta.1",
// "1.0-rc1" and "v1" all share the release "1". Pre-releases of the same
// release belong to one channel.
func (v Version) Release() string {
	parts := v.Numeric()
	for i, p := range parts {
		if p = strings.TrimLeft(p, "0"); p == "" {
			p = "0"
		}
		parts[i] = p
	}
	for len(parts) > 0 && parts[len(parts)-1] == "0" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// Major returns the first numeric segment of v, or false when the raw
// string does not start with a number.
func (v Version) Major() (uint64, bool) {
	if v.family.IsSemver() && len(v.tokens.Seq) > 0 {
		return digitsToUint(v.tokens.Seq[0].Num)
	}
	parts := v.Numeric()
	if len(parts) == 0 {
		return 0, false
	}
	return digitsToUint(parts[0])
}

func digitsToUint(s string) (uint64, bool) {
	var n uint64
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		next := n*10 + uint64(s[i]-'0')
		if next < n {
			return 0, false
		}
		n = next
	}
	return n, s != ""
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
// Versions of different families order by family.
func Compare(a, b Version) int {
	if a.family != b.family {
		return cmpInt(int(a.family), int(b.family))
	}
	switch a.family {
	case Maven:
		if c := compareTokens(&a.tokens, &b.tokens); c != 0 {
			return c
		}
		return strings.Compare(a.build, b.build)
	case Npm, Cargo:
		if a.sv == nil || b.sv == nil {
			return cmpInt(boolInt(a.sv != nil), boolInt(b.sv != nil))
		}
		return a.sv.Compare(b.sv)
	case Gomod:
		return modsemver.Compare(a.canon, b.canon)
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compare orders v against other. See the package-level Compare.
func (v Version) Compare(other Version) int { return Compare(v, other) }

// Equal reports whether v and other are equal under the version order.
func (v Version) Equal(other Version) bool { return Compare(v, other) == 0 }

// Less reports whether v orders before other.
func (v Version) Less(other Version) bool { return Compare(v, other) < 0 }

// MarshalText implements encoding.TextMarshaler using the raw string.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.raw), nil
}
