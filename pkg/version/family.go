package version

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// Family selects the version grammar and ordering rules of an ecosystem.
// It is chosen once at the boundary (by the ecosystem parser) and threaded
// through every parse and comparison call.
type Family int

const (
	// Maven orders versions the way Maven's ComparableVersion does, with
	// qualifier ranks and null padding.
	Maven Family = iota + 1
	// Npm is major.minor.patch[-pre][+build] semver as used by npm, yarn and pnpm.
	Npm
	// Gomod is Go module semver with a mandatory "v" prefix, including
	// pseudo-versions and +incompatible.
	Gomod
	// Cargo is Cargo's semver dialect. Versions order like Npm; only the
	// requirement grammar differs.
	Cargo
)

var familyNames = map[Family]string{
	Maven: "maven",
	Npm:   "npm",
	Gomod: "gomod",
	Cargo: "cargo",
}

var familyAliases = map[string]Family{
	"maven":  Maven,
	"java":   Maven,
	"gradle": Maven,
	"npm":    Npm,
	"yarn":   Npm,
	"pnpm":   Npm,
	"bun":    Npm,
	"node":   Npm,
	"gomod":  Gomod,
	"go":     Gomod,
	"golang": Gomod,
	"cargo":  Cargo,
	"rust":   Cargo,
}

// String returns the canonical family name.
func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// IsSemver reports whether the family uses fixed-arity semver ordering.
func (f Family) IsSemver() bool {
	return f == Npm || f == Gomod || f == Cargo
}

// ParseFamily resolves a family name or ecosystem alias ("yarn", "rust", ...).
func ParseFamily(name string) (Family, error) {
	if f, ok := familyAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidLanguage, "unknown version family %q (available: maven, npm, gomod, cargo)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
