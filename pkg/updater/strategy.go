package updater

import (
	"strings"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// Strategy selects how a range requirement follows a new version.
type Strategy int

const (
	// StrategyBump moves the requirement to the new version even when the
	// old one already admits it: "^1.2.0" becomes "^1.4.0".
	StrategyBump Strategy = iota
	// StrategyBumpIfNecessary bumps only requirements that exclude the new
	// version.
	StrategyBumpIfNecessary
	// StrategyWiden keeps admitted versions and extends the requirement:
	// "^1.2.0" becomes "^1.2.0 || ^2.0.0".
	StrategyWiden
)

var strategyNames = map[Strategy]string{
	StrategyBump:            "bump",
	StrategyBumpIfNecessary: "bump_if_necessary",
	StrategyWiden:           "widen",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return "unknown"
}

// ParseStrategy parses a strategy name. The empty string means bump.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "bump", "bump_versions":
		return StrategyBump, nil
	case "bump_if_necessary", "bump_versions_if_necessary":
		return StrategyBumpIfNecessary, nil
	case "widen", "widen_ranges":
		return StrategyWiden, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown requirements strategy %q (available: bump, bump_if_necessary, widen)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
