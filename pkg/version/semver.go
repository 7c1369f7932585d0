package version

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	modsemver "golang.org/x/mod/semver"

	"github.com/matzehuels/stackbump/pkg/errors"
)

// parseSemver parses an npm or Cargo version. Partial versions ("1.2") and a
// leading "v" are accepted and padded the way Masterminds/semver does.
func parseSemver(raw string) (*semver.Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New(errors.ErrCodeMalformedVersion, "empty version")
	}
	sv, err := semver.NewVersion(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedVersion, err, "malformed version %q", raw)
	}
	return sv, nil
}

// parseGomod returns the canonical "v"-prefixed form of a Go module version.
// The prefix is added for comparison only; the raw string is kept as given.
func parseGomod(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New(errors.ErrCodeMalformedVersion, "empty version")
	}
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	if !modsemver.IsValid(s) {
		return "", errors.New(errors.ErrCodeMalformedVersion, "malformed version %q: not a Go module version", raw)
	}
	return s, nil
}

// semverTokens renders a semver triple and prerelease identifiers as a
// TokenTree so that callers can inspect every family through Tokens().
func semverTokens(major, minor, patch uint64, pre string) TokenTree {
	seq := []TokenTree{
		Num(strconv.FormatUint(major, 10)),
		Num(strconv.FormatUint(minor, 10)),
		Num(strconv.FormatUint(patch, 10)),
	}
	if pre != "" {
		ids := strings.Split(pre, ".")
		preSeq := make([]TokenTree, 0, len(ids))
		for _, id := range ids {
			if id != "" && strings.Trim(id, "0123456789") == "" {
				preSeq = append(preSeq, Num(id))
			} else {
				preSeq = append(preSeq, TokenTree{Kind: KindStr, Str: strings.ToLower(id)})
			}
		}
		seq = append(seq, Seq(preSeq...))
	}
	return Seq(seq...)
}

// gomodParts splits a canonical Go module version into its numeric triple
// and prerelease. Build metadata ("+incompatible") is returned separately.
func gomodParts(canon string) (major, minor, patch uint64, pre, build string) {
	build = strings.TrimPrefix(modsemver.Build(canon), "+")
	canon = modsemver.Canonical(canon)
	pre = strings.TrimPrefix(modsemver.Prerelease(canon), "-")
	core := strings.TrimPrefix(canon, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.SplitN(core, ".", 3)
	nums := [3]uint64{}
	for i := 0; i < len(parts) && i < 3; i++ {
		nums[i], _ = strconv.ParseUint(parts[i], 10, 64)
	}
	return nums[0], nums[1], nums[2], pre, build
}
