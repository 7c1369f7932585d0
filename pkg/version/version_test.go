package version

import (
	"testing"
	"time"

	"github.com/matzehuels/stackbump/pkg/errors"
)

func TestMavenCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "1.1", -1},
		{"1-snapshot", "1", -1},
		{"1", "1-sp", -1},
		{"1-foo2", "1-foo10", -1},
		{"1.foo", "1-foo", -1},
		{"1-foo", "1-1", -1},
		{"1-1", "1.1", -1},
		{"1.ga", "1-ga", 0},
		{"1-ga", "1-0", 0},
		{"1-0", "1.0", 0},
		{"1.0", "1", 0},
		{"1", "1.0.", 0},
		{"1.0-.2", "1.0-0.2", 0},
		{"1.0.FINAL", "1", 0},
		{"1-sp", "1-ga", 1},
		{"1-sp.1", "1-ga.1", 1},
		{"1-sp-1", "1-ga-1", -1},
		{"1-ga-1", "1-1", 0},
		{"1-a1", "1-alpha-1", 0},
		{"181", "dev", 1},
		{"1.0.0u1", "1.0.0", 1},
		{"1.0.0", "1.0.0a1", 1},
		{"Finchley", "Edgware", 1},
		{"v1.0.0", "1.0.0", 0},
		{"23.3-jre", "23.5-jre", -1},
		{"23.4-jre", "23.5.0", -1},
		{"23.6-jre", "23.5", 1},
		{"1.0-rc1", "1.0", -1},
		{"1.0-alpha", "1.0-beta", -1},
		{"1.0-m1", "1.0-rc1", -1},
		{"1.0-CR1", "1.0-rc1", 0},
		{"1.0-rc1", "1.0-SNAPSHOT", -1},
		{"2.0.0.RELEASE", "2.0.0", 0},
		{"4.5.3", "4.6.1", -1},
		{"1", "1-0.1", -1},
		{"1-0.1", "1-0.2", -1},
		{"1.0.0_1", "1.0.0-1", 0},
		{"99999999999999999999999", "99999999999999999999998", 1},
		{"1.0+build.2", "1.0+build.1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a := MustParse(tt.a, Maven)
			b := MustParse(tt.b, Maven)
			if got := Compare(a, b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d (tokens %s vs %s)", tt.a, tt.b, got, tt.want, a.Tokens(), b.Tokens())
			}
			if got := Compare(b, a); got != -tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestMavenTokens(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1-z-1-2", "[1, [z, [1, [2]]]]"},
		{"1.0.0", "[1]"},
		{"23.5-jre", "[23, 5, [jre]]"},
		{"1.0-alpha-1", "[1, [alpha, [1]]]"},
		{"1-a1", "[1, [alpha, [1]]]"},
		{"1.0.0u1", "[1, [u, [1]]]"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := MustParse(tt.raw, Maven)
			if got := v.Tokens().String(); got != tt.want {
				t.Errorf("Tokens(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMavenTotalOrder(t *testing.T) {
	corpus := []string{
		"1", "1.1", "1-snapshot", "1-sp", "1-foo2", "1-foo10", "1.foo", "1-foo", "1-1",
		"1.0-.2", "1-sp.1", "1-ga.1", "1-sp-1", "1-ga-1", "1-a1", "181", "dev",
		"1.0.0u1", "1.0.0a1", "Finchley", "Edgware", "23.5-jre", "23.5.0",
		"1.0-rc1", "1.0-alpha", "1.0-beta", "1.0-m1", "1.0-alpha-1", "1.0-alpha-2",
		"1.0-sp-2", "2", "2.0.1", "1.0.0.0.1", "1-xyz", "1-abc", "0.9", "1-0.1",
		"1.1-rc", "1.1-rc-1", "1.0.RELEASE",
	}
	vs := make([]Version, len(corpus))
	for i, raw := range corpus {
		vs[i] = MustParse(raw, Maven)
	}

	for _, a := range vs {
		if Compare(a, a) != 0 {
			t.Errorf("%s is not equal to itself", a)
		}
		for _, b := range vs {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("antisymmetry violated for %s, %s", a, b)
			}
			for _, c := range vs {
				if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
					t.Fatalf("transitivity violated: %s <= %s <= %s but %s > %s", a, b, c, a, c)
				}
			}
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		raw    string
		family Family
	}{
		{"", Maven},
		{"   ", Maven},
		{"...", Maven},
		{"1.0$", Maven},
		{"1.0+", Maven},
		{"", Npm},
		{"not-a-version", Npm},
		{"1.2.3.4.5", Cargo},
		{"", Gomod},
		{"v1.2.3.4", Gomod},
		{"latest", Gomod},
	}

	for _, tt := range tests {
		t.Run(tt.family.String()+"/"+tt.raw, func(t *testing.T) {
			_, err := Parse(tt.raw, tt.family)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.raw)
			}
			if !errors.Is(err, errors.ErrCodeMalformedVersion) {
				t.Errorf("Parse(%q) code = %s, want %s", tt.raw, errors.GetCode(err), errors.ErrCodeMalformedVersion)
			}
		})
	}
}

func TestStringPreservesRaw(t *testing.T) {
	for _, tt := range []struct {
		raw    string
		family Family
	}{
		{"1.0.FINAL", Maven},
		{"V1.0", Maven},
		{"1.2", Npm},
		{"1.2.3+build.7", Npm},
		{"1.2.3", Gomod},
		{"v0.0.0-20191109021931-daa7c04131f5", Gomod},
	} {
		v := MustParse(tt.raw, tt.family)
		if v.String() != tt.raw {
			t.Errorf("String() = %q, want %q", v.String(), tt.raw)
		}
	}
}

func TestSemverCompare(t *testing.T) {
	tests := []struct {
		a, b   string
		family Family
		want   int
	}{
		{"1.2.3", "1.2.4", Npm, -1},
		{"1.2", "1.2.0", Npm, 0},
		{"1.2.3-beta.2", "1.2.3-beta.10", Npm, -1},
		{"1.2.3-rc.1", "1.2.3", Npm, -1},
		{"1.2.3+a", "1.2.3+b", Npm, 0},
		{"v2.0.0", "2.0.0", Cargo, 0},
		{"0.10.0", "0.9.0", Cargo, 1},
		{"v1.2.3", "1.2.3", Gomod, 0},
		{"v2.0.0+incompatible", "v1.9.9", Gomod, 1},
		{"v0.0.0-20191109021931-daa7c04131f5", "v0.0.1", Gomod, -1},
		{"v1.10.0", "v1.9.0", Gomod, 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a := MustParse(tt.a, tt.family)
			b := MustParse(tt.b, tt.family)
			if got := Compare(a, b); got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBuildMetadata(t *testing.T) {
	v := MustParse("1.2.3+sha.abc", Npm)
	if v.Build() != "sha.abc" {
		t.Errorf("Build() = %q, want sha.abc", v.Build())
	}
	g := MustParse("v2.0.0+incompatible", Gomod)
	if g.Build() != "incompatible" {
		t.Errorf("Build() = %q, want incompatible", g.Build())
	}
}

func TestIsPrerelease(t *testing.T) {
	tests := []struct {
		raw    string
		family Family
		want   bool
	}{
		{"1.0-SNAPSHOT", Maven, true},
		{"1.0-rc1", Maven, true},
		{"1.0.0-M2", Maven, true},
		{"1.0", Maven, false},
		{"1.0-sp1", Maven, false},
		{"23.5-jre", Maven, false},
		{"1.0.Final", Maven, false},
		{"1.2.3-beta.1", Npm, true},
		{"1.2.3", Npm, false},
		{"v0.0.0-20191109021931-daa7c04131f5", Gomod, true},
		{"v1.2.3", Gomod, false},
	}

	for _, tt := range tests {
		if got := MustParse(tt.raw, tt.family).IsPrerelease(); got != tt.want {
			t.Errorf("IsPrerelease(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"23.5-jre", []string{"23", "5"}},
		{"v1.2.3", []string{"1", "2", "3"}},
		{"20040616", []string{"20040616"}},
		{"Finchley", nil},
		{"1.x", []string{"1"}},
	}

	for _, tt := range tests {
		got := Numeric(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("Numeric(%q) = %v, want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Numeric(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		}
	}
}

func TestRelease(t *testing.T) {
	tests := []struct {
		raw    string
		family Family
		want   string
	}{
		{"1.0.0-beta.1", Npm, "1"},
		{"1.0.0", Npm, "1"},
		{"2.0.0-alpha.1", Npm, "2"},
		{"1.2.3-rc.1", Cargo, "1.2.3"},
		{"v1.2.0-pre", Gomod, "1.2"},
		{"2.0-rc1", Maven, "2"},
		{"23.05-jre", Maven, "23.5"},
	}

	for _, tt := range tests {
		if got := MustParse(tt.raw, tt.family).Release(); got != tt.want {
			t.Errorf("Release(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestMajor(t *testing.T) {
	if m, ok := MustParse("20040616", Maven).Major(); !ok || m != 20040616 {
		t.Errorf("Major() = %d, %v", m, ok)
	}
	if _, ok := MustParse("Finchley", Maven).Major(); ok {
		t.Error("Major() should fail for a named release")
	}
	if m, ok := MustParse("v3.1.0", Gomod).Major(); !ok || m != 3 {
		t.Errorf("Major() = %d, %v", m, ok)
	}
}

func TestMaxTieBreak(t *testing.T) {
	a := MustParse("1.0", Maven)
	b := MustParse("1.0.0", Maven)

	got, ok := Max([]Version{a, b})
	if !ok || got.String() != "1.0.0" {
		t.Errorf("Max without timestamps = %q, want later-listed 1.0.0", got)
	}

	now := time.Now()
	a = a.WithPublished(now)
	b = b.WithPublished(now.Add(-time.Hour))
	got, _ = Max([]Version{a, b})
	if got.String() != "1.0" {
		t.Errorf("Max with timestamps = %q, want later-published 1.0", got)
	}

	if _, ok := Max(nil); ok {
		t.Error("Max(nil) should report false")
	}
}

func TestSortAndParseAll(t *testing.T) {
	vs := ParseAll([]string{"1.10", "junk$", "1.2", "1.0-rc1", "1.0"}, Maven)
	if len(vs) != 4 {
		t.Fatalf("ParseAll kept %d versions, want 4", len(vs))
	}
	Sort(vs)
	want := []string{"1.0-rc1", "1.0", "1.2", "1.10"}
	for i, v := range vs {
		if v.String() != want[i] {
			t.Errorf("Sort()[%d] = %s, want %s", i, v, want[i])
		}
	}

	lo, _ := Min(vs)
	if lo.String() != "1.0-rc1" {
		t.Errorf("Min() = %s", lo)
	}
	if !Contains(vs, MustParse("1.2.0", Maven)) {
		t.Error("Contains should match equal versions")
	}
}

func TestParseFamily(t *testing.T) {
	for name, want := range map[string]Family{"maven": Maven, "Yarn": Npm, "go": Gomod, "rust": Cargo} {
		got, err := ParseFamily(name)
		if err != nil || got != want {
			t.Errorf("ParseFamily(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseFamily("pypi"); !errors.Is(err, errors.ErrCodeInvalidLanguage) {
		t.Errorf("ParseFamily(pypi) error = %v", err)
	}
}
