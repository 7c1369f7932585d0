package deps_test

import (
	"fmt"

	"github.com/matzehuels/stackbump/pkg/constraint"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/version"
)

func ExampleSecurityAdvisory_IsVulnerable() {
	adv := deps.SecurityAdvisory{
		DependencyName: "lodash",
		Patched:        []constraint.Constraint{constraint.MustParse(">=4.17.21", version.Npm)},
	}

	for _, raw := range []string{"4.17.20", "4.17.21"} {
		v := version.MustParse(raw, version.Npm)
		fmt.Printf("%s vulnerable: %v\n", raw, adv.IsVulnerable(v))
	}
	// Output:
	// 4.17.20 vulnerable: true
	// 4.17.21 vulnerable: false
}

func ExampleParseReleases() {
	releases := []deps.Release{{Version: "1.10.0"}, {Version: "not-a-version"}, {Version: "1.9.0"}}

	for _, v := range deps.ParseReleases(releases, version.Npm) {
		fmt.Println(v)
	}
	// Output:
	// 1.9.0
	// 1.10.0
}

func ExampleSpan_Overlaps() {
	a := deps.Span{Start: 10, End: 15}
	fmt.Println(a.Overlaps(deps.Span{Start: 14, End: 20}))
	fmt.Println(a.Overlaps(deps.Span{Start: 15, End: 20}))
	// Output:
	// true
	// false
}
