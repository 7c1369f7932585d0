package checker_test

import (
	"fmt"

	"github.com/matzehuels/stackbump/pkg/checker"
	"github.com/matzehuels/stackbump/pkg/deps"
	"github.com/matzehuels/stackbump/pkg/version"
)

func ExampleChecker_Decide() {
	dep := deps.Dependency{
		Name: "serde",
		Requirements: []deps.Requirement{
			{File: "Cargo.toml", Requirement: "1.0.150", Span: deps.Span{Start: 30, End: 37}},
		},
	}
	c := checker.New(checker.Input{
		Dependency: dep,
		Family:     version.Cargo,
		Available:  version.ParseAll([]string{"1.0.150", "1.0.188", "1.0.190-beta.1"}, version.Cargo),
	})

	d := c.Decide()
	fmt.Println(d.Reason, d.Target)
	fmt.Println(d.Dependencies[0].Requirements[0].Requirement)
	// Output:
	// update 1.0.188
	// 1.0.188
}
