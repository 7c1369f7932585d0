package integrations_test

import (
	"fmt"

	"github.com/matzehuels/stackbump/pkg/integrations"
)

func ExampleNormalizePkgName() {
	fmt.Println(integrations.NormalizePkgName("  React  "))
	fmt.Println(integrations.NormalizePkgName("@Types/Node"))
	// Output:
	// react
	// @types/node
}

func ExampleURLEncode() {
	// Scoped npm names keep the @ but escape the slash
	fmt.Println(integrations.URLEncode("@scope/package"))
	// Output:
	// @scope%2Fpackage
}
