package version_test

import (
	"fmt"

	"github.com/matzehuels/stackbump/pkg/version"
)

func ExampleCompare() {
	a := version.MustParse("1.0-rc1", version.Maven)
	b := version.MustParse("1.0.FINAL", version.Maven)
	c := version.MustParse("1", version.Maven)

	fmt.Println(version.Compare(a, b))
	fmt.Println(b.Equal(c))
	fmt.Println(b)
	// Output:
	// -1
	// true
	// 1.0.FINAL
}

func ExampleSort() {
	vs := version.ParseAll([]string{"2.0.0", "1.10.0", "1.9.0", "1.10.0-beta.1"}, version.Npm)
	version.Sort(vs)
	fmt.Println(vs)
	// Output:
	// [1.9.0 1.10.0-beta.1 1.10.0 2.0.0]
}
