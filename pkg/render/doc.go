// Package render groups the visualization outputs of stackbump.
//
// The [nodelink] subpackage draws a project's dependency file inheritance
// (Maven parents, workspace members) as a Graphviz diagram:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/stackbump/pkg/render/nodelink
package render
