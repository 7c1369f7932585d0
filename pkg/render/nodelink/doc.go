// Package nodelink renders graphs as node-link diagrams.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{EdgeLabelKey: "kind"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The stackbump graph command uses this to draw the file inheritance forest:
// one box per dependency file, an arrow from each parent to the files that
// inherit from it.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
