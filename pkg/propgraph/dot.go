package propgraph

import "github.com/matzehuels/stackbump/pkg/render/nodelink"

// DOT renders the inheritance forest in Graphviz DOT format, with edges
// labelled by how the parent was located.
func (g *Graph) DOT(detailed bool) string {
	return nodelink.ToDOT(g.forest, nodelink.Options{Detailed: detailed, EdgeLabelKey: MetaKind})
}
