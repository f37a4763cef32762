package helpers

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	gonumGraph "gonum.org/v1/gonum/graph"
)

type IterableGraph interface {
	gonumGraph.Graph
	Edges() gonumGraph.Edges
}

// ToGraphvizDot renders graph in dot format.
// Nodes implementing fmt.Stringer are labelled with their string form.
// Nodes contained in highlight are filled, which is used to mark active sources and user inputs.
func ToGraphvizDot(graph IterableGraph, highlight ...gonumGraph.Node) (out []byte, err error) {
	G := graphviz.New()
	g, err := G.Graph()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cErr := g.Close(); cErr != nil && err == nil {
			err = cErr
		}
		if cErr := G.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	highlighted := make(map[int64]struct{}, len(highlight))
	for _, n := range highlight {
		highlighted[n.ID()] = struct{}{}
	}

	nodeToName := func(node gonumGraph.Node) string {
		return strconv.FormatInt(node.ID(), 10)
	}

	nodeIter := graph.Nodes()
	nodeIter.Reset()
	for nodeIter.Next() {
		node := nodeIter.Node()
		n, err := g.CreateNode(nodeToName(node))
		if err != nil {
			return nil, err
		}
		if stringer, ok := node.(fmt.Stringer); ok {
			n.SetLabel(stringer.String())
		}
		if _, ok := highlighted[node.ID()]; ok {
			n.SetStyle(cgraph.FilledNodeStyle)
		}
	}

	edgeIter := graph.Edges()
	edgeIter.Reset()
	for edgeIter.Next() {
		edge := edgeIter.Edge()
		f, err := g.Node(nodeToName(edge.From()))
		if err != nil {
			return nil, err
		}
		t, err := g.Node(nodeToName(edge.To()))
		if err != nil {
			return nil, err
		}
		if _, err = g.CreateEdge(fmt.Sprintf("%s->%s", f.Name(), t.Name()), f, t); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err = G.Render(g, "dot", &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
