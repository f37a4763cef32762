package dependency

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Troublor/erebus-sandwich/helpers"
	"github.com/Troublor/erebus-sandwich/ir"
)

var ErrUnknownContract = errors.New("contract unknown to dependency oracle")

// variableNode is a gonum graph node standing for one variable.
type variableNode struct {
	id       int64
	variable *ir.Variable
}

func (n variableNode) ID() int64 {
	return n.id
}

func (n variableNode) String() string {
	return n.variable.ID
}

type contractGraph struct {
	g     *simple.DirectedGraph
	nodes map[*ir.Variable]variableNode
}

func newContractGraph(contract *ir.Contract) *contractGraph {
	cg := &contractGraph{
		g:     simple.NewDirectedGraph(),
		nodes: make(map[*ir.Variable]variableNode),
	}
	for _, v := range contract.Variables {
		cg.node(v)
	}
	for _, edge := range contract.Dependencies {
		if edge.From == edge.To {
			// simple graphs cannot hold self loops, and every variable depends on itself anyway
			continue
		}
		from, to := cg.node(edge.From), cg.node(edge.To)
		cg.g.SetEdge(cg.g.NewEdge(from, to))
	}
	return cg
}

func (cg *contractGraph) node(v *ir.Variable) variableNode {
	if n, ok := cg.nodes[v]; ok {
		return n
	}
	n := variableNode{id: int64(len(cg.nodes)), variable: v}
	cg.nodes[v] = n
	cg.g.AddNode(n)
	return n
}

// GraphOracle answers dependency queries by reachability over the direct dependency edges
// the host exported with each contract (Contract.Dependencies).
// A variable always depends on itself.
type GraphOracle struct {
	graphs map[*ir.Contract]*contractGraph
}

func NewGraphOracle(contracts ...*ir.Contract) *GraphOracle {
	o := &GraphOracle{graphs: make(map[*ir.Contract]*contractGraph, len(contracts))}
	for _, c := range contracts {
		o.graphs[c] = newContractGraph(c)
	}
	return o
}

func (o *GraphOracle) IsDependent(variable, source *ir.Variable, contract *ir.Contract) (bool, error) {
	cg, ok := o.graphs[contract]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
	}
	if variable == nil || source == nil {
		return false, nil
	}
	if variable == source {
		return true, nil
	}
	from, ok := cg.nodes[variable]
	if !ok {
		return false, nil
	}
	to, ok := cg.nodes[source]
	if !ok {
		return false, nil
	}
	return topo.PathExistsIn(cg.g, from, to), nil
}

// Graph returns the dependency graph of contract, suitable for helpers.ToGraphvizDot.
func (o *GraphOracle) Graph(contract *ir.Contract) (helpers.IterableGraph, error) {
	cg, ok := o.graphs[contract]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
	}
	return cg.g, nil
}

// NodesOf returns the graph nodes of the given variables in contract's dependency graph.
// Variables absent from the graph are skipped.
func (o *GraphOracle) NodesOf(contract *ir.Contract, variables ...*ir.Variable) ([]graph.Node, error) {
	cg, ok := o.graphs[contract]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, contract)
	}
	nodes := make([]graph.Node, 0, len(variables))
	for _, v := range variables {
		if n, ok := cg.nodes[v]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}
