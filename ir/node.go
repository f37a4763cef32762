package ir

import (
	"fmt"
	"strings"
)

type NodeType int

const (
	NodeEntryPoint NodeType = iota
	NodeExpression
	NodeVariable
	NodeAssembly
	NodeIf
	NodeEndIf
	NodeIfLoop
	NodeStartLoop
	NodeEndLoop
	NodeReturn
	NodeThrow
	NodeContinue
	NodeBreak
	NodePlaceholder
	NodeTry
	NodeCatch
	NodeOtherEntryPoint
)

// names as rendered by the host framework
var nodeTypeNames = [...]string{
	NodeEntryPoint:      "ENTRY_POINT",
	NodeExpression:      "EXPRESSION",
	NodeVariable:        "NEW VARIABLE",
	NodeAssembly:        "INLINE ASM",
	NodeIf:              "IF",
	NodeEndIf:           "END_IF",
	NodeIfLoop:          "IF_LOOP",
	NodeStartLoop:       "BEGIN_LOOP",
	NodeEndLoop:         "END_LOOP",
	NodeReturn:          "RETURN",
	NodeThrow:           "THROW",
	NodeContinue:        "CONTINUE",
	NodeBreak:           "BREAK",
	NodePlaceholder:     "_",
	NodeTry:             "TRY",
	NodeCatch:           "CATCH",
	NodeOtherEntryPoint: "OTHER_ENTRYPOINT",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

func ParseNodeType(name string) (NodeType, error) {
	for t, n := range nodeTypeNames {
		if n == name {
			return NodeType(t), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown node type %q", ErrMalformedIR, name)
}

type SourceMapping struct {
	Filename string
	Lines    []int
}

// LinesString renders the line list the way findings report it, e.g. "[12, 13]".
func (s SourceMapping) LinesString() string {
	parts := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Node is a CFG node of a function.
type Node struct {
	ID         int
	Type       NodeType
	Operations []Operation

	VariablesRead    []*Variable
	VariablesWritten []*Variable

	Source SourceMapping

	// Text is the rendered form of the node; for INLINE ASM nodes it is the assembly block source.
	Text string

	Function *Function
}

func (n *Node) String() string {
	if n.Text != "" {
		return fmt.Sprintf("%s %s", n.Type, n.Text)
	}
	return n.Type.String()
}
