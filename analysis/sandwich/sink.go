package sandwich

import (
	"errors"
	"fmt"

	"github.com/Troublor/erebus-sandwich/ir"
)

var ErrMalformedNode = errors.New("malformed cfg node")

// IsInequalitySink reports whether node is a conditional whose condition contains
// a <, <=, > or >= comparison. Equality checks never qualify.
func IsInequalitySink(node *ir.Node) (bool, error) {
	if node.Type != ir.NodeIf {
		return false, nil
	}
	if len(node.Operations) == 0 {
		return false, fmt.Errorf("%w: IF node %d has no condition", ErrMalformedNode, node.ID)
	}
	for _, op := range node.Operations {
		if binary, ok := op.(*ir.Binary); ok && isInequality(binary.Kind) {
			return true, nil
		}
	}
	return false, nil
}

// isInequality reports whether kind orders its operands; identity checks do not.
func isInequality(kind ir.BinaryKind) bool {
	return kind.IsComparison() && kind != ir.Equal && kind != ir.NotEqual
}
