package sandwich

import (
	"strings"

	"github.com/Troublor/erebus-sandwich/helpers"
	"github.com/Troublor/erebus-sandwich/ir"
)

// IsActiveSource reports whether op yields a value an adversary can move between
// transaction submission and execution: a swap-like state changing call or a balance read.
func IsActiveSource(op ir.Operation) bool {
	switch op := op.(type) {
	case *ir.HighLevelCall:
		return isActiveHighLevelCall(op)
	case *ir.LibraryCall:
		return isActiveHighLevelCall(&op.HighLevelCall)
	case *ir.SolidityCall:
		return strings.Contains(op.Function, "balance")
	case *ir.LowLevelCall:
		opcode, ok := helpers.LowLevelCallOpcode(op.FunctionName)
		return ok && helpers.IsStateChangingCall(opcode)
	case *ir.InternalCall:
		// internal wrappers are trusted blindly, swaps are often hidden behind them
		return true
	default:
		return false
	}
}

func isActiveHighLevelCall(call *ir.HighLevelCall) bool {
	if strings.Contains(strings.ToLower(call.FunctionName), "balanceof") {
		return true
	}
	if call.Function != nil {
		return !call.Function.ReadOnly()
	}
	// unresolved callees (proxies, routers) are active unless known to be static
	return !call.IsStatic
}

// isRawCallBlock reports whether the text of an inline assembly block performs a message call
// that is not a staticcall.
func isRawCallBlock(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "call(") && !strings.Contains(text, "staticcall(")
}

// SourceSet is the set of active source variables of one function.
// It only grows, and iterates in admission order.
type SourceSet struct {
	order   []*ir.Variable
	members map[*ir.Variable]struct{}
}

func NewSourceSet() *SourceSet {
	return &SourceSet{members: make(map[*ir.Variable]struct{})}
}

// Add admits v if it is numeric and not yet a member. It returns whether v was added.
func (s *SourceSet) Add(v *ir.Variable) bool {
	if !IsNumeric(v) {
		return false
	}
	if _, ok := s.members[v]; ok {
		return false
	}
	s.members[v] = struct{}{}
	s.order = append(s.order, v)
	return true
}

func (s *SourceSet) Contains(v *ir.Variable) bool {
	_, ok := s.members[v]
	return ok
}

func (s *SourceSet) Len() int {
	return len(s.order)
}

// Variables returns the members in admission order.
func (s *SourceSet) Variables() []*ir.Variable {
	return append([]*ir.Variable(nil), s.order...)
}

// CollectActiveSources scans every node of fn once and returns its active sources.
func CollectActiveSources(fn *ir.Function) *SourceSet {
	sources := NewSourceSet()
	for _, node := range fn.Nodes {
		if node.Type == ir.NodeAssembly && isRawCallBlock(node.Text) {
			for _, v := range node.VariablesWritten {
				sources.Add(v)
			}
		}
		for _, op := range node.Operations {
			if result := op.Result(); result != nil && IsActiveSource(op) {
				sources.Add(result)
			}
		}
	}
	return sources
}
