package ir

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Operation is one IR instruction of a CFG node.
// The set of implementations is closed: *HighLevelCall, *LibraryCall, *LowLevelCall,
// *InternalCall, *SolidityCall, *Binary and *Other.
type Operation interface {
	// Result returns the variable written by the operation (its lvalue), or nil.
	Result() *Variable
	fmt.Stringer

	operation()
}

// Callee is a resolved call target together with its mutability flags.
type Callee struct {
	Name string
	View bool
	Pure bool
}

// ReadOnly reports whether the callee is declared view or pure.
func (c *Callee) ReadOnly() bool {
	return c.View || c.Pure
}

// HighLevelCall is a call to a function of another contract through its interface.
type HighLevelCall struct {
	Lvalue       *Variable
	FunctionName string

	// Function is nil when the host could not resolve the callee.
	Function *Callee

	// IsStatic is set by the host for unresolved calls known to be compiled to STATICCALL.
	IsStatic bool
}

func (c *HighLevelCall) Result() *Variable { return c.Lvalue }
func (c *HighLevelCall) operation()        {}

func (c *HighLevelCall) String() string {
	return fmt.Sprintf("%s = HIGH_LEVEL_CALL %s", c.Lvalue, c.FunctionName)
}

// LibraryCall is a call into a library; it carries the same payload as a HighLevelCall.
type LibraryCall struct {
	HighLevelCall
}

func (c *LibraryCall) String() string {
	return fmt.Sprintf("%s = LIBRARY_CALL %s", c.Lvalue, c.FunctionName)
}

// LowLevelCall is address.call/delegatecall/staticcall.
type LowLevelCall struct {
	Lvalue       *Variable
	FunctionName string
}

func (c *LowLevelCall) Result() *Variable { return c.Lvalue }
func (c *LowLevelCall) operation()        {}

func (c *LowLevelCall) String() string {
	return fmt.Sprintf("%s = LOW_LEVEL_CALL %s", c.Lvalue, c.FunctionName)
}

// InternalCall is a call to a function of the same contract (or an inherited one).
type InternalCall struct {
	Lvalue   *Variable
	Function *Callee
}

func (c *InternalCall) Result() *Variable { return c.Lvalue }
func (c *InternalCall) operation()        {}

func (c *InternalCall) String() string {
	name := "<unresolved>"
	if c.Function != nil {
		name = c.Function.Name
	}
	return fmt.Sprintf("%s = INTERNAL_CALL %s", c.Lvalue, name)
}

// SolidityCall is a call to a language built-in, e.g. "balance(address)" or "keccak256()".
type SolidityCall struct {
	Lvalue   *Variable
	Function string
}

func (c *SolidityCall) Result() *Variable { return c.Lvalue }
func (c *SolidityCall) operation()        {}

func (c *SolidityCall) String() string {
	return fmt.Sprintf("%s = SOLIDITY_CALL %s", c.Lvalue, c.Function)
}

// Operand is either a variable or a literal constant.
type Operand struct {
	Variable *Variable
	Constant *uint256.Int
}

func (o Operand) String() string {
	switch {
	case o.Variable != nil:
		return o.Variable.String()
	case o.Constant != nil:
		return o.Constant.ToBig().String()
	default:
		return "<none>"
	}
}

type Binary struct {
	Lvalue *Variable
	Kind   BinaryKind
	Left   Operand
	Right  Operand
}

func (b *Binary) Result() *Variable { return b.Lvalue }
func (b *Binary) operation()        {}

func (b *Binary) String() string {
	return fmt.Sprintf("%s = %s %s %s", b.Lvalue, b.Left, b.Kind, b.Right)
}

// Other is any operation the detector has no interest in (assignments, conversions, ...).
type Other struct {
	Lvalue *Variable
	Name   string
}

func (o *Other) Result() *Variable { return o.Lvalue }
func (o *Other) operation()        {}

func (o *Other) String() string {
	return fmt.Sprintf("%s = %s", o.Lvalue, o.Name)
}

type BinaryKind int

const (
	Less BinaryKind = iota
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
	Addition
	Subtraction
	Multiplication
	Division
	Modulo
	Power
	LeftShift
	RightShift
	And
	Or
	Caret
	AndAnd
	OrOr
)

var binaryKindSymbols = [...]string{
	Less:           "<",
	LessEqual:      "<=",
	Greater:        ">",
	GreaterEqual:   ">=",
	Equal:          "==",
	NotEqual:       "!=",
	Addition:       "+",
	Subtraction:    "-",
	Multiplication: "*",
	Division:       "/",
	Modulo:         "%",
	Power:          "**",
	LeftShift:      "<<",
	RightShift:     ">>",
	And:            "&",
	Or:             "|",
	Caret:          "^",
	AndAnd:         "&&",
	OrOr:           "||",
}

func (k BinaryKind) String() string {
	if k >= 0 && int(k) < len(binaryKindSymbols) {
		return binaryKindSymbols[k]
	}
	return fmt.Sprintf("BinaryKind(%d)", int(k))
}

// IsComparison reports whether the binary operation yields a boolean comparison of its operands.
func (k BinaryKind) IsComparison() bool {
	return k <= NotEqual
}

func ParseBinaryKind(symbol string) (BinaryKind, error) {
	for k, s := range binaryKindSymbols {
		if s == symbol {
			return BinaryKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown binary operator %q", ErrMalformedIR, symbol)
}
