package ir

import (
	"fmt"
)

type TypeKind int

const (
	Elementary TypeKind = iota
	Array
	Mapping
	UserDefined
	FunctionType
)

var typeKindNames = map[TypeKind]string{
	Elementary:   "elementary",
	Array:        "array",
	Mapping:      "mapping",
	UserDefined:  "user_defined",
	FunctionType: "function",
}

func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

func ParseTypeKind(s string) (TypeKind, error) {
	for k, name := range typeKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type kind %q", ErrMalformedIR, s)
}

// Type is the declared type of a variable, e.g. Elementary "uint256" or UserDefined "IERC20".
type Type struct {
	Kind TypeKind
	Name string
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	return t.Name
}

func (t *Type) IsElementary() bool {
	return t != nil && t.Kind == Elementary
}

// Variable is a program variable as lowered by the host framework: a parameter, a local,
// a state variable, an IR temporary, or an inline-assembly local.
// Variables are compared by identity: two *Variable denote the same variable iff they are the same pointer.
type Variable struct {
	ID   string
	Name string

	// Type is nil when the host has no type information, typically for inline-assembly locals.
	Type *Type
}

func (v *Variable) String() string {
	if v == nil {
		return "<nil>"
	}
	return v.Name
}

// Typed reports whether the variable carries any type information.
func (v *Variable) Typed() bool {
	return v != nil && v.Type != nil
}
