package ir

import (
	"github.com/ethereum/go-ethereum/common"
)

// DependencyEdge is a direct data dependency reported by the host: From depends on To.
type DependencyEdge struct {
	From *Variable
	To   *Variable
}

type Contract struct {
	Name string

	// Address is the deployment address, if the analyzed source was fetched for a deployed contract.
	Address *common.Address

	Functions []*Function

	// Variables lists every variable the host exported for this contract.
	Variables []*Variable

	Dependencies []DependencyEdge
}

func (c *Contract) String() string {
	return c.Name
}

// Function returns the first function with the given name, or nil.
func (c *Contract) Function(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type Function struct {
	Name       string
	Contract   *Contract
	Parameters []*Variable

	// Nodes are laid out in CFG order.
	Nodes []*Node
}

func (f *Function) String() string {
	if f.Contract == nil {
		return f.Name
	}
	return f.Contract.Name + "." + f.Name
}
