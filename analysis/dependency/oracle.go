package dependency

import (
	"github.com/Troublor/erebus-sandwich/ir"
)

//go:generate mockgen -destination=./mocks/oracle.go -package=dependency_mocks github.com/Troublor/erebus-sandwich/analysis/dependency Oracle

// Oracle answers whether variable depends on source through the data flow of contract.
// Answers must be deterministic and side-effect free for a fixed triple.
// A non-nil error means the oracle failed; callers abort the analysis of the contract.
type Oracle interface {
	IsDependent(variable, source *ir.Variable, contract *ir.Contract) (bool, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(variable, source *ir.Variable, contract *ir.Contract) (bool, error)

func (f OracleFunc) IsDependent(variable, source *ir.Variable, contract *ir.Contract) (bool, error) {
	return f(variable, source, contract)
}
