package sandwich

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/lo"

	"github.com/Troublor/erebus-sandwich/ir"
)

// Finding is a sandwich opportunity: an inequality in Node compares a value derived from
// an active source with a value the caller controls through Parameters.
type Finding struct {
	Contract *ir.Contract
	Function *ir.Function
	Node     *ir.Node

	// Parameters are the names of the tainting parameters, sorted and unique.
	Parameters []string

	// Sources holds the first active source matched by each source dependent condition variable.
	Sources []*ir.Variable
}

func (f *Finding) Description() string {
	quoted := lo.Map(f.Parameters, func(p string, _ int) string { return "'" + p + "'" })
	return fmt.Sprintf(
		" Sandwich Opportunity Detected in '%s' at line %s.\n"+
			"\t- Logic: Inequality comparison (<, >, <=, >=) detected.\n"+
			"\t- Compares Active Source (Swap/Balance) against User Input [%s]",
		f.Function.Name, f.Node.Source.LinesString(), strings.Join(quoted, ", "),
	)
}

func (f *Finding) SourceNames() []string {
	return lo.Map(f.Sources, func(v *ir.Variable, _ int) string { return v.Name })
}

// Hash identifies the finding across runs on the same code.
func (f *Finding) Hash() common.Hash {
	parts := []string{
		Argument,
		f.Contract.Name,
		f.Function.Name,
		strconv.Itoa(f.Node.ID),
		f.Node.Source.Filename,
		f.Node.Source.LinesString(),
	}
	if f.Contract.Address != nil {
		parts = append(parts, f.Contract.Address.Hex())
	}
	return crypto.Keccak256Hash([]byte(strings.Join(parts, ":")))
}

func (f *Finding) String() string {
	return fmt.Sprintf("%s.%s#%d", f.Contract.Name, f.Function.Name, f.Node.ID)
}
