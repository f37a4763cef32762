package sandwich

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Troublor/erebus-sandwich/analysis/dependency"
	"github.com/Troublor/erebus-sandwich/helpers"
	"github.com/Troublor/erebus-sandwich/ir"
)

// Detector joins the active sources of a function with its inequality sinks
// through a dependency oracle.
// A Detector holds no per-function state and is as safe for concurrent use as its oracle.
type Detector struct {
	oracle dependency.Oracle
}

func NewDetector(oracle dependency.Oracle) *Detector {
	helpers.SanityCheck(func() bool { return oracle != nil }, "detector requires a dependency oracle")
	return &Detector{oracle: oracle}
}

// Detect analyzes every function of every contract and returns the findings in
// declaration order of functions and CFG order of nodes.
// An oracle failure or a malformed node aborts the whole run: no partial result is returned.
func (d *Detector) Detect(contracts []*ir.Contract) ([]*Finding, error) {
	var findings []*Finding
	for _, contract := range contracts {
		fs, err := d.DetectContract(contract)
		if err != nil {
			return nil, err
		}
		findings = append(findings, fs...)
	}
	return findings, nil
}

func (d *Detector) DetectContract(contract *ir.Contract) ([]*Finding, error) {
	var findings []*Finding
	for _, fn := range contract.Functions {
		fs, err := d.detectFunction(contract, fn)
		if err != nil {
			return nil, fmt.Errorf("contract %s function %s: %w", contract.Name, fn.Name, err)
		}
		findings = append(findings, fs...)
	}
	return findings, nil
}

func (d *Detector) detectFunction(contract *ir.Contract, fn *ir.Function) ([]*Finding, error) {
	sources := CollectActiveSources(fn)
	if sources.Len() == 0 {
		return nil, nil
	}
	log.Debug().
		Str("contract", contract.Name).
		Str("function", fn.Name).
		Int("sources", sources.Len()).
		Msg("Active sources collected")

	var findings []*Finding
	reported := make(map[*ir.Node]struct{})
	for _, node := range fn.Nodes {
		sink, err := IsInequalitySink(node)
		if err != nil {
			return nil, err
		}
		if !sink {
			continue
		}
		if _, ok := reported[node]; ok {
			continue
		}

		conditionVars := node.VariablesRead

		params, err := d.taintingParameters(contract, fn, conditionVars)
		if err != nil {
			return nil, err
		}
		if len(params) == 0 {
			continue
		}

		matched, err := d.matchSources(contract, conditionVars, sources)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			continue
		}

		if !lo.ContainsBy(conditionVars, IsNumeric) {
			continue
		}

		names := lo.Uniq(lo.Map(params, func(p *ir.Variable, _ int) string { return p.Name }))
		sort.Strings(names)
		finding := &Finding{
			Contract:   contract,
			Function:   fn,
			Node:       node,
			Parameters: names,
			Sources:    matched,
		}
		reported[node] = struct{}{}
		findings = append(findings, finding)
		log.Debug().
			Str("contract", contract.Name).
			Str("function", fn.Name).
			Int("node", node.ID).
			Strs("parameters", names).
			Msg("Sandwich opportunity detected")
	}
	return findings, nil
}

// taintingParameters returns the parameters of fn on which some condition variable depends.
func (d *Detector) taintingParameters(
	contract *ir.Contract, fn *ir.Function, conditionVars []*ir.Variable,
) ([]*ir.Variable, error) {
	var tainting []*ir.Variable
	for _, param := range fn.Parameters {
		for _, v := range conditionVars {
			dependent, err := d.oracle.IsDependent(v, param, contract)
			if err != nil {
				return nil, err
			}
			if dependent {
				tainting = append(tainting, param)
				break
			}
		}
	}
	return tainting, nil
}

// matchSources returns, for each condition variable in order, the first active source it depends on.
// Condition variables depending on no source contribute nothing.
func (d *Detector) matchSources(
	contract *ir.Contract, conditionVars []*ir.Variable, sources *SourceSet,
) ([]*ir.Variable, error) {
	var matched []*ir.Variable
	for _, v := range conditionVars {
		for _, source := range sources.order {
			dependent, err := d.oracle.IsDependent(v, source, contract)
			if err != nil {
				return nil, err
			}
			if dependent {
				matched = append(matched, source)
				break
			}
		}
	}
	return matched, nil
}
