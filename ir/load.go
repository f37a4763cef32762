package ir

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

var ErrMalformedIR = errors.New("malformed ir")

type Format int

const (
	JSON Format = iota
	YAML
)

// FormatOf guesses the export format from the file extension; anything not .yaml/.yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// LoadFile reads an IR export produced by the host framework.
func LoadFile(path string) ([]*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contracts, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return contracts, nil
}

func Decode(data []byte, format Format) ([]*Contract, error) {
	var doc exportDocument
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIR, err)
	}

	contracts := make([]*Contract, 0, len(doc.Contracts))
	for _, ec := range doc.Contracts {
		c, err := ec.build()
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", ec.Name, err)
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// export schema

type exportDocument struct {
	Contracts []exportContract `json:"contracts" yaml:"contracts"`
}

type exportContract struct {
	Name         string             `json:"name" yaml:"name"`
	Address      string             `json:"address,omitempty" yaml:"address,omitempty"`
	Variables    []exportVariable   `json:"variables" yaml:"variables"`
	Dependencies []exportDependency `json:"dependencies" yaml:"dependencies"`
	Functions    []exportFunction   `json:"functions" yaml:"functions"`
}

type exportVariable struct {
	ID   string      `json:"id" yaml:"id"`
	Name string      `json:"name" yaml:"name"`
	Type *exportType `json:"type,omitempty" yaml:"type,omitempty"`
}

type exportType struct {
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`
}

type exportDependency struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

type exportFunction struct {
	Name       string       `json:"name" yaml:"name"`
	Parameters []string     `json:"parameters" yaml:"parameters"`
	Nodes      []exportNode `json:"nodes" yaml:"nodes"`
}

type exportSource struct {
	Filename string `json:"filename" yaml:"filename"`
	Lines    []int  `json:"lines" yaml:"lines"`
}

type exportNode struct {
	ID      int               `json:"id" yaml:"id"`
	Type    string            `json:"type" yaml:"type"`
	Text    string            `json:"text,omitempty" yaml:"text,omitempty"`
	Source  exportSource      `json:"source" yaml:"source"`
	Read    []string          `json:"read" yaml:"read"`
	Written []string          `json:"written" yaml:"written"`
	IRs     []exportOperation `json:"irs" yaml:"irs"`
}

type exportCallee struct {
	Name string `json:"name" yaml:"name"`
	View bool   `json:"view" yaml:"view"`
	Pure bool   `json:"pure" yaml:"pure"`
}

type exportOperand struct {
	Variable string `json:"variable,omitempty" yaml:"variable,omitempty"`
	Constant string `json:"constant,omitempty" yaml:"constant,omitempty"`
}

type exportOperation struct {
	Op           string         `json:"op" yaml:"op"`
	Lvalue       string         `json:"lvalue,omitempty" yaml:"lvalue,omitempty"`
	FunctionName string         `json:"function_name,omitempty" yaml:"function_name,omitempty"`
	Callee       *exportCallee  `json:"callee,omitempty" yaml:"callee,omitempty"`
	Static       bool           `json:"static,omitempty" yaml:"static,omitempty"`
	Kind         string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Left         *exportOperand `json:"left,omitempty" yaml:"left,omitempty"`
	Right        *exportOperand `json:"right,omitempty" yaml:"right,omitempty"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
}

// builder resolves the string references of one contract to shared *Variable.
type builder struct {
	variables map[string]*Variable
}

func (b *builder) variable(id string) (*Variable, error) {
	v, ok := b.variables[id]
	if !ok {
		return nil, fmt.Errorf("%w: undeclared variable %q", ErrMalformedIR, id)
	}
	return v, nil
}

// optionalVariable resolves an optional reference; the empty id means absent.
func (b *builder) optionalVariable(id string) (*Variable, error) {
	if id == "" {
		return nil, nil
	}
	return b.variable(id)
}

func (b *builder) resolve(ids []string) ([]*Variable, error) {
	vs := make([]*Variable, 0, len(ids))
	for _, id := range ids {
		v, err := b.variable(id)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func (ec *exportContract) build() (*Contract, error) {
	c := &Contract{Name: ec.Name}
	if ec.Address != "" {
		if !common.IsHexAddress(ec.Address) {
			return nil, fmt.Errorf("%w: invalid address %q", ErrMalformedIR, ec.Address)
		}
		addr := common.HexToAddress(ec.Address)
		c.Address = &addr
	}

	b := &builder{variables: make(map[string]*Variable, len(ec.Variables))}
	for _, ev := range ec.Variables {
		if _, dup := b.variables[ev.ID]; dup {
			return nil, fmt.Errorf("%w: duplicated variable %q", ErrMalformedIR, ev.ID)
		}
		v := &Variable{ID: ev.ID, Name: ev.Name}
		if v.Name == "" {
			v.Name = ev.ID
		}
		if ev.Type != nil {
			kind, err := ParseTypeKind(ev.Type.Kind)
			if err != nil {
				return nil, err
			}
			v.Type = &Type{Kind: kind, Name: ev.Type.Name}
		}
		b.variables[ev.ID] = v
		c.Variables = append(c.Variables, v)
	}

	for _, ed := range ec.Dependencies {
		from, err := b.variable(ed.From)
		if err != nil {
			return nil, err
		}
		to, err := b.variable(ed.To)
		if err != nil {
			return nil, err
		}
		c.Dependencies = append(c.Dependencies, DependencyEdge{From: from, To: to})
	}

	for i := range ec.Functions {
		ef := &ec.Functions[i]
		f, err := b.function(ef)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", ef.Name, err)
		}
		f.Contract = c
		c.Functions = append(c.Functions, f)
	}
	return c, nil
}

func (b *builder) function(ef *exportFunction) (*Function, error) {
	params, err := b.resolve(ef.Parameters)
	if err != nil {
		return nil, err
	}
	f := &Function{Name: ef.Name, Parameters: params}
	for i := range ef.Nodes {
		en := &ef.Nodes[i]
		n, err := b.node(en)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", en.ID, err)
		}
		n.Function = f
		f.Nodes = append(f.Nodes, n)
	}
	return f, nil
}

func (b *builder) node(en *exportNode) (*Node, error) {
	nodeType, err := ParseNodeType(en.Type)
	if err != nil {
		return nil, err
	}
	read, err := b.resolve(en.Read)
	if err != nil {
		return nil, err
	}
	written, err := b.resolve(en.Written)
	if err != nil {
		return nil, err
	}
	n := &Node{
		ID:               en.ID,
		Type:             nodeType,
		VariablesRead:    read,
		VariablesWritten: written,
		Source:           SourceMapping{Filename: en.Source.Filename, Lines: en.Source.Lines},
		Text:             en.Text,
	}
	for i := range en.IRs {
		op, err := b.operation(&en.IRs[i])
		if err != nil {
			return nil, fmt.Errorf("ir %d: %w", i, err)
		}
		n.Operations = append(n.Operations, op)
	}
	return n, nil
}

func (b *builder) operation(eo *exportOperation) (Operation, error) {
	lvalue, err := b.optionalVariable(eo.Lvalue)
	if err != nil {
		return nil, err
	}
	switch eo.Op {
	case "high_level_call":
		return &HighLevelCall{
			Lvalue:       lvalue,
			FunctionName: eo.FunctionName,
			Function:     eo.Callee.build(),
			IsStatic:     eo.Static,
		}, nil
	case "library_call":
		return &LibraryCall{HighLevelCall{
			Lvalue:       lvalue,
			FunctionName: eo.FunctionName,
			Function:     eo.Callee.build(),
			IsStatic:     eo.Static,
		}}, nil
	case "low_level_call":
		return &LowLevelCall{Lvalue: lvalue, FunctionName: eo.FunctionName}, nil
	case "internal_call":
		return &InternalCall{Lvalue: lvalue, Function: eo.Callee.build()}, nil
	case "solidity_call":
		return &SolidityCall{Lvalue: lvalue, Function: eo.FunctionName}, nil
	case "binary":
		kind, err := ParseBinaryKind(eo.Kind)
		if err != nil {
			return nil, err
		}
		left, err := b.operand(eo.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.operand(eo.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Lvalue: lvalue, Kind: kind, Left: left, Right: right}, nil
	case "other", "":
		return &Other{Lvalue: lvalue, Name: eo.Name}, nil
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrMalformedIR, eo.Op)
	}
}

func (b *builder) operand(eo *exportOperand) (Operand, error) {
	if eo == nil {
		return Operand{}, fmt.Errorf("%w: missing binary operand", ErrMalformedIR)
	}
	if eo.Variable != "" {
		v, err := b.variable(eo.Variable)
		return Operand{Variable: v}, err
	}
	value, ok := new(big.Int).SetString(eo.Constant, 0)
	if !ok || value.Sign() < 0 {
		return Operand{}, fmt.Errorf("%w: invalid constant %q", ErrMalformedIR, eo.Constant)
	}
	constant, overflow := uint256.FromBig(value)
	if overflow {
		return Operand{}, fmt.Errorf("%w: constant %q overflows 256 bits", ErrMalformedIR, eo.Constant)
	}
	return Operand{Constant: constant}, nil
}

func (ec *exportCallee) build() *Callee {
	if ec == nil {
		return nil
	}
	return &Callee{Name: ec.Name, View: ec.View, Pure: ec.Pure}
}
