package sandwich_test

import (
	"errors"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Troublor/erebus-sandwich/analysis/dependency"
	dependency_mocks "github.com/Troublor/erebus-sandwich/analysis/dependency/mocks"
	. "github.com/Troublor/erebus-sandwich/analysis/sandwich"
	"github.com/Troublor/erebus-sandwich/ir"
)

// swapFunction models
//
//	function swap(uint minOut) {
//	    uint256 out = <call>;
//	    if (out <kind> minOut) revert();
//	}
func swapFunction(call ir.Operation, kind ir.BinaryKind, out, minOut *ir.Variable) *ir.Function {
	return &ir.Function{
		Name:       "swap",
		Parameters: []*ir.Variable{minOut},
		Nodes: []*ir.Node{
			{ID: 0, Type: ir.NodeEntryPoint},
			{
				ID: 1, Type: ir.NodeVariable,
				Operations:       []ir.Operation{call, &ir.Other{Lvalue: out, Name: "ASSIGNMENT"}},
				VariablesWritten: []*ir.Variable{out},
				Source:           ir.SourceMapping{Filename: "Router.sol", Lines: []int{11}},
			},
			{
				ID: 2, Type: ir.NodeIf,
				Operations:    []ir.Operation{compare(kind, out, minOut)},
				VariablesRead: []*ir.Variable{out, minOut},
				Source:        ir.SourceMapping{Filename: "Router.sol", Lines: []int{12, 13}},
			},
			{
				ID: 3, Type: ir.NodeExpression,
				Operations: []ir.Operation{&ir.SolidityCall{Function: "revert()"}},
			},
		},
	}
}

var _ = Describe("Detector", func() {
	var out, minOut, result *ir.Variable

	BeforeEach(func() {
		out, minOut, result = uintVar("out"), uintVar("minOut"), uintVar("TMP_0")
	})

	detect := func(oracle dependency.Oracle, functions ...*ir.Function) []*Finding {
		findings, err := NewDetector(oracle).Detect([]*ir.Contract{contractOf("Router", functions...)})
		Expect(err).NotTo(HaveOccurred())
		return findings
	}

	Context("scenarios", func() {
		It("should report a non-static call compared with < against a parameter", func() {
			call := &ir.LowLevelCall{Lvalue: result, FunctionName: "call"}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Less, out, minOut))
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Function.Name).To(Equal("swap"))
			Expect(findings[0].Node.ID).To(Equal(2))
			Expect(findings[0].Parameters).To(Equal([]string{"minOut"}))
			Expect(findings[0].Sources).To(Equal([]*ir.Variable{result}))
		})

		It("should not report an equality check", func() {
			call := &ir.LowLevelCall{Lvalue: result, FunctionName: "call"}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Equal, out, minOut))
			Expect(findings).To(BeEmpty())
		})

		It("should not report a quote read through staticcall", func() {
			call := &ir.LowLevelCall{Lvalue: result, FunctionName: "staticcall"}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Less, out, minOut))
			Expect(findings).To(BeEmpty())
		})

		It("should not report a view call compared with >=", func() {
			call := &ir.HighLevelCall{
				Lvalue: result, FunctionName: "getAmountOut",
				Function: &ir.Callee{Name: "getAmountOut", View: true},
			}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.GreaterEqual, out, minOut))
			Expect(findings).To(BeEmpty())
		})

		It("should report a raw assembly call compared with >", func() {
			asmOut, minReturn := untypedVar("out"), uintVar("minReturn")
			fn := &ir.Function{
				Name:       "unoswap",
				Parameters: []*ir.Variable{minReturn},
				Nodes: []*ir.Node{
					{
						ID: 1, Type: ir.NodeAssembly,
						Text:             "let out := call(gas(), pool, 0, 0, 0x44, 0, 0x20)",
						VariablesWritten: []*ir.Variable{asmOut},
					},
					{
						ID: 2, Type: ir.NodeIf,
						Operations:    []ir.Operation{compare(ir.Greater, asmOut, minReturn)},
						VariablesRead: []*ir.Variable{asmOut, minReturn},
						Source:        ir.SourceMapping{Lines: []int{24}},
					},
				},
			}
			findings := detect(newPairOracle(), fn)
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Parameters).To(Equal([]string{"minReturn"}))
			Expect(findings[0].Sources).To(Equal([]*ir.Variable{asmOut}))
		})
	})

	Context("exclusions", func() {
		It("should not report an inequality without user input", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			fn := swapFunction(call, ir.Less, out, minOut)
			limit := uintVar("limit")
			fn.Nodes[2].VariablesRead = []*ir.Variable{out, limit}
			fn.Nodes[2].Operations = []ir.Operation{compare(ir.Less, out, limit)}
			Expect(detect(newPairOracle([2]*ir.Variable{out, result}), fn)).To(BeEmpty())
		})

		It("should not report an inequality without active source", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			Expect(detect(newPairOracle(), swapFunction(call, ir.Less, out, minOut))).To(BeEmpty())
		})

		It("should not report a function without active source", func() {
			call := &ir.Other{Lvalue: result, Name: "ASSIGNMENT"}
			oracle := newPairOracle([2]*ir.Variable{out, result})
			Expect(detect(oracle, swapFunction(call, ir.Less, out, minOut))).To(BeEmpty())
			Expect(oracle.calls).To(BeZero())
		})

		It("should not report a condition without numeric variable", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			flag, enabled := boolVar("flag"), boolVar("enabled")
			fn := swapFunction(call, ir.Less, out, minOut)
			fn.Parameters = []*ir.Variable{enabled}
			fn.Nodes[2].VariablesRead = []*ir.Variable{flag}
			oracle := newPairOracle(
				[2]*ir.Variable{flag, result},
				[2]*ir.Variable{flag, enabled},
			)
			Expect(detect(oracle, fn)).To(BeEmpty())
		})

		It("should treat unresolved calls as active", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swapExactTokensForTokens"}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Less, out, minOut))
			Expect(findings).To(HaveLen(1))
		})

		It("should not treat unresolved static calls as active", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "getReserves", IsStatic: true}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Less, out, minOut))
			Expect(findings).To(BeEmpty())
		})
	})

	Context("findings", func() {
		It("should sort and deduplicate tainting parameter names", func() {
			call := &ir.InternalCall{Lvalue: result, Function: &ir.Callee{Name: "_swap"}}
			fn := swapFunction(call, ir.Less, out, minOut)
			zeta, alpha, alphaAgain := uintVar("zeta"), uintVar("alpha"), uintVar("alpha")
			fn.Parameters = []*ir.Variable{zeta, minOut, alpha, alphaAgain}
			oracle := newPairOracle(
				[2]*ir.Variable{out, result},
				[2]*ir.Variable{out, zeta},
				[2]*ir.Variable{out, alpha},
				[2]*ir.Variable{minOut, alphaAgain},
			)
			findings := detect(oracle, fn)
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Parameters).To(Equal([]string{"alpha", "minOut", "zeta"}))
		})

		It("should record the first matching source of each condition variable", func() {
			first, second := uintVar("first"), uintVar("second")
			fn := &ir.Function{
				Name:       "swap",
				Parameters: []*ir.Variable{minOut},
				Nodes: []*ir.Node{
					{ID: 1, Type: ir.NodeExpression, Operations: []ir.Operation{
						&ir.HighLevelCall{Lvalue: first, FunctionName: "swap"},
						&ir.HighLevelCall{Lvalue: second, FunctionName: "balanceOf"},
					}},
					{
						ID: 2, Type: ir.NodeIf,
						Operations:    []ir.Operation{compare(ir.Less, out, minOut)},
						VariablesRead: []*ir.Variable{out, minOut},
					},
				},
			}
			oracle := newPairOracle(
				[2]*ir.Variable{out, first},
				[2]*ir.Variable{out, second},
				[2]*ir.Variable{minOut, second},
			)
			findings := detect(oracle, fn)
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Sources).To(Equal([]*ir.Variable{first, second}))
			Expect(findings[0].SourceNames()).To(Equal([]string{"first", "second"}))
		})

		It("should follow declaration order of functions and CFG order of nodes", func() {
			a := swapFunction(&ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}, ir.Less, out, minOut)
			a.Name = "a"
			a.Nodes = append(a.Nodes, &ir.Node{
				ID: 4, Type: ir.NodeIf,
				Operations:    []ir.Operation{compare(ir.Greater, minOut, out)},
				VariablesRead: []*ir.Variable{minOut, out},
			})
			bOut, bMin, bResult := uintVar("bOut"), uintVar("bMin"), uintVar("bResult")
			b := swapFunction(&ir.HighLevelCall{Lvalue: bResult, FunctionName: "swap"}, ir.LessEqual, bOut, bMin)
			b.Name = "b"
			oracle := newPairOracle([2]*ir.Variable{out, result}, [2]*ir.Variable{bOut, bResult})

			findings := detect(oracle, a, b)
			Expect(findings).To(HaveLen(3))
			Expect(findings[0].String()).To(Equal("Router.a#2"))
			Expect(findings[1].String()).To(Equal("Router.a#4"))
			Expect(findings[2].String()).To(Equal("Router.b#2"))
		})

		It("should report a node only once", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			fn := swapFunction(call, ir.Less, out, minOut)
			fn.Nodes = append(fn.Nodes, fn.Nodes[2])
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), fn)
			Expect(findings).To(HaveLen(1))
		})

		It("should describe the opportunity", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			findings := detect(newPairOracle([2]*ir.Variable{out, result}), swapFunction(call, ir.Less, out, minOut))
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Description()).To(Equal(
				" Sandwich Opportunity Detected in 'swap' at line [12, 13].\n" +
					"\t- Logic: Inequality comparison (<, >, <=, >=) detected.\n" +
					"\t- Compares Active Source (Swap/Balance) against User Input ['minOut']",
			))
		})
	})

	Context("failures", func() {
		var mockCtrl *gomock.Controller
		var mockOracle *dependency_mocks.MockOracle

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			mockOracle = dependency_mocks.NewMockOracle(mockCtrl)
		})

		It("should abort on oracle failure", func() {
			boom := errors.New("oracle unavailable")
			mockOracle.EXPECT().
				IsDependent(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(false, boom).
				Times(1)
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			contract := contractOf("Router", swapFunction(call, ir.Less, out, minOut))

			findings, err := NewDetector(mockOracle).Detect([]*ir.Contract{contract})
			Expect(err).To(MatchError(boom))
			Expect(err.Error()).To(ContainSubstring("contract Router function swap"))
			Expect(findings).To(BeNil())
		})

		It("should pass the enclosing contract to the oracle", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			contract := contractOf("Router", swapFunction(call, ir.Less, out, minOut))
			mockOracle.EXPECT().
				IsDependent(gomock.Any(), gomock.Any(), gomock.Eq(contract)).
				DoAndReturn(func(v, source *ir.Variable, _ *ir.Contract) (bool, error) {
					return v == source || (v == out && source == result), nil
				}).
				AnyTimes()

			findings, err := NewDetector(mockOracle).Detect([]*ir.Contract{contract})
			Expect(err).NotTo(HaveOccurred())
			Expect(findings).To(HaveLen(1))
			Expect(findings[0].Contract).To(BeIdenticalTo(contract))
		})

		It("should abort on a conditional without operations", func() {
			call := &ir.HighLevelCall{Lvalue: result, FunctionName: "swap"}
			fn := swapFunction(call, ir.Less, out, minOut)
			fn.Nodes[2].Operations = nil
			contract := contractOf("Router", fn)

			_, err := NewDetector(newPairOracle()).Detect([]*ir.Contract{contract})
			Expect(err).To(MatchError(ErrMalformedNode))
		})
	})

	Context("with host exports", func() {
		It("should detect both opportunities of the router fixture", func() {
			contracts, err := ir.LoadFile("../../ir/__test__/router.json")
			Expect(err).NotTo(HaveOccurred())

			findings, err := NewDetector(dependency.NewGraphOracle(contracts...)).Detect(contracts)
			Expect(err).NotTo(HaveOccurred())
			Expect(findings).To(HaveLen(2))
			Expect(findings[0].Function.Name).To(Equal("swap"))
			Expect(findings[0].Parameters).To(Equal([]string{"minOut"}))
			Expect(findings[0].SourceNames()).To(Equal([]string{"TMP_0"}))
			Expect(findings[1].Function.Name).To(Equal("unoswap"))
			Expect(findings[1].Parameters).To(Equal([]string{"minReturn"}))
			Expect(findings[1].Node.Source.LinesString()).To(Equal("[24]"))
		})

		It("should give stable hashes", func() {
			load := func() []*Finding {
				contracts, err := ir.LoadFile("../../ir/__test__/router.json")
				Expect(err).NotTo(HaveOccurred())
				findings, err := NewDetector(dependency.NewGraphOracle(contracts...)).Detect(contracts)
				Expect(err).NotTo(HaveOccurred())
				return findings
			}
			first, second := load(), load()
			Expect(first[0].Hash()).To(Equal(second[0].Hash()))
			Expect(first[0].Hash()).NotTo(Equal(first[1].Hash()))
		})
	})
})
