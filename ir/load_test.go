package ir_test

import (
	"github.com/ethereum/go-ethereum/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Troublor/erebus-sandwich/ir"
)

var _ = Describe("Load", func() {
	Context("with JSON export", func() {
		var contracts []*ir.Contract

		BeforeEach(func() {
			var err error
			contracts, err = ir.LoadFile("./__test__/router.json")
			Expect(err).NotTo(HaveOccurred())
			Expect(contracts).To(HaveLen(1))
		})

		It("should resolve contract metadata", func() {
			router := contracts[0]
			Expect(router.Name).To(Equal("Router"))
			Expect(router.Address).NotTo(BeNil())
			Expect(*router.Address).To(Equal(common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")))
			Expect(router.Functions).To(HaveLen(2))
			Expect(router.Dependencies).To(HaveLen(1))
		})

		It("should share variable identity across references", func() {
			swap := contracts[0].Function("swap")
			Expect(swap).NotTo(BeNil())
			Expect(swap.Contract).To(BeIdenticalTo(contracts[0]))

			minOut := swap.Parameters[0]
			cond := swap.Nodes[2]
			Expect(cond.Type).To(Equal(ir.NodeIf))
			Expect(cond.VariablesRead[1]).To(BeIdenticalTo(minOut))

			binary, ok := cond.Operations[0].(*ir.Binary)
			Expect(ok).To(BeTrue())
			Expect(binary.Kind).To(Equal(ir.Less))
			Expect(binary.Right.Variable).To(BeIdenticalTo(minOut))
			Expect(binary.Left.Variable).To(BeIdenticalTo(swap.Nodes[1].VariablesWritten[0]))
			Expect(contracts[0].Dependencies[0].From).To(BeIdenticalTo(binary.Left.Variable))
		})

		It("should decode operation variants", func() {
			swap := contracts[0].Function("swap")
			call, ok := swap.Nodes[1].Operations[0].(*ir.HighLevelCall)
			Expect(ok).To(BeTrue())
			Expect(call.FunctionName).To(Equal("swap"))
			Expect(call.Function).To(BeNil())
			Expect(call.IsStatic).To(BeFalse())
			Expect(call.Result().Name).To(Equal("TMP_0"))

			Expect(swap.Nodes[1].Operations[1]).To(BeAssignableToTypeOf(&ir.Other{}))
			Expect(swap.Nodes[3].Operations[0]).To(BeAssignableToTypeOf(&ir.SolidityCall{}))
			Expect(swap.Nodes[3].Operations[0].Result()).To(BeNil())
		})

		It("should keep untyped variables untyped", func() {
			unoswap := contracts[0].Function("unoswap")
			asm := unoswap.Nodes[1]
			Expect(asm.Type).To(Equal(ir.NodeAssembly))
			Expect(asm.Text).To(ContainSubstring("call("))
			Expect(asm.VariablesWritten[0].Typed()).To(BeFalse())
			Expect(asm.Source.LinesString()).To(Equal("[21, 22, 23]"))
		})
	})

	Context("with YAML export", func() {
		It("should decode library calls and constants", func() {
			contracts, err := ir.LoadFile("./__test__/vault.yaml")
			Expect(err).NotTo(HaveOccurred())
			deposit := contracts[0].Function("deposit")
			Expect(contracts[0].Address).To(BeNil())

			call, ok := deposit.Nodes[0].Operations[0].(*ir.LibraryCall)
			Expect(ok).To(BeTrue())
			Expect(call.FunctionName).To(Equal("balanceOf"))
			Expect(call.Function).NotTo(BeNil())
			Expect(call.Function.ReadOnly()).To(BeTrue())

			binary := deposit.Nodes[1].Operations[0].(*ir.Binary)
			Expect(binary.Kind).To(Equal(ir.GreaterEqual))
			Expect(binary.Right.Constant).NotTo(BeNil())
			Expect(binary.Right.Constant.Uint64()).To(Equal(uint64(1000000000000000000)))
			Expect(binary.String()).To(Equal("TMP_0 = before >= 1000000000000000000"))
		})
	})

	Context("with malformed export", func() {
		It("should reject dangling variable references", func() {
			_, err := ir.Decode([]byte(`{"contracts":[{"name":"C","functions":[{"name":"f","parameters":["x"]}]}]}`), ir.JSON)
			Expect(err).To(MatchError(ir.ErrMalformedIR))
			Expect(err.Error()).To(ContainSubstring(`undeclared variable "x"`))
		})

		It("should reject unknown operations", func() {
			doc := `{"contracts":[{"name":"C","functions":[{"name":"f","nodes":[{"id":1,"type":"EXPRESSION","irs":[{"op":"send"}]}]}]}]}`
			_, err := ir.Decode([]byte(doc), ir.JSON)
			Expect(err).To(MatchError(ir.ErrMalformedIR))
		})

		It("should reject unknown node types", func() {
			doc := `{"contracts":[{"name":"C","functions":[{"name":"f","nodes":[{"id":1,"type":"GOTO"}]}]}]}`
			_, err := ir.Decode([]byte(doc), ir.JSON)
			Expect(err).To(MatchError(ir.ErrMalformedIR))
		})

		It("should reject negative constants", func() {
			doc := `{"contracts":[{"name":"C","variables":[{"id":"a","name":"a"}],"functions":[{"name":"f","nodes":[{"id":1,"type":"IF","irs":[{"op":"binary","kind":"<","left":{"variable":"a"},"right":{"constant":"-1"}}]}]}]}]}`
			_, err := ir.Decode([]byte(doc), ir.JSON)
			Expect(err).To(MatchError(ir.ErrMalformedIR))
		})

		It("should reject invalid addresses", func() {
			_, err := ir.Decode([]byte("contracts:\n  - name: C\n    address: nope\n"), ir.YAML)
			Expect(err).To(MatchError(ir.ErrMalformedIR))
		})
	})

	It("should detect format from extension", func() {
		Expect(ir.FormatOf("a/b.YML")).To(Equal(ir.YAML))
		Expect(ir.FormatOf("a/b.yaml")).To(Equal(ir.YAML))
		Expect(ir.FormatOf("a/b.json")).To(Equal(ir.JSON))
		Expect(ir.FormatOf("a/b")).To(Equal(ir.JSON))
	})
})
