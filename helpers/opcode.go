package helpers

import (
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
)

var lowLevelCalls = make(map[string]vm.OpCode)

func init() {
	for _, op := range []vm.OpCode{vm.CALL, vm.CALLCODE, vm.DELEGATECALL, vm.STATICCALL} {
		lowLevelCalls[strings.ToLower(op.String())] = op
	}
}

// LowLevelCallOpcode maps the name of a low-level call as the host renders it
// ("call", "delegatecall", "staticcall", "callcode") to the EVM opcode it compiles to.
// Names are matched exactly.
func LowLevelCallOpcode(name string) (vm.OpCode, bool) {
	op, ok := lowLevelCalls[name]
	return op, ok
}

// IsStateChangingCall reports whether op is a message call that may modify state.
// STATICCALL never does.
func IsStateChangingCall(op vm.OpCode) bool {
	return op == vm.CALL || op == vm.DELEGATECALL
}
