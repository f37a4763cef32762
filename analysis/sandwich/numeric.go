package sandwich

import (
	"strings"

	"github.com/Troublor/erebus-sandwich/ir"
)

// IsNumeric reports whether v may carry a quantity comparable by inequality.
// Variables without type information (inline assembly locals) are numeric.
func IsNumeric(v *ir.Variable) bool {
	if v == nil {
		return false
	}
	if !v.Typed() {
		return true
	}
	if !v.Type.IsElementary() {
		return false
	}
	return strings.HasPrefix(v.Type.Name, "uint") || strings.HasPrefix(v.Type.Name, "int")
}
