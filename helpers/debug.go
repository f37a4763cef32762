package helpers

import (
	"strings"
)

// DoSanityCheck turns SanityCheck assertions on. Release builds of the cli may turn it off.
var DoSanityCheck = true

// SanityCheck panics when assertion does not hold.
// It guards invariants the analysis relies on, not properties of the input.
func SanityCheck(assertion func() bool, messages ...string) {
	if DoSanityCheck && !assertion() {
		if len(messages) == 0 {
			messages = append(messages, "assertion violated")
		}
		panic(strings.Join(messages, " "))
	}
}
