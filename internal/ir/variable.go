package ir

import "strconv"

// Variable is the default SSA source-variable key: a dense index into the
// frontend's local-variable slots. The SSA construction engine (ssa.go) is
// generic over any comparable key type; Variable is the key most frontends
// reach for immediately, the way a WebAssembly local index would be.
type Variable uint32

// String implements fmt.Stringer.
func (v Variable) String() string {
	return "var" + strconv.Itoa(int(v))
}
