package ir

// This file declares the external collaborator surfaces a frontend
// implements to drive the core. The core only ever reads from these; it
// never constructs or owns them.

// MethodBase is the frontend's view of a method being lowered. The core
// inspects it only for the return type and inlining marker bits used to
// seed MethodFlags.
type MethodBase interface {
	ReturnType() *TypeNode
	AggressiveInlining() bool
	NoInlining() bool
}

// TypeInfo is a reflection-like view over a language-level structure type,
// used by createObjectValue's structure decomposition.
type TypeInfo interface {
	// Fields returns the ordered field types as the frontend's type system
	// sees them (before padding/layout recovery).
	Fields() []*TypeNode
	// ByteSize is the frontend-reported size of the whole structure,
	// which may exceed the sum of Fields() sizes when the frontend's
	// layout includes trailing padding. CreateObjectValue appends one
	// Padding null value for the bytes past the laid-out fields;
	// StructLayout itself adds no trailing padding.
	ByteSize() int
}

// ContextFlags are boolean feature switches threaded through a Context.
// Force32BitFloats coerces f64 constants to f32; EnableDebugInformation
// attaches sequence points (carried but not interpreted by the core);
// EnableDebugAssertions gates the Assertion error kind, making invariant
// checking explicit and opt-in rather than a silent no-op everywhere or an
// unconditional cost on every build.
type ContextFlags struct {
	Force32BitFloats      bool
	EnableDebugInformation bool
	EnableDebugAssertions bool
}

// ArrayMode selects whether CreateArrayValue accepts lengths that are not
// Primitive constants: ArrayModeRejectStatic rejects them, any other mode
// accepts them.
type ArrayMode byte

const (
	ArrayModeRejectStatic ArrayMode = iota
	ArrayModeInlineMutableStaticArrays
)
