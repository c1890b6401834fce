package ir

import "fmt"

// ValueID is a tagged index handle into a ValueArena. Operands never hold
// owning pointers to other Values; they hold ValueRef wrappers around a
// ValueID so that the arena remains the sole owner and replacement can
// rewire a user in O(1).
type ValueID uint32

const invalidValueID ValueID = ^ValueID(0)

// Valid reports whether id was ever allocated.
func (id ValueID) Valid() bool { return id != invalidValueID }

// String implements fmt.Stringer.
func (id ValueID) String() string {
	if !id.Valid() {
		return "<invalid>"
	}
	return fmt.Sprintf("v%d", uint32(id))
}

// ValueRef wraps a ValueID as it appears in an operand list. Resolve walks
// the arena's replacement chain to the current root, path-compressing as it
// goes, so repeated reads of the same operand remain O(1) amortized even
// after several rounds of replace(v, w).
type ValueRef struct {
	target ValueID
}

// NewValueRef wraps id for use as an operand.
func NewValueRef(id ValueID) ValueRef { return ValueRef{target: id} }

// ID returns the wrapped identifier without resolving replacement.
func (r ValueRef) ID() ValueID { return r.target }

// Resolve returns the current replacement root of the wrapped value.
func (r ValueRef) Resolve(a *ValueArena) *Value { return a.Resolve(r.target) }

// ValueKind discriminates the variant of a Value: a closed sum type over
// every value/instruction shape the IR needs, flattened into a single
// struct rather than an interface hierarchy so operand rewiring and arena
// storage stay uniform across kinds.
type ValueKind int

const (
	KindPrimitive ValueKind = iota + 1
	KindNull
	KindCast
	KindArithmeticUnary
	KindArithmeticBinary
	KindArithmeticTernary
	KindCompare
	KindConvert
	KindPhi
	KindGetField
	KindSetField
	KindNewArray
	KindGetArrayLength
	KindLoadElementAddress
	KindLoadFieldAddress
	KindCall
	KindBranch
	KindReturn
	KindSwitch
	KindStructureValue
	KindNewView
	KindGetViewLength
	KindAlignViewTo
	KindLanguageEmit
	KindParameter
	KindUndefined
)

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindNull:
		return "Null"
	case KindCast:
		return "Cast"
	case KindArithmeticUnary:
		return "ArithmeticUnary"
	case KindArithmeticBinary:
		return "ArithmeticBinary"
	case KindArithmeticTernary:
		return "ArithmeticTernary"
	case KindCompare:
		return "Compare"
	case KindConvert:
		return "Convert"
	case KindPhi:
		return "Phi"
	case KindGetField:
		return "GetField"
	case KindSetField:
		return "SetField"
	case KindNewArray:
		return "NewArray"
	case KindGetArrayLength:
		return "GetArrayLength"
	case KindLoadElementAddress:
		return "LoadElementAddress"
	case KindLoadFieldAddress:
		return "LoadFieldAddress"
	case KindCall:
		return "Call"
	case KindBranch:
		return "Branch"
	case KindReturn:
		return "Return"
	case KindSwitch:
		return "Switch"
	case KindStructureValue:
		return "StructureValue"
	case KindNewView:
		return "NewView"
	case KindGetViewLength:
		return "GetViewLength"
	case KindAlignViewTo:
		return "AlignViewTo"
	case KindLanguageEmit:
		return "LanguageEmit"
	case KindParameter:
		return "Parameter"
	case KindUndefined:
		return "Undefined"
	default:
		return "Invalid"
	}
}

// CastOp discriminates the pointer/view/bit-level casts grouped under
// KindCast.
type CastOp byte

const (
	CastPointerCast CastOp = iota + 1
	CastAddressSpaceCast
	CastViewCast
	CastIntAsPointer
	CastPointerAsInt
	CastFloatAsInt
	CastIntAsFloat
)

// ArithUnaryOp enumerates unary arithmetic operators.
type ArithUnaryOp byte

const (
	ArithNot ArithUnaryOp = iota + 1
	ArithNeg
	ArithAbs
	ArithSqrt
	ArithRcpF
)

// ArithBinaryOp enumerates binary arithmetic operators.
type ArithBinaryOp byte

const (
	ArithAdd ArithBinaryOp = iota + 1
	ArithSub
	ArithMul
	ArithDiv
	ArithRem
	ArithAnd
	ArithOr
	ArithXor
	ArithShl
	ArithShr
	ArithAtan2F
	ArithPowF
)

// ArithTernaryOp enumerates ternary arithmetic operators.
type ArithTernaryOp byte

const (
	// ArithPredicate is `predicate(cond, ifTrue, ifFalse)`, used to lower
	// bool->T conversions.
	ArithPredicate ArithTernaryOp = iota + 1
	ArithFma
)

// ArithFlags carries the optional modifiers on arithmetic/convert
// operations: Unsigned, Overflow trap/saturate, and the
// SourceUnsigned/TargetUnsigned pair for width-changing conversions.
type ArithFlags uint8

const (
	FlagUnsigned ArithFlags = 1 << iota
	FlagSourceUnsigned
	FlagTargetUnsigned
	FlagOverflowTrap
	FlagOverflowSaturate
)

func (f ArithFlags) has(bit ArithFlags) bool { return f&bit != 0 }

// Value is the single concrete representation of every IR value. Which
// fields are meaningful is determined by Kind; a small capability surface
// (Type, Operands, Block, Location) is exposed uniformly via methods
// regardless of kind.
type Value struct {
	id       ValueID
	kind     ValueKind
	typ      *TypeNode
	operands []ValueRef
	block    *BasicBlock
	location Location

	// --- kind-specific payload; only the fields relevant to kind are set.

	castOp  CastOp
	unaryOp ArithUnaryOp
	binOp   ArithBinaryOp
	ternOp  ArithTernaryOp
	cmpOp   CompareKind
	flags   ArithFlags

	span FieldSpan // GetField / SetField / LoadFieldAddress

	raw64 uint64 // Primitive constant bits, or a small immediate (dimension count, alignment, rank)

	targets []*BasicBlock // Branch (1) / Switch (N) targets

	// phiArgs is keyed by predecessor block identity rather than position,
	// so that BlockBuilder.splitBlock/mergeBlock can remap an incoming edge
	// by rewriting one map key instead of renumbering a parallel array.
	phiArgs map[*BasicBlock]ValueRef

	callee  *MethodHandle // Call target
	emitted string        // LanguageEmit op name, or string constant content

	fields []ValueRef // StructureValue field values, or NewArray dimension lengths
}

// ID returns the arena-unique identifier of v.
func (v *Value) ID() ValueID { return v.id }

// Kind returns v's variant discriminator.
func (v *Value) Kind() ValueKind { return v.kind }

// Type returns v's fixed-at-creation type.
func (v *Value) Type() *TypeNode { return v.typ }

// Operands returns v's operand references, in order.
func (v *Value) Operands() []ValueRef { return v.operands }

// Block returns the BasicBlock v was appended to, or nil before that.
func (v *Value) Block() *BasicBlock { return v.block }

// Location returns the source coordinate v was created with.
func (v *Value) Location() Location { return v.location }

// IsTerminator reports whether v can end a BasicBlock.
func (v *Value) IsTerminator() bool {
	switch v.kind {
	case KindBranch, KindReturn, KindSwitch:
		return true
	default:
		return false
	}
}

// Successors returns the blocks a terminator value can transfer control to.
// Returns nil for non-terminators.
func (v *Value) Successors() []*BasicBlock {
	if !v.IsTerminator() {
		return nil
	}
	return v.targets
}

// Fields returns a StructureValue's field values or a NewArray's dimension
// lengths, in order.
func (v *Value) Fields() []ValueRef { return v.fields }

// Callee returns the target of a Call value, or nil otherwise.
func (v *Value) Callee() *MethodHandle { return v.callee }

// Raw64 returns a Primitive constant's bit pattern, or a small immediate
// carried by kinds like GetArrayLength/AlignViewTo.
func (v *Value) Raw64() uint64 { return v.raw64 }

// Span returns the FieldSpan carried by GetField/SetField/LoadFieldAddress.
func (v *Value) Span() FieldSpan { return v.span }

// CastOp returns the cast discriminator of a Cast value.
func (v *Value) CastOp() CastOp { return v.castOp }

// UnaryOp returns the operator of an ArithmeticUnary value.
func (v *Value) UnaryOp() ArithUnaryOp { return v.unaryOp }

// BinOp returns the operator of an ArithmeticBinary value.
func (v *Value) BinOp() ArithBinaryOp { return v.binOp }

// TernOp returns the operator of an ArithmeticTernary value.
func (v *Value) TernOp() ArithTernaryOp { return v.ternOp }

// CompareOp returns the relation tested by a Compare value.
func (v *Value) CompareOp() CompareKind { return v.cmpOp }

// Flags returns the ArithFlags modifiers carried by an arithmetic/convert
// value.
func (v *Value) Flags() ArithFlags { return v.flags }

// PhiArg returns the incoming value for predecessor pred, and whether one
// is recorded. Valid only when v.Kind() == KindPhi.
func (v *Value) PhiArg(pred *BasicBlock) (ValueRef, bool) {
	r, ok := v.phiArgs[pred]
	return r, ok
}

// PhiArgs returns the phi's predecessor->value map directly; callers must
// not mutate it.
func (v *Value) PhiArgs() map[*BasicBlock]ValueRef { return v.phiArgs }

// setPhiArg records the incoming value for pred, replacing any previous
// entry. Used by the SSA engine (write-on-read) and by block-split/merge
// edge remapping.
func (v *Value) setPhiArg(pred *BasicBlock, arg ValueRef) {
	if v.phiArgs == nil {
		v.phiArgs = make(map[*BasicBlock]ValueRef)
	}
	v.phiArgs[pred] = arg
}

// removePhiArg drops the entry for pred, used when remapping an edge during
// a block merge collapses two predecessors into one.
func (v *Value) removePhiArg(pred *BasicBlock) {
	delete(v.phiArgs, pred)
}

// renamePhiArg moves the entry keyed by from to be keyed by to, used by
// BlockBuilder.splitBlock/mergeBlock when an edge's source block identity
// changes.
func (v *Value) renamePhiArg(from, to *BasicBlock) {
	if r, ok := v.phiArgs[from]; ok {
		delete(v.phiArgs, from)
		v.phiArgs[to] = r
	}
}

// String implements fmt.Stringer with a compact debug form; the authoritative
// textual dump lives in package dump.
func (v *Value) String() string {
	return fmt.Sprintf("%s:%s = %s", v.id, v.typ, v.kind)
}
