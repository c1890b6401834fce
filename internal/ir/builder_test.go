package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMethod(t *testing.T, retType *TypeNode) (*Context, *MethodBuilder) {
	t.Helper()
	ctx := NewContext(ContextFlags{}, nil)
	mb := ctx.NewMethodBuilder(MethodDeclaration{
		Handle:     MethodHandle{ID: 1, Name: "Test"},
		ReturnType: retType,
	})
	return ctx, mb
}

// newTestMethodReturning builds a fresh Context/MethodBuilder whose declared
// return type is bv's primitive, interned from the same Context so
// CreateReturn's type check passes.
func newTestMethodReturning(t *testing.T, bv BasicValueType) (*Context, *MethodBuilder) {
	t.Helper()
	ctx := NewContext(ContextFlags{}, nil)
	mb := ctx.NewMethodBuilder(MethodDeclaration{
		Handle:     MethodHandle{ID: 1, Name: "Test"},
		ReturnType: ctx.Types.Primitive(bv),
	})
	return ctx, mb
}

func TestConstantFoldAndCommutativityNormalization(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	param := NewValueRef(p.valueID)
	five := irb.CreatePrimitive(BasicValueInt32, 5, NoLocation)

	sum := irb.Binary(ArithAdd, five, param, 0, NoLocation)

	v := sum.Resolve(ctx.Values)
	require.Equal(t, KindArithmeticBinary, v.kind)
	require.Equal(t, param.ID(), v.operands[0].ID())
	require.Equal(t, five.ID(), v.operands[1].ID())
}

func TestIdentityPointerCast(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	p := mb.AddParameter(ctx.Types.Pointer(i32, AddressSpaceGlobal))
	ptr := NewValueRef(p.valueID)

	cast := irb.PointerCast(ptr, i32, AddressSpaceGlobal, NoLocation)
	require.Equal(t, ptr.ID(), cast.ID(), "identity cast must return the same node")
}

func TestInt1BoolCompare(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	i1 := ctx.Types.Primitive(BasicValueInt1)
	p := mb.AddParameter(i1)
	x := NewValueRef(p.valueID)

	trueConst := irb.CreatePrimitive(BasicValueInt1, 1, NoLocation)
	eqTrue := irb.Compare(x, trueConst, CmpEqual, 0, NoLocation)
	require.Equal(t, x.ID(), eqTrue.ID())

	falseConst := irb.CreatePrimitive(BasicValueInt1, 0, NoLocation)
	eqFalse := irb.Compare(x, falseConst, CmpEqual, 0, NoLocation)
	notX := eqFalse.Resolve(ctx.Values)
	require.Equal(t, KindArithmeticUnary, notX.kind)
	require.Equal(t, ArithNot, notX.unaryOp)
	require.Equal(t, x.ID(), notX.operands[0].ID())
}

func TestDoubleNegation(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	x := NewValueRef(p.valueID)

	notX := irb.Not(x, NoLocation)
	notNotX := irb.Not(notX, NoLocation)
	require.Equal(t, x.ID(), notNotX.ID())
}

func TestUnsignedDivByPowerOfTwoBecomesShift(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	x := NewValueRef(p.valueID)
	four := irb.CreatePrimitive(BasicValueInt32, 4, NoLocation)

	divided := irb.Binary(ArithDiv, x, four, FlagUnsigned, NoLocation)
	v := divided.Resolve(ctx.Values)
	require.Equal(t, KindArithmeticBinary, v.kind)
	require.Equal(t, ArithShr, v.binOp)
	shiftAmount := v.operands[1].Resolve(ctx.Values)
	require.Equal(t, uint64(2), shiftAmount.raw64)
}

// TestSignedDivByPowerOfTwoDoesNotFoldToShift guards against the rewrite
// applying to signed division: Shr floors toward negative infinity while
// signed Div truncates toward zero, so folding -7/4 to -7>>2 would silently
// change the answer from -1 to -2.
func TestSignedDivByPowerOfTwoDoesNotFoldToShift(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	negSeven := irb.CreatePrimitive(BasicValueInt32, uint64(uint32(int32(-7))), NoLocation)
	four := irb.CreatePrimitive(BasicValueInt32, 4, NoLocation)

	divided := irb.Binary(ArithDiv, negSeven, four, 0, NoLocation)
	v := divided.Resolve(ctx.Values)
	require.Equal(t, KindPrimitive, v.kind, "both operands are constant, so Div must still constant-fold directly")
	require.Equal(t, uint64(uint32(int32(-1))), v.raw64, "truncating-toward-zero division: -7/4 == -1")
}

func TestSignedDivByPowerOfTwoWithVariableOperandStaysDiv(t *testing.T) {
	ctx, mb := newTestMethod(t, nil)
	irb := mb.Builder()

	p := mb.AddParameter(ctx.Types.Primitive(BasicValueInt32))
	x := NewValueRef(p.valueID)
	four := irb.CreatePrimitive(BasicValueInt32, 4, NoLocation)

	divided := irb.Binary(ArithDiv, x, four, 0, NoLocation)
	v := divided.Resolve(ctx.Values)
	require.Equal(t, KindArithmeticBinary, v.kind)
	require.Equal(t, ArithDiv, v.binOp, "a non-constant, possibly-negative signed dividend must not be rewritten to Shr")
}
