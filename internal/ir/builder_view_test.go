package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadElementAddressZeroIndexIsIdentity(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	p := mb.AddParameter(ctx.Types.Pointer(i32, AddressSpaceGlobal))
	ptr := NewValueRef(p.valueID)
	zero := irb.CreatePrimitive(BasicValueInt32, 0, NoLocation)

	addr := irb.LoadElementAddress(ptr, zero, NoLocation)
	require.Equal(t, ptr.ID(), addr.ID())
}

func TestLoadFieldAddressNonStructureScalarIsIdentity(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	p := mb.AddParameter(ctx.Types.Pointer(i32, AddressSpaceGlobal))
	ptr := NewValueRef(p.valueID)

	addr := irb.LoadFieldAddress(ptr, FieldSpan{Index: 0, Span: 1}, i32, NoLocation)
	require.Equal(t, ptr.ID(), addr.ID())
}

func TestLoadFieldAddressComposesNestedChains(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i8 := ctx.Types.Primitive(BasicValueInt8)
	i32 := ctx.Types.Primitive(BasicValueInt32)
	layout := ctx.Types.StructLayout([]*TypeNode{i8, i32, i32})
	p := mb.AddParameter(ctx.Types.Pointer(layout, AddressSpaceGlobal))
	ptr := NewValueRef(p.valueID)

	outer := irb.LoadFieldAddress(ptr, FieldSpan{Index: 0, Span: len(layout.Fields)}, layout, NoLocation)
	inner := irb.LoadFieldAddress(outer, FieldSpan{Index: 2, Span: 1}, i32, NoLocation)

	iv := ctx.Values.Resolve(inner.ID())
	require.Equal(t, KindLoadFieldAddress, iv.kind)
	require.Equal(t, ptr.ID(), iv.Operands()[0].ID(), "chained LoadFieldAddress must compose onto the original pointer")
}

func TestGetArrayLengthFoldsOverNewArray(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	arrType := ctx.Types.Array(i32, 1, -1)
	ten := irb.CreatePrimitive(BasicValueInt32, 10, NoLocation)
	arr := irb.CreateArrayValue(arrType, []ValueRef{ten}, ArrayModeInlineMutableStaticArrays, NoLocation)

	length := irb.GetArrayLength(arr, 0, NoLocation)
	require.Equal(t, ten.ID(), length.ID())
}
