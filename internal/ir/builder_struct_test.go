package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFieldFoldsOverStructureValue(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i8 := ctx.Types.Primitive(BasicValueInt8)
	i32 := ctx.Types.Primitive(BasicValueInt32)
	layout := ctx.Types.StructLayout([]*TypeNode{i8, i32})
	require.Len(t, layout.Fields, 3)

	firstField := irb.CreateNull(i8, NoLocation)
	padField := irb.CreateNull(layout.Fields[1].Type, NoLocation)
	secondField := irb.CreateNull(i32, NoLocation)
	sv := irb.CreateStructureValue(layout, []ValueRef{firstField, padField, secondField}, NoLocation)

	got := irb.GetField(sv, FieldSpan{Index: 2, Span: 1}, i32, NoLocation)
	require.Equal(t, secondField.ID(), got.ID())
}

func TestSetFieldOnStructureValueRebuildsField(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	layout := ctx.Types.StructLayout([]*TypeNode{i32, i32})

	zero := irb.CreateNull(i32, NoLocation)
	one := irb.CreateNull(i32, NoLocation)
	sv := irb.CreateStructureValue(layout, []ValueRef{zero, one}, NoLocation)

	replacement := irb.CreatePrimitive(BasicValueInt32, 7, NoLocation)
	updated := irb.SetField(sv, FieldSpan{Index: 1, Span: 1}, replacement, NoLocation)

	uv := ctx.Values.Resolve(updated.ID())
	require.Equal(t, KindStructureValue, uv.kind)
	require.Equal(t, zero.ID(), uv.Fields()[0].ID())
	require.Equal(t, replacement.ID(), uv.Fields()[1].ID())
}

func TestSetFieldOnNullFullSpanIsIdentity(t *testing.T) {
	ctx, mb := newTestMethodReturning(t, BasicValueInt32)
	irb := mb.Builder()

	i32 := ctx.Types.Primitive(BasicValueInt32)
	layout := ctx.Types.StructLayout([]*TypeNode{i32})
	n := irb.CreateNull(layout, NoLocation)
	v := irb.CreatePrimitive(BasicValueInt32, 3, NoLocation)

	result := irb.SetField(n, FieldSpan{Index: 0, Span: 1}, v, NoLocation)
	require.Equal(t, v.ID(), result.ID())
}
